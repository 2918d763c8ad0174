package launcher

import (
	"log/slog"

	"github.com/tutunian/cryptomator/internal/ipc"
	"github.com/tutunian/cryptomator/internal/logging"
)

// Handler bridges decoded IPC messages to the workload. It is safe for use
// from the accept loop while the workload is still starting; the workload
// owns its own synchronization.
type Handler struct {
	workload Workload
	logger   *slog.Logger
}

// NewHandler builds a message handler for the given workload.
func NewHandler(workload Workload, logger *slog.Logger) *Handler {
	return &Handler{
		workload: workload,
		logger:   logging.NewComponentLogger(logger, "ipc-handler"),
	}
}

// HandleLaunchArgs forwards an argument list to the workload. Called once
// synchronously at startup and any number of times from the listener.
func (h *Handler) HandleLaunchArgs(args []string) {
	h.logger.Debug("handling launch arguments", logging.Int("count", len(args)))
	h.workload.HandleLaunchArgs(args)
}

// OnMessage dispatches a decoded message by variant.
func (h *Handler) OnMessage(msg ipc.Message) {
	switch msg.Type {
	case ipc.MessageLaunchArgs:
		h.HandleLaunchArgs(msg.Args)
	case ipc.MessageRevealApp:
		h.logger.Debug("reveal requested")
		h.workload.RevealWindow()
	default:
		h.logger.Warn("ignoring unknown message",
			logging.String("type", msg.Type.String()),
			logging.String(logging.FieldEventType, "ipc_unknown_message"))
	}
}

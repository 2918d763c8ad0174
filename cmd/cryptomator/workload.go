package main

import (
	"context"
	"sync"

	"log/slog"

	"github.com/tutunian/cryptomator/internal/logging"
)

// appWorkload is the headless application shell. It records the vault paths
// handed to this instance and runs until the process context is canceled.
// The desktop UI attaches behind the launcher.Workload interface.
type appWorkload struct {
	logger *slog.Logger

	mu   sync.Mutex
	args [][]string
}

func newAppWorkload(logger *slog.Logger) *appWorkload {
	return &appWorkload{logger: logging.NewComponentLogger(logger, "app")}
}

func (w *appWorkload) Run(ctx context.Context) error {
	w.logger.Info("application ready")
	<-ctx.Done()
	w.logger.Info("application terminating")
	return nil
}

func (w *appWorkload) HandleLaunchArgs(args []string) {
	w.mu.Lock()
	w.args = append(w.args, append([]string(nil), args...))
	w.mu.Unlock()
	if len(args) > 0 {
		w.logger.Info("received launch arguments", logging.Int("count", len(args)))
	}
}

func (w *appWorkload) RevealWindow() {
	// TODO: forward to the tray/UI shell once one is attached.
	w.logger.Info("reveal requested")
}

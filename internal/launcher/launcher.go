// Package launcher sequences single-instance startup: resolve the endpoint,
// establish a role, then either hand off to the running instance or become
// it and run the workload.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"log/slog"

	"github.com/tutunian/cryptomator/internal/build"
	"github.com/tutunian/cryptomator/internal/ipc"
	"github.com/tutunian/cryptomator/internal/lang"
	"github.com/tutunian/cryptomator/internal/lifecycle"
	"github.com/tutunian/cryptomator/internal/logging"
)

// Options wires the launcher's collaborators. All fields are required
// except Logger, which defaults to a no-op logger.
type Options struct {
	// SocketPaths is the ordered list of candidate endpoint locations.
	SocketPaths []string
	// Workload is the application run when this process becomes the sole
	// instance.
	Workload Workload
	// Shutdown receives the endpoint release callback so the socket is
	// freed even on abnormal termination.
	Shutdown *lifecycle.Registry
	Logger   *slog.Logger
}

// Run performs the startup decision and blocks until either the handoff
// completes (client) or the workload terminates (server). A nil return
// maps to exit code 0, any error to exit code 1.
func Run(ctx context.Context, args []string, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.Workload == nil {
		return errors.New("launcher: workload is required")
	}
	if opts.Shutdown == nil {
		return errors.New("launcher: shutdown registry is required")
	}

	logger.Info(fmt.Sprintf("Starting %s %s on %s (%s)", build.AppName, build.Version, runtime.GOOS, runtime.GOARCH))
	lang.ApplyPreferred(logger)

	communicator, err := ipc.Create(opts.SocketPaths, logger)
	if err != nil {
		return fmt.Errorf("establish ipc endpoint: %w", err)
	}
	defer communicator.CloseUnchecked()

	if communicator.IsClient() {
		return handOff(communicator, args, logger)
	}

	opts.Shutdown.Register("ipc socket", communicator.CloseUnchecked)

	handler := NewHandler(opts.Workload, logger)
	handler.HandleLaunchArgs(args)
	if err := communicator.Listen(handler); err != nil {
		return fmt.Errorf("start ipc listener: %w", err)
	}

	logger.Debug("no running application instance found, starting workload")
	if err := opts.Workload.Run(ctx); err != nil {
		return fmt.Errorf("run workload: %w", err)
	}
	return nil
}

// handOff forwards this invocation to the running instance. Sends are
// best-effort notifications, not transactions; a failure after a message
// was already delivered is not rolled back.
func handOff(communicator *ipc.Communicator, args []string, logger *slog.Logger) error {
	if err := communicator.SendHandleLaunchArgs(args); err != nil {
		return fmt.Errorf("hand off launch args: %w", err)
	}
	if err := communicator.SendRevealRunningApp(); err != nil {
		return fmt.Errorf("request reveal: %w", err)
	}
	logger.Info("Found running application instance. Shutting down...")
	return communicator.Close()
}

package launcher

import "context"

// Workload is the long-running user-facing application driven by the
// launcher. The launcher depends only on this contract, never on any UI
// toolkit type.
type Workload interface {
	// Run blocks until the workload terminates. Returning nil means a
	// clean shutdown; any error is fatal to the process.
	Run(ctx context.Context) error

	// HandleLaunchArgs processes an invocation's arguments. It is called
	// once at startup for this process's own arguments and again for every
	// handoff from another invocation, possibly concurrently with Run.
	HandleLaunchArgs(args []string)

	// RevealWindow brings the workload's primary surface to the
	// foreground. May be called concurrently with Run.
	RevealWindow()
}

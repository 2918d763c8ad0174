// Package lifecycle provides an ordered registry of shutdown callbacks.
package lifecycle

import (
	"log/slog"
	"sync"

	"github.com/tutunian/cryptomator/internal/logging"
)

type hook struct {
	name string
	fn   func()
}

// Registry collects cleanup callbacks and runs them once, in registration
// order. Callbacks must tolerate being invoked after the resource they
// release is already gone.
type Registry struct {
	logger *slog.Logger

	mu    sync.Mutex
	once  sync.Once
	hooks []hook
}

// NewRegistry builds an empty registry. A nil logger is replaced with a
// no-op logger.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Registry{logger: logger}
}

// Register appends a named cleanup callback. Registration after Run has
// fired is ignored.
func (r *Registry) Register(name string, fn func()) {
	if r == nil || fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, hook{name: name, fn: fn})
}

// Run invokes the registered callbacks in registration order. Subsequent
// calls are no-ops, so both the normal exit path and a signal handler may
// trigger it safely.
func (r *Registry) Run() {
	if r == nil {
		return
	}
	r.once.Do(func() {
		r.mu.Lock()
		hooks := r.hooks
		r.hooks = nil
		r.mu.Unlock()

		for _, h := range hooks {
			r.logger.Debug("running shutdown hook", logging.String("hook", h.name))
			h.fn()
		}
	})
}

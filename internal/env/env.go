// Package env discovers platform- and session-specific runtime locations.
package env

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tutunian/cryptomator/internal/config"
)

const socketName = "ipc.sock"

// SocketPaths returns the ordered list of candidate IPC socket locations.
// Earlier entries are preferred; callers try them in order. A configured
// runtime dir takes precedence over session defaults so all processes that
// share a config agree on the first candidate.
func SocketPaths(cfg *config.Config) []string {
	var candidates []string

	if cfg != nil && cfg.Paths.RuntimeDir != "" {
		candidates = append(candidates, filepath.Join(cfg.Paths.RuntimeDir, socketName))
	}

	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		candidates = append(candidates, filepath.Join(runtimeDir, "Cryptomator", socketName))
	}

	if cacheDir, err := os.UserCacheDir(); err == nil {
		candidates = append(candidates, filepath.Join(cacheDir, "Cryptomator", socketName))
	}

	// Last resort, shared per user rather than per session.
	candidates = append(candidates, filepath.Join(os.TempDir(), fmt.Sprintf("cryptomator-%d", os.Getuid()), socketName))

	return candidates
}

package env_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/tutunian/cryptomator/internal/env"
	"github.com/tutunian/cryptomator/internal/testsupport"
)

func TestSocketPathsPrefersConfiguredRuntimeDir(t *testing.T) {
	runtimeDir := t.TempDir()
	cfg := testsupport.NewConfig(t, testsupport.WithRuntimeDir(runtimeDir))

	paths := env.SocketPaths(cfg)
	if len(paths) == 0 {
		t.Fatal("expected at least one candidate")
	}
	if paths[0] != filepath.Join(runtimeDir, "ipc.sock") {
		t.Fatalf("first candidate = %s, want configured runtime dir", paths[0])
	}
}

func TestSocketPathsIncludesSessionRuntimeDir(t *testing.T) {
	sessionDir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", sessionDir)
	cfg := testsupport.NewConfig(t, testsupport.WithRuntimeDir(""))

	paths := env.SocketPaths(cfg)
	if len(paths) == 0 {
		t.Fatal("expected at least one candidate")
	}
	if paths[0] != filepath.Join(sessionDir, "Cryptomator", "ipc.sock") {
		t.Fatalf("first candidate = %s, want session runtime dir", paths[0])
	}
}

func TestSocketPathsAlwaysHasFallback(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")

	paths := env.SocketPaths(nil)
	if len(paths) == 0 {
		t.Fatal("expected fallback candidates without config")
	}
	last := paths[len(paths)-1]
	if !strings.HasSuffix(last, filepath.Join("ipc.sock")) {
		t.Fatalf("last candidate = %s, want an ipc.sock path", last)
	}
	if !strings.Contains(last, "cryptomator-") {
		t.Fatalf("last candidate = %s, want per-user temp fallback", last)
	}
}

package main

import (
	"context"
	"testing"
	"time"

	"github.com/tutunian/cryptomator/internal/logging"
)

func TestAppWorkloadStopsOnCancel(t *testing.T) {
	workload := newAppWorkload(logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- workload.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("workload did not stop after cancel")
	}
}

func TestAppWorkloadRecordsLaunchArgs(t *testing.T) {
	workload := newAppWorkload(logging.NewNop())

	workload.HandleLaunchArgs([]string{"/vaults/a.c9r"})
	workload.HandleLaunchArgs(nil)
	workload.RevealWindow()

	workload.mu.Lock()
	defer workload.mu.Unlock()
	if len(workload.args) != 2 {
		t.Fatalf("recorded %d arg sets, want 2", len(workload.args))
	}
	if len(workload.args[0]) != 1 || workload.args[0][0] != "/vaults/a.c9r" {
		t.Fatalf("args[0] = %#v", workload.args[0])
	}
}

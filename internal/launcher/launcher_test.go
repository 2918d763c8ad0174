package launcher

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/tutunian/cryptomator/internal/ipc"
	"github.com/tutunian/cryptomator/internal/lifecycle"
	"github.com/tutunian/cryptomator/internal/logging"
)

func testCandidates(t *testing.T) []string {
	t.Helper()
	return []string{filepath.Join(t.TempDir(), "ipc.sock")}
}

func serverOptions(t *testing.T, candidates []string, workload Workload) Options {
	t.Helper()
	return Options{
		SocketPaths: candidates,
		Workload:    workload,
		Shutdown:    lifecycle.NewRegistry(logging.NewNop()),
		Logger:      logging.NewNop(),
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestRunHandsOwnArgsToWorkload(t *testing.T) {
	candidates := testCandidates(t)
	workload := newFakeWorkload()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, []string{"/vaults/own.c9r"}, serverOptions(t, candidates, workload))
	}()

	<-workload.started
	argSets, _ := workload.snapshot()
	if len(argSets) != 1 || len(argSets[0]) != 1 || argSets[0][0] != "/vaults/own.c9r" {
		t.Fatalf("argSets = %#v, want own args handled before workload start", argSets)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("server Run: %v", err)
	}
}

func TestClientInvocationHandsOff(t *testing.T) {
	candidates := testCandidates(t)
	workload := newFakeWorkload()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, nil, serverOptions(t, candidates, workload))
	}()
	<-workload.started

	// Second invocation finds the running instance, hands off, and returns
	// without starting its own workload.
	clientWorkload := newFakeWorkload()
	if err := Run(context.Background(), []string{"x", "y"}, serverOptions(t, candidates, clientWorkload)); err != nil {
		t.Fatalf("client Run: %v", err)
	}
	select {
	case <-clientWorkload.started:
		t.Fatal("client invocation must not start its workload")
	default:
	}

	waitFor(t, "handed-off args and reveal", func() bool {
		argSets, reveals := workload.snapshot()
		return len(argSets) == 2 && reveals == 1
	})
	argSets, _ := workload.snapshot()
	if len(argSets[1]) != 2 || argSets[1][0] != "x" || argSets[1][1] != "y" {
		t.Fatalf("handed-off args = %#v, want [x y]", argSets[1])
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("server Run: %v", err)
	}
}

func TestWorkloadErrorReleasesEndpoint(t *testing.T) {
	candidates := testCandidates(t)
	workload := newFakeWorkload()
	workload.runErr = errors.New("workload exploded")

	err := Run(context.Background(), nil, serverOptions(t, candidates, workload))
	if err == nil || !errors.Is(err, workload.runErr) {
		t.Fatalf("expected workload error, got %v", err)
	}

	// The deferred close must have released the socket so a fresh process
	// can bind the same candidate.
	communicator, createErr := ipc.Create(candidates, logging.NewNop())
	if createErr != nil {
		t.Fatalf("ipc.Create after failed run: %v", createErr)
	}
	t.Cleanup(communicator.CloseUnchecked)
	if communicator.IsClient() {
		t.Fatal("expected server role, endpoint was leaked")
	}
}

func TestRunValidatesCollaborators(t *testing.T) {
	if err := Run(context.Background(), nil, Options{Shutdown: lifecycle.NewRegistry(nil)}); err == nil {
		t.Fatal("expected error for missing workload")
	}
	if err := Run(context.Background(), nil, Options{Workload: newFakeWorkload()}); err == nil {
		t.Fatal("expected error for missing shutdown registry")
	}
}

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestWatch_DebouncesAndStops(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := newTestStore(t)
	prev := WatchDebounce
	WatchDebounce = 100 * time.Millisecond
	t.Cleanup(func() { WatchDebounce = prev })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, func() { changes <- struct{}{} })
	}()

	// Give the watcher time to register the directory.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(filepath.Join(s.Dir, "uploads")); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("uploads dir never created")
		}
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		name := filepath.Join(s.Dir, "uploads", "100"+string(rune('0'+i))+"-b.json")
		if err := os.WriteFile(name, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a change notification")
	}
	select {
	case <-changes:
		t.Fatalf("expected writes to collapse into one notification")
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Watch did not return after cancel")
	}
}

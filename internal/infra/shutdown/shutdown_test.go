package shutdown

import (
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"
	"time"
)

func TestHandler_HooksRunInReverseOrder(t *testing.T) {
	h := NewHandler(time.Second)

	var order []string
	for _, name := range []string{"storage", "sessions", "http"} {
		name := name
		h.OnShutdown(func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	if err := h.runHooks(); err != nil {
		t.Fatalf("runHooks() error = %v", err)
	}

	want := []string{"http", "sessions", "storage"}
	if len(order) != len(want) {
		t.Fatalf("ran %d hooks, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("hook %d = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestHandler_AllHooksRunDespiteErrors(t *testing.T) {
	h := NewHandler(time.Second)

	errClose := errors.New("close failed")
	ran := 0
	h.OnShutdown(func(context.Context) error {
		ran++
		return errClose
	})
	h.OnShutdown(func(context.Context) error {
		ran++
		return errors.New("drain failed")
	})

	err := h.runHooks()
	if ran != 2 {
		t.Errorf("ran %d hooks, want 2", ran)
	}
	// Hooks run in reverse, so the first-registered hook errors last.
	if !errors.Is(err, errClose) {
		t.Errorf("runHooks() error = %v, want %v", err, errClose)
	}
}

func TestHandler_HooksShareDeadline(t *testing.T) {
	h := NewHandler(50 * time.Millisecond)

	var deadlineSet bool
	h.OnShutdown(func(ctx context.Context) error {
		_, deadlineSet = ctx.Deadline()
		<-ctx.Done()
		return ctx.Err()
	})

	err := h.runHooks()
	if !deadlineSet {
		t.Error("hook context has no deadline")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("runHooks() error = %v, want deadline exceeded", err)
	}
}

func TestHandler_DoneClosesAfterHooks(t *testing.T) {
	h := NewHandler(time.Second)

	hookRan := false
	h.OnShutdown(func(context.Context) error {
		hookRan = true
		return nil
	})

	select {
	case <-h.Done():
		t.Fatal("Done() closed before shutdown")
	default:
	}

	if err := h.runHooks(); err != nil {
		t.Fatalf("runHooks() error = %v", err)
	}

	select {
	case <-h.Done():
	default:
		t.Error("Done() still open after hooks ran")
	}
	if !hookRan {
		t.Error("hook did not run")
	}
}

func TestHandler_ConcurrentRegistration(t *testing.T) {
	h := NewHandler(time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.OnShutdown(func(context.Context) error { return nil })
		}()
	}
	wg.Wait()

	h.mu.Lock()
	n := len(h.hooks)
	h.mu.Unlock()
	if n != 16 {
		t.Errorf("registered %d hooks, want 16", n)
	}
}

func TestHandler_WaitRespondsToSigterm(t *testing.T) {
	h := NewHandler(time.Second)

	ran := make(chan struct{})
	h.OnShutdown(func(context.Context) error {
		close(ran)
		return nil
	})

	waitErr := make(chan error, 1)
	go func() { waitErr <- h.Wait() }()

	// Give Wait a moment to install the signal handler.
	time.Sleep(100 * time.Millisecond)
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("send SIGTERM: %v", err)
	}

	select {
	case err := <-waitErr:
		if err != nil {
			t.Errorf("Wait() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after SIGTERM")
	}

	select {
	case <-ran:
	case <-h.Done():
	default:
		t.Error("hook did not run after SIGTERM")
	}
}

// Package poll provides a small cancellable polling task: run once
// immediately, then on a fixed interval until stopped. Every recurring
// loop in the app (admin live view, weather auto-check) owns one of these
// instead of an ambient timer, so teardown is deterministic.
package poll

import (
	"context"
	"sync"
	"time"
)

// Task runs fn on an interval. Zero value is not usable; use New.
type Task struct {
	interval time.Duration
	fn       func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(interval time.Duration, fn func(ctx context.Context)) *Task {
	return &Task{interval: interval, fn: fn}
}

// Start launches the loop: one immediate run, then one per interval.
// Starting an active task is a no-op.
func (t *Task) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	done := make(chan struct{})
	t.done = done

	go func() {
		defer close(done)

		t.fn(ctx)

		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.fn(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for the in-flight run, if any, to
// return. Stopping an inactive task is a no-op.
func (t *Task) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	done := t.done
	t.cancel = nil
	t.done = nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Active reports whether the loop is running.
func (t *Task) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

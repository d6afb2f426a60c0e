// Package worker provides the stop-flag/bounded-join/detach-on-timeout
// lifecycle every long-running goroutine in the controller follows.
package worker

import (
	"sync"
	"sync/atomic"
	"time"
)

// Runnable is implemented by anything a Worker can drive.
type Runnable interface {
	Run(stopRequested func() bool)
}

// Worker wraps a single goroutine with Start/Shutdown semantics: Shutdown
// sets a stop flag, waits up to a bound for the goroutine to exit, and
// detaches (abandons, without panicking or blocking forever) if it
// doesn't.
type Worker struct {
	name          string
	stopRequested atomic.Bool
	done          chan struct{}
	once          sync.Once
}

// New constructs a Worker with the given name, used only for logging by
// callers.
func New(name string) *Worker {
	return &Worker{name: name, done: make(chan struct{})}
}

// Name returns the worker's name.
func (w *Worker) Name() string { return w.name }

// StopRequested reports whether Shutdown has been called.
func (w *Worker) StopRequested() bool { return w.stopRequested.Load() }

// Start runs fn in a new goroutine, closing an internal completion
// channel when fn returns.
func (w *Worker) Start(fn func(stopRequested func() bool)) {
	go func() {
		defer close(w.done)
		fn(w.StopRequested)
	}()
}

// Shutdown requests the worker stop and blocks up to timeout for it to
// finish. If the worker hasn't finished by then, Shutdown returns anyway;
// the goroutine is left to exit on its own.
func (w *Worker) Shutdown(timeout time.Duration) {
	w.once.Do(func() {
		w.stopRequested.Store(true)
	})

	select {
	case <-w.done:
	case <-time.After(timeout):
	}
}

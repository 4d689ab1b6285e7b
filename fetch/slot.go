// Package fetch runs network requests off the UI loop. A Slot holds at most one in-flight job
// and the result of the last one; the UI polls it each frame without blocking.
package fetch

import (
	"context"
	"sync"

	"go.uber.org/atomic"
	"go.viam.com/utils"
)

// Result is what a job leaves behind. Status is empty on success and otherwise holds the
// message to show the user.
type Result[T any] struct {
	Value  T
	Status string
	Err    error
}

// OK reports whether the job succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Slot is a single-slot future. Start launches a job only when none is running; the job's
// result is stored behind a mutex and announced through an atomic ready flag, so Ready can be
// checked every frame without locking. A newer result replaces an unconsumed older one.
type Slot[T any] struct {
	busy  atomic.Bool
	ready atomic.Bool

	mu     sync.Mutex
	result Result[T]

	// lifeMu orders Start against Close so no job is handed to stopped workers.
	lifeMu  sync.Mutex
	closed  bool
	workers *utils.StoppableWorkers
}

// NewSlot returns an empty Slot.
func NewSlot[T any]() *Slot[T] {
	return &Slot[T]{workers: utils.NewBackgroundStoppableWorkers()}
}

// Start runs job in the background and returns true, or returns false without doing anything
// if a previous job is still running or the slot is closed. The job's context is cancelled by
// Close.
func (s *Slot[T]) Start(job func(ctx context.Context) (T, error), status func(error) string) bool {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	if s.closed || !s.busy.CompareAndSwap(false, true) {
		return false
	}
	s.workers.Add(func(ctx context.Context) {
		defer s.busy.Store(false)
		value, err := job(ctx)
		if ctx.Err() != nil {
			// closing; nobody will poll
			return
		}
		res := Result[T]{Value: value, Err: err}
		if err != nil {
			res.Status = status(err)
		}
		s.Store(res)
	})
	return true
}

// Store publishes a result directly, as a finished job would.
func (s *Slot[T]) Store(res Result[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = res
	s.ready.Store(true)
}

// InFlight reports whether a job is running.
func (s *Slot[T]) InFlight() bool {
	return s.busy.Load()
}

// Ready reports whether an unconsumed result is waiting.
func (s *Slot[T]) Ready() bool {
	return s.ready.Load()
}

// Poll consumes the waiting result. It never blocks on a running job.
func (s *Slot[T]) Poll() (Result[T], bool) {
	if !s.ready.Load() {
		return Result[T]{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.result
	s.result = Result[T]{}
	s.ready.Store(false)
	return res, true
}

// Closed reports whether Close was called.
func (s *Slot[T]) Closed() bool {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	return s.closed
}

// Close cancels a running job and waits for it to return. Later Starts are refused.
func (s *Slot[T]) Close() {
	s.lifeMu.Lock()
	s.closed = true
	s.lifeMu.Unlock()
	s.workers.Stop()
}

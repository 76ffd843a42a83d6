// Package debounce runs a check once input has been quiet for a while and
// delivers only the result for the latest input.
package debounce

import (
	"context"
	"sync"
	"time"
)

// DefaultQuiet is the quiet period used when none is configured.
const DefaultQuiet = 500 * time.Millisecond

// CheckFunc evaluates one settled value. ctx is cancelled when a newer value
// is pushed or the Settler stops.
type CheckFunc[T, R any] func(ctx context.Context, v T) (R, error)

// ResultFunc receives the outcome of the latest check.
type ResultFunc[T, R any] func(v T, r R, err error)

// Settler coalesces bursts of values into a single check for the last one.
type Settler[T, R any] struct {
	quiet   time.Duration
	check   CheckFunc[T, R]
	deliver ResultFunc[T, R]
	parent  context.Context

	mu      sync.Mutex
	gen     uint64
	pending T
	timer   *time.Timer
	cancel  context.CancelFunc
	stopped bool
	running sync.WaitGroup
}

// New returns a Settler. A non-positive quiet selects DefaultQuiet. Checks
// run with contexts derived from ctx.
func New[T, R any](ctx context.Context, quiet time.Duration, check CheckFunc[T, R], deliver ResultFunc[T, R]) *Settler[T, R] {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Settler[T, R]{
		quiet:   quiet,
		check:   check,
		deliver: deliver,
		parent:  ctx,
	}
}

// Push records v as the latest value and restarts the quiet period. Any
// check still running for an older value is cancelled and its result dropped.
func (s *Settler[T, R]) Push(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.gen++
	s.pending = v
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	gen := s.gen
	s.timer = time.AfterFunc(s.quiet, func() { s.fire(gen) })
}

// Flush runs the pending check now, in the calling goroutine, if one is
// waiting for its quiet period.
func (s *Settler[T, R]) Flush() {
	s.mu.Lock()
	if s.timer == nil || !s.timer.Stop() {
		s.mu.Unlock()
		return
	}
	gen := s.gen
	s.mu.Unlock()
	s.fire(gen)
}

// Stop cancels pending and running checks and waits for running ones to
// return. No result is delivered after Stop.
func (s *Settler[T, R]) Stop() {
	s.mu.Lock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.running.Wait()
}

func (s *Settler[T, R]) fire(gen uint64) {
	s.mu.Lock()
	if s.stopped || gen != s.gen {
		s.mu.Unlock()
		return
	}
	v := s.pending
	ctx, cancel := context.WithCancel(s.parent)
	s.cancel = cancel
	s.running.Add(1)
	s.mu.Unlock()

	defer s.running.Done()
	defer cancel()

	r, err := s.check(ctx, v)

	s.mu.Lock()
	latest := !s.stopped && gen == s.gen
	s.mu.Unlock()
	if latest && s.deliver != nil {
		s.deliver(v, r, err)
	}
}

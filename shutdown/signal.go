// Package shutdown turns interrupt signals into context cancellation.
//
// The first SIGINT or SIGTERM cancels the command context, which aborts an
// in-flight request. A second signal calls the force callback, which is
// expected to exit the process.
package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SignalCounter counts shutdown signals and calls onForce once the count
// reaches forceAfter.
type SignalCounter struct {
	mu         sync.Mutex
	count      int
	last       os.Signal
	forceAfter int
	onForce    func(os.Signal)
}

// NewSignalCounter creates a counter. onForce may be nil.
func NewSignalCounter(forceAfter int, onForce func(os.Signal)) *SignalCounter {
	return &SignalCounter{
		forceAfter: forceAfter,
		onForce:    onForce,
	}
}

// Record counts sig and returns the new count. The force callback runs while
// the counter is locked, so it should exit or return quickly.
func (s *SignalCounter) Record(sig os.Signal) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	s.last = sig
	if s.count >= s.forceAfter && s.onForce != nil {
		s.onForce(sig)
	}
	return s.count
}

// Count returns the number of signals seen.
func (s *SignalCounter) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Last returns the most recent signal, nil if none arrived.
func (s *SignalCounter) Last() os.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// SignalError is the cancellation cause of a context stopped by a signal.
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("received %s", e.Signal)
}

// NotifyContext returns a context cancelled by the first SIGINT or SIGTERM.
// A second signal calls onForce. stop releases the signal handler.
func NotifyContext(parent context.Context, onForce func(os.Signal)) (context.Context, func()) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)

	ctx, stopWatch := Watch(parent, ch, onForce)
	return ctx, func() {
		signal.Stop(ch)
		stopWatch()
	}
}

// Watch cancels the returned context on the first value from signals and
// calls onForce on the second. context.Cause reports a *SignalError.
func Watch(parent context.Context, signals <-chan os.Signal, onForce func(os.Signal)) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(parent)
	counter := NewSignalCounter(2, onForce)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case sig := <-signals:
				if counter.Record(sig) == 1 {
					cancel(&SignalError{Signal: sig})
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			close(done)
			cancel(context.Canceled)
		})
	}
}

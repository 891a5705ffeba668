// Package uistate runs every presentation-state mutation on one goroutine so
// that observers never see a half-applied update.
package uistate

import (
	"context"
	"errors"
	"sync"

	"github.com/flavourfinder/flavourfinder-go/internal/logger"
)

var ErrStopped = errors.New("ui dispatcher stopped")

// Dispatcher serializes functions onto a single goroutine.
type Dispatcher struct {
	queue     chan func()
	stop      chan struct{}
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	log       *logger.Logger
}

// NewDispatcher creates a dispatcher. Nothing runs until Start is called.
func NewDispatcher(log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		queue: make(chan func(), 64),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
		log:   log.With("component", "uistate.Dispatcher"),
	}
}

// Start launches the dispatch goroutine. It exits when ctx is cancelled or
// Stop is called. Calling Start more than once has no effect.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		go d.loop(ctx)
	})
}

// Stop halts the dispatch goroutine and waits for it to exit. Functions still
// queued are dropped.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() { close(d.stop) })
	// A dispatcher that never started has no loop to close done.
	d.startOnce.Do(func() { close(d.done) })
	<-d.done
}

func (d *Dispatcher) loop(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.stop:
			return
		case fn := <-d.queue:
			d.run(fn)
		}
	}
}

func (d *Dispatcher) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("ui mutation panicked", "panic", r)
		}
	}()
	fn()
}

// Do runs fn on the dispatch goroutine and waits for it to finish. Once fn is
// queued Do waits for it even if ctx is cancelled, so a nil return always
// means fn ran. Do must not be called from inside a dispatched function.
func (d *Dispatcher) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}

	select {
	case d.queue <- wrapped:
	case <-d.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-d.done:
		// The loop may have exited after picking fn up; finished tells.
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	}
}

// Post queues fn without waiting. It is dropped if the dispatcher has stopped.
func (d *Dispatcher) Post(fn func()) {
	select {
	case d.queue <- fn:
	case <-d.done:
	}
}

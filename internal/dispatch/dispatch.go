// Package dispatch provides the queued cross-goroutine hand-off used to move
// operator results from pipeline workers onto the single goroutine that owns
// the scene. It is the message-passing analog of a queued signal/slot
// connection: asynchronous, one-shot delivery to one consumer, with no
// ordering contract across producers.
package dispatch

import (
	"context"
	"sync"
)

// Dispatcher queues functions for execution on its consumer goroutine.
type Dispatcher struct {
	queue     chan func()
	closeOnce sync.Once
}

// New creates a dispatcher with the given queue depth.
func New(buffer int) *Dispatcher {
	return &Dispatcher{queue: make(chan func(), buffer)}
}

// Post enqueues f for delivery on the consumer goroutine. It may be called
// from any goroutine and blocks only when the queue is full. Posting after
// Close panics; producers must be quiesced first.
func (d *Dispatcher) Post(f func()) {
	d.queue <- f
}

// Close stops the dispatcher after already-queued deliveries drain. Safe to
// call more than once.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() { close(d.queue) })
}

// Run consumes deliveries until Close drains the queue or the context ends.
// It must be called from exactly one goroutine; that goroutine becomes the
// affinity target for everything posted here.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-d.queue:
			if !ok {
				return nil
			}
			f()
		}
	}
}

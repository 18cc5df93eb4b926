// Package dispatch implements the main-thread dispatch queue:
// worker goroutines submit tasks that must run on the host's single update
// thread and block on a per-task completion signal, with a timeout.
//
// The queue/drain shape follows the same register/unregister/broadcast
// select-loop idiom the host's WebSocket hub uses, adapted to a FIFO task
// queue drained once per update tick instead of continuously.
package dispatch

import (
	"fmt"
	"sync"
	"time"

	"github.com/agentext/simhost/internal/envelope"
)

// Result is what a task produces: either a value or an error-shaped
// outcome when fn failed or panicked.
type Result struct {
	Value any
	Err   error
}

type task struct {
	fn   func() (any, error)
	done chan Result
}

// Dispatcher is the FIFO task queue, bounded only when built with a
// positive maxPending. One Dispatcher serves
// exactly one extension's main-thread integration.
type Dispatcher struct {
	mu    sync.Mutex
	queue []*task

	shutdown   bool
	maxPending int
}

// New builds a Dispatcher. maxPending <= 0 means unbounded: the queue
// drains every tick rather than enforcing a fixed capacity ceiling.
func New(maxPending int) *Dispatcher {
	return &Dispatcher{maxPending: maxPending}
}

// RunOnMain appends (fn, completion-channel) to the FIFO queue and blocks
// the calling worker until either the main thread signals completion or
// timeout elapses.
func (d *Dispatcher) RunOnMain(fn func() (any, error), timeout time.Duration) (any, error) {
	t, err := d.enqueue(fn)
	if err != nil {
		return nil, err
	}

	select {
	case res := <-t.done:
		return res.Value, res.Err
	case <-time.After(timeout):
		return nil, envelope.Domain(envelope.CodeTimeout,
			fmt.Sprintf("timeout after %gs", timeout.Seconds()), nil)
	}
}

func (d *Dispatcher) enqueue(fn func() (any, error)) (*task, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.shutdown {
		return nil, envelope.Domain(envelope.CodeQueueUnavailable, "dispatcher is shutting down", nil)
	}
	if d.maxPending > 0 && len(d.queue) >= d.maxPending {
		return nil, envelope.Domain(envelope.CodeQueueUnavailable, "main-thread queue is full", nil)
	}

	t := &task{fn: fn, done: make(chan Result, 1)}
	d.queue = append(d.queue, t)
	return t, nil
}

// Drain runs on the main thread at each update tick: it
// takes every task queued so far, invokes each fn in enqueue order, and
// always signals completion, even when fn panics. It returns the number of
// tasks it ran.
func (d *Dispatcher) Drain() int {
	d.mu.Lock()
	pending := d.queue
	d.queue = nil
	d.mu.Unlock()

	for _, t := range pending {
		t.run()
	}
	return len(pending)
}

// Pending reports the current queue depth, for metrics/diagnostics.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// Shutdown stops accepting new tasks and signals every task still queued
// with a shutdown error so waiting workers return rather than time out.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	d.shutdown = true
	pending := d.queue
	d.queue = nil
	d.mu.Unlock()

	for _, t := range pending {
		t.done <- Result{Err: envelope.Domain(envelope.CodeQueueUnavailable, "dispatcher shut down before task ran", nil)}
	}
}

func (t *task) run() {
	value, err := t.invoke()
	t.done <- Result{Value: value, Err: err}
}

// invoke recovers from a panicking fn and turns it into an error-shaped
// result instead of crashing the main thread.
func (t *task) invoke() (value any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("main-thread task panicked: %v", p)
		}
	}()
	return t.fn()
}

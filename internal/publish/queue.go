package publish

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/jmylchreest/hybar/internal/model"
)

// DefaultQueueSize is the queue capacity used when none is configured.
const DefaultQueueSize = 64

// Delivery errors. Both are expected under load and are never retried.
var (
	ErrQueueFull = errors.New("event queue is full")
	ErrClosed    = errors.New("event queue is closed")
)

// Sink receives flushed events. Publish must return promptly.
type Sink interface {
	Publish(e model.Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(e model.Event) error

// Publish calls f(e).
func (f SinkFunc) Publish(e model.Event) error {
	return f(e)
}

// Queue is a bounded, ordered event queue. When full, new events are dropped.
type Queue struct {
	mu     sync.RWMutex
	ch     chan model.Event
	closed bool

	dropped atomic.Uint64
}

// NewQueue creates a queue holding at most size events.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan model.Event, size)}
}

// Publish enqueues e without blocking.
func (q *Queue) Publish(e model.Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.dropped.Add(1)
		return ErrClosed
	}

	select {
	case q.ch <- e:
		return nil
	default:
		q.dropped.Add(1)
		return ErrQueueFull
	}
}

// Events returns the channel consumers read from. It is closed by Close.
func (q *Queue) Events() <-chan model.Event {
	return q.ch
}

// Len returns the number of buffered events.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int {
	return cap(q.ch)
}

// Dropped returns how many events were rejected because the queue was full or closed.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}

// Close closes the queue. Buffered events remain readable.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}

package publish

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jmylchreest/hybar/internal/model"
)

type namedSink struct {
	name string
	sink Sink
}

// Publisher fans flushed events out to every registered sink and wakes
// registered consumers once per non-empty batch. A failing sink never
// affects the others and never propagates to the caller.
type Publisher struct {
	mu     sync.RWMutex
	logger *slog.Logger

	sinks  []namedSink
	wakers []func()

	published atomic.Uint64
	dropped   atomic.Uint64
}

// NewPublisher creates a Publisher with no sinks.
func NewPublisher(logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{logger: logger}
}

// AddSink registers a sink under a name used in log output.
func (p *Publisher) AddSink(name string, sink Sink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	sinks := make([]namedSink, 0, len(p.sinks)+1)
	sinks = append(sinks, p.sinks...)
	p.sinks = append(sinks, namedSink{name: name, sink: sink})
}

// RemoveSink unregisters every sink with the given name.
func (p *Publisher) RemoveSink(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	kept := make([]namedSink, 0, len(p.sinks))
	for _, s := range p.sinks {
		if s.name != name {
			kept = append(kept, s)
		}
	}
	p.sinks = kept
}

// OnWake registers a callback invoked after each non-empty batch. Callbacks
// must not block; Waker.Wake is the usual choice.
func (p *Publisher) OnWake(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.wakers = append(p.wakers, fn)
}

// Publish delivers events in order to every sink. Failed deliveries are
// logged at debug level and dropped.
func (p *Publisher) Publish(events ...model.Event) {
	if len(events) == 0 {
		return
	}

	p.mu.RLock()
	sinks := p.sinks
	wakers := p.wakers
	p.mu.RUnlock()

	for _, e := range events {
		for _, s := range sinks {
			if err := s.sink.Publish(e); err != nil {
				p.dropped.Add(1)
				p.logger.Debug("dropped event", "sink", s.name, "kind", e.Kind, "error", err)
				continue
			}
			p.published.Add(1)
		}
	}

	for _, wake := range wakers {
		wake()
	}
}

// Published returns the number of successful sink deliveries.
func (p *Publisher) Published() uint64 {
	return p.published.Load()
}

// Dropped returns the number of failed sink deliveries.
func (p *Publisher) Dropped() uint64 {
	return p.dropped.Load()
}

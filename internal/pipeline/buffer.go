package pipeline

import (
	"log/slog"
	"sync"

	"github.com/tiger/exercise-trace-monitor/internal/observability"
)

// EventBuffer is the bounded backpressure queue between ingress and the
// monitor loop. Events are released only against downstream demand; when the
// queue is full, new events are dropped with an error log. Stop flushes the
// queue and then closes the output stream; Abandon closes it without
// flushing.
type EventBuffer struct {
	mu        sync.Mutex
	cond      *sync.Cond
	queue     []TraceEvent
	capacity  int
	demand    int64
	draining  bool
	abandoned bool
	dropped   int64

	out     chan TraceEvent
	done    chan struct{}
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewEventBuffer starts a buffer with the given capacity.
func NewEventBuffer(capacity int, logger *slog.Logger, metrics *observability.Metrics) *EventBuffer {
	if capacity < 1 {
		capacity = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	b := &EventBuffer{
		capacity: capacity,
		out:      make(chan TraceEvent),
		done:     make(chan struct{}),
		logger:   logger,
		metrics:  metrics,
	}
	b.cond = sync.NewCond(&b.mu)
	go b.pump()
	return b
}

// Offer enqueues an event. It reports false when the event was dropped:
// either the buffer is draining or it is full.
func (b *EventBuffer) Offer(ev TraceEvent) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.draining || b.abandoned {
		b.logger.Warn("event after stop ignored",
			slog.String("event_id", ev.EventID),
			slog.String("listener", ev.Listener.ID()),
		)
		return false
	}
	if len(b.queue) >= b.capacity {
		b.dropped++
		b.metrics.EventDropped()
		b.logger.Error("buffer overflow, dropping event",
			slog.String("event_id", ev.EventID),
			slog.String("listener", ev.Listener.ID()),
			slog.Int("capacity", b.capacity),
		)
		return false
	}
	b.queue = append(b.queue, ev)
	b.metrics.SetBufferDepth(len(b.queue))
	b.cond.Signal()
	return true
}

// Request grants n more events of downstream demand.
func (b *EventBuffer) Request(n int) {
	if n < 1 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.demand += int64(n)
	b.cond.Signal()
}

// Stop marks the buffer as draining: no new events are accepted, buffered
// events are flushed, then the output stream closes. Idempotent.
func (b *EventBuffer) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.draining {
		return
	}
	b.draining = true
	b.cond.Signal()
}

// Abandon closes the output stream without flushing the queue, for when the
// consumer has gone away and no event will be read again. Idempotent.
func (b *EventBuffer) Abandon() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.abandoned {
		return
	}
	b.abandoned = true
	close(b.done)
	b.cond.Signal()
}

// Events is the demand-driven output stream. It closes once the buffer has
// drained after Stop.
func (b *EventBuffer) Events() <-chan TraceEvent { return b.out }

// Dropped reports how many events were dropped on overflow.
func (b *EventBuffer) Dropped() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

func (b *EventBuffer) pump() {
	for {
		b.mu.Lock()
		for len(b.queue) == 0 || (b.demand == 0 && !b.draining) {
			if b.abandoned || (b.draining && len(b.queue) == 0) {
				b.mu.Unlock()
				close(b.out)
				return
			}
			b.cond.Wait()
		}
		if b.abandoned {
			b.mu.Unlock()
			close(b.out)
			return
		}
		ev := b.queue[0]
		b.queue = b.queue[1:]
		if !b.draining {
			b.demand--
		}
		b.metrics.SetBufferDepth(len(b.queue))
		b.mu.Unlock()

		// The consumer may stop reading between the demand grant and this
		// send; done keeps the pump from blocking forever.
		select {
		case b.out <- ev:
		case <-b.done:
			close(b.out)
			return
		}
	}
}

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tiger/exercise-trace-monitor/api/sensors"
	"github.com/tiger/exercise-trace-monitor/internal/observability"
	"github.com/tiger/exercise-trace-monitor/internal/smt"
)

// Config holds pipeline settings.
type Config struct {
	// SamplingRate is the fixed sampling rate every ingested stream must
	// carry.
	SamplingRate int
	// MaxBufferSize bounds the backpressure buffer; overflow drops events.
	MaxBufferSize int
	// Workers bounds cross-monitor step parallelism.
	Workers int
}

func (c Config) withDefaults() Config {
	if c.SamplingRate < 1 {
		c.SamplingRate = 50
	}
	if c.MaxBufferSize < 1 {
		c.MaxBufferSize = 512
	}
	if c.Workers < 1 {
		c.Workers = 4
	}
	return c
}

// Pipeline is the streaming driver: Ingest reshapes and buffers snapshots,
// Run windows buffered events and steps every monitor, Stop drains.
type Pipeline struct {
	cfg      Config
	workflow Workflow
	watches  []WatchedQuery
	monitors []*Monitor
	buffer   *EventBuffer
	pool     *StepPool
	logger   *slog.Logger
	metrics  *observability.Metrics

	// Sliding-window state, owned by the Run loop.
	prev    *windowEntry
	stopped sync.Once
}

type windowEntry struct {
	event TraceEvent
	bind  BindToSensors
}

// New builds a pipeline with one monitor per watched query.
func New(cfg Config, workflow Workflow, backend smt.Backend, watches []WatchedQuery, logger *slog.Logger, metrics *observability.Metrics) (*Pipeline, error) {
	if workflow == nil {
		return nil, fmt.Errorf("workflow is required")
	}
	if backend == nil {
		return nil, fmt.Errorf("smt backend is required")
	}
	if len(watches) == 0 {
		return nil, fmt.Errorf("at least one watched query is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()

	names := make(map[string]bool, len(watches))
	monitors := make([]*Monitor, len(watches))
	for i, w := range watches {
		if w.Name == "" || w.Query == nil || w.Decide == nil {
			return nil, fmt.Errorf("watches[%d]: name, query, and decide are required", i)
		}
		if names[w.Name] {
			return nil, fmt.Errorf("duplicate watch name %q", w.Name)
		}
		names[w.Name] = true
		monitors[i] = NewMonitor(w.Name, w.Query, backend, logger)
	}

	return &Pipeline{
		cfg:      cfg,
		workflow: workflow,
		watches:  watches,
		monitors: monitors,
		buffer:   NewEventBuffer(cfg.MaxBufferSize, logger, metrics),
		pool:     NewStepPool(cfg.Workers, cfg.MaxBufferSize),
		logger:   logger,
		metrics:  metrics,
	}, nil
}

// Ingest validates and reshapes one snapshot into buffered trace events.
// Validation failures are caller bugs and reject the whole snapshot.
func (p *Pipeline) Ingest(net sensors.SensorNet, listener Listener) error {
	events, err := Reshape(net, p.cfg.SamplingRate, listener)
	if err != nil {
		return err
	}
	for _, ev := range events {
		if p.buffer.Offer(ev) {
			p.metrics.EventIngested()
		}
	}
	return nil
}

// Run drives the monitor loop until the buffer drains after Stop, or the
// context ends. The final buffered event is evaluated with lastState=true.
func (p *Pipeline) Run(ctx context.Context) error {
	for {
		p.buffer.Request(1)
		select {
		case <-ctx.Done():
			// The pump may hold an event it is trying to deliver; abandon the
			// buffer so it does not block forever on a reader that is gone.
			p.buffer.Abandon()
			return ctx.Err()
		case ev, ok := <-p.buffer.Events():
			if !ok {
				p.flushTail(ctx)
				return p.pool.Drain(ctx)
			}
			p.handleEvent(ctx, ev)
		}
	}
}

// Stop marks the stream as draining. Idempotent; events offered afterwards
// are ignored.
func (p *Pipeline) Stop() {
	p.stopped.Do(func() {
		p.logger.Info("pipeline draining")
	})
	p.buffer.Stop()
}

// Monitors exposes the per-query monitors, for observability.
func (p *Pipeline) Monitors() []*Monitor { return p.monitors }

// PoolStats returns a snapshot of the shared execution pool counters.
func (p *Pipeline) PoolStats() PoolStats { return p.pool.Stats() }

func (p *Pipeline) handleEvent(ctx context.Context, ev TraceEvent) {
	bind, err := p.applyWorkflow(ev)
	if err != nil {
		p.metrics.WorkflowFailure()
		p.metrics.EventDropped()
		p.logger.Error("workflow failed, dropping event",
			slog.String("event_id", ev.EventID),
			slog.String("listener", ev.Listener.ID()),
			slog.String("error", err.Error()),
		)
		return
	}

	entry := windowEntry{event: ev, bind: bind}
	if p.prev != nil {
		// A successor exists, so the previous event is not the last step.
		p.step(ctx, *p.prev, false)
	}
	p.prev = &entry
}

func (p *Pipeline) flushTail(ctx context.Context) {
	if p.prev == nil {
		return
	}
	p.step(ctx, *p.prev, true)
	p.prev = nil
}

// step fans one windowed event out to every monitor on the shared pool and
// waits for all steps, which keeps each monitor serialized across events.
func (p *Pipeline) step(ctx context.Context, entry windowEntry, last bool) {
	var wg sync.WaitGroup
	for i := range p.monitors {
		monitor := p.monitors[i]
		watch := p.watches[i]
		wg.Add(1)
		run := func() error {
			defer wg.Done()
			v := monitor.Step(ctx, entry.bind.Facts, last)
			if decision := watch.Decide(v); decision != nil {
				p.metrics.DecisionEmitted()
				if err := entry.event.Listener.Deliver(*decision); err != nil {
					p.metrics.DeliveryFailure()
					p.logger.Error("decision delivery failed",
						slog.String("monitor", watch.Name),
						slog.String("event_id", entry.event.EventID),
						slog.String("listener", entry.event.Listener.ID()),
						slog.String("error", err.Error()),
					)
				}
			}
			return nil
		}
		task := StepTask{ID: entry.event.EventID + "/" + watch.Name, Run: run}
		if err := p.pool.Submit(task); err != nil {
			// Saturation only costs parallelism; run the step inline.
			_ = run()
		}
	}
	wg.Wait()
}

func (p *Pipeline) applyWorkflow(ev TraceEvent) (bind BindToSensors, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("workflow panic: %v", r)
		}
	}()
	return p.workflow(ev.Value)
}

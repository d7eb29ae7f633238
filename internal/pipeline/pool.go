package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// StepTask is one monitor step submitted to the shared execution pool.
type StepTask struct {
	ID  string
	Run func() error
}

var (
	// ErrTaskIDRequired is returned when a task is missing an ID.
	ErrTaskIDRequired = errors.New("step task id is required")
	// ErrTaskRunRequired is returned when a task is missing a run function.
	ErrTaskRunRequired = errors.New("step task run func is required")
	// ErrPoolClosed indicates the pool no longer accepts submissions.
	ErrPoolClosed = errors.New("step pool is closed")
	// ErrPoolQueueFull indicates the pool queue is saturated.
	ErrPoolQueueFull = errors.New("step pool queue is full")
)

// PoolStats reports execution pool counters.
type PoolStats struct {
	Submitted  int64
	Completed  int64
	Rejected   int64
	InFlight   int64
	QueueDepth int64
}

// StepPool is the shared bounded executor for monitor steps. Monitors stay
// serialized because the pipeline waits for every step of one event before
// dispatching the next; the pool only bounds cross-monitor parallelism.
type StepPool struct {
	queue     chan StepTask
	wg        sync.WaitGroup
	submitted atomic.Int64
	completed atomic.Int64
	rejected  atomic.Int64
	inFlight  atomic.Int64
	closed    atomic.Bool
}

// NewStepPool creates a pool with the given worker count and queue capacity.
func NewStepPool(workers, capacity int) *StepPool {
	if workers < 1 {
		workers = 4
	}
	if capacity < 1 {
		capacity = 64
	}
	p := &StepPool{queue: make(chan StepTask, capacity)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Submit enqueues a task or returns an error when saturated/closed.
func (p *StepPool) Submit(task StepTask) error {
	if task.ID == "" {
		return fmt.Errorf("%w", ErrTaskIDRequired)
	}
	if task.Run == nil {
		return fmt.Errorf("%w", ErrTaskRunRequired)
	}
	if p.closed.Load() {
		p.rejected.Add(1)
		return fmt.Errorf("%w", ErrPoolClosed)
	}
	select {
	case p.queue <- task:
		p.submitted.Add(1)
		return nil
	default:
		p.rejected.Add(1)
		return fmt.Errorf("%w", ErrPoolQueueFull)
	}
}

// Drain waits until queue/in-flight is empty, then closes the workers.
func (p *StepPool) Drain(ctx context.Context) error {
	for {
		if len(p.queue) == 0 && p.inFlight.Load() == 0 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
	if p.closed.CompareAndSwap(false, true) {
		close(p.queue)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.wg.Wait()
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Stats returns a snapshot of pool counters.
func (p *StepPool) Stats() PoolStats {
	return PoolStats{
		Submitted:  p.submitted.Load(),
		Completed:  p.completed.Load(),
		Rejected:   p.rejected.Load(),
		InFlight:   p.inFlight.Load(),
		QueueDepth: int64(len(p.queue)),
	}
}

func (p *StepPool) worker() {
	defer p.wg.Done()
	for task := range p.queue {
		p.inFlight.Add(1)
		_ = task.Run()
		p.completed.Add(1)
		p.inFlight.Add(-1)
	}
}

package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tiger/exercise-trace-monitor/internal/ldl"
	"github.com/tiger/exercise-trace-monitor/internal/ldl/eval"
	"github.com/tiger/exercise-trace-monitor/internal/smt"
)

// Monitor tracks one watched query across one trace. It holds the residual
// query and a stable-verdict latch; once latched, no further evaluation runs
// and the latched value is returned for every remaining event.
type Monitor struct {
	name    string
	backend smt.Backend
	logger  *slog.Logger

	mu      sync.Mutex
	current ldl.Query
	stable  *ldl.QueryValue
}

// NewMonitor creates a monitor with the residual initialized to the query.
func NewMonitor(name string, q ldl.Query, backend smt.Backend, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{name: name, backend: backend, logger: logger, current: q}
}

// Step consumes one windowed trace event. The monitor mutex serializes the
// whole step, including the SMT round trip, so at most one evaluation is in
// flight per monitor; a step abandoned by context cancellation degrades to
// "unknown" before touching the residual.
func (m *Monitor) Step(ctx context.Context, facts ldl.FactSet, last bool) ldl.QueryValue {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stable != nil {
		return *m.stable
	}

	v := eval.Evaluate(m.current, facts, last)
	if v.IsStable() {
		m.latch(v)
		return v
	}
	next := v.Residual()

	var (
		valid      bool
		sat        bool
		validErr   error
		satErr     error
		simplified = next
	)
	var g errgroup.Group
	g.Go(func() error {
		valid, validErr = m.backend.Valid(ctx, next)
		return nil
	})
	g.Go(func() error {
		sat, satErr = m.backend.Satisfiable(ctx, next)
		return nil
	})
	g.Go(func() error {
		q, err := m.backend.Simplify(ctx, next)
		if err == nil {
			simplified = q
		}
		return nil
	})
	_ = g.Wait()

	// A failed or unknown answer degrades to "not valid, satisfiable" so the
	// monitor keeps running on the unsimplified residual.
	if validErr != nil {
		m.logger.Warn("validity check degraded to unknown",
			slog.String("monitor", m.name),
			slog.String("error", validErr.Error()),
		)
		valid = false
	}
	if satErr != nil {
		m.logger.Warn("satisfiability check degraded to unknown",
			slog.String("monitor", m.name),
			slog.String("error", satErr.Error()),
		)
		sat = true
	}

	switch {
	case valid:
		out := ldl.StableValue(true)
		m.latch(out)
		return out
	case sat:
		m.current = simplified
		// The pre-simplified residual is forwarded so repeated-match
		// detection downstream keys on a stable formula.
		return ldl.UnstableValue(next)
	default:
		out := ldl.StableValue(false)
		m.latch(out)
		return out
	}
}

// Name returns the monitor's watch name.
func (m *Monitor) Name() string { return m.name }

// Residual returns the current residual query, for observability.
func (m *Monitor) Residual() ldl.Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Monitor) latch(v ldl.QueryValue) {
	m.stable = &v
	m.logger.Debug("monitor latched",
		slog.String("monitor", m.name),
		slog.String("value", v.String()),
	)
}

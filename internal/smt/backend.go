// Package smt decides validity and satisfiability of residual queries and
// simplifies them, by encoding the bounded finite-trace semantics into
// SMT-LIB and delegating to an external solver subprocess.
package smt

import (
	"context"
	"errors"

	"github.com/tiger/exercise-trace-monitor/internal/ldl"
)

var (
	// ErrBoundExceeded indicates the query needs more trace positions than
	// the configured unrolling bound. Callers treat it as "unknown".
	ErrBoundExceeded = errors.New("smt: unrolling bound exceeded")
	// ErrSolverUnknown indicates the solver answered "unknown".
	ErrSolverUnknown = errors.New("smt: solver returned unknown")
	// ErrBreakerOpen indicates the backend is failing fast after repeated
	// solver failures.
	ErrBreakerOpen = errors.New("smt: circuit breaker open")
	// ErrSolverUnavailable indicates the solver subprocess could not be
	// started or restarted.
	ErrSolverUnavailable = errors.New("smt: solver unavailable")
)

// Backend answers validity and satisfiability questions about queries and
// rewrites them into equivalent normalized form. Implementations must be safe
// for concurrent use; calls may block on the underlying solver and honor
// context cancellation.
type Backend interface {
	// Valid reports whether q holds on every trace within the decidable
	// fragment.
	Valid(ctx context.Context, q ldl.Query) (bool, error)
	// Satisfiable reports whether some trace satisfies q.
	Satisfiable(ctx context.Context, q ldl.Query) (bool, error)
	// Simplify returns an equivalent query in negation normal form.
	Simplify(ctx context.Context, q ldl.Query) (ldl.Query, error)
	// Statistics returns a snapshot of backend counters.
	Statistics() Stats
}

// Stats reports backend counters.
type Stats struct {
	ValidCalls     int64
	SatCalls       int64
	SimplifyCalls  int64
	CacheHits      int64
	CacheMisses    int64
	SolverErrors   int64
	SolverRestarts int64
	BreakerRejects int64
}

package smt

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tiger/exercise-trace-monitor/internal/ldl"
	"github.com/tiger/exercise-trace-monitor/internal/observability"
)

// Config holds solver backend settings.
type Config struct {
	// SolverPath is the solver executable, default "z3".
	SolverPath string
	// SolverArgs are the arguments keeping the solver reading SMT-LIB from
	// stdin, default ["-in"].
	SolverArgs []string
	// UnrollBound is the maximum trace length the encoder unrolls to.
	UnrollBound int
	// Timeout bounds one solver round trip.
	Timeout time.Duration
	// CacheSize bounds the structural result cache.
	CacheSize int
	// BreakerThreshold is the consecutive-failure count that opens the
	// circuit breaker.
	BreakerThreshold int
	// BreakerCooldown is how long the breaker stays open.
	BreakerCooldown time.Duration
}

func (c Config) withDefaults() Config {
	if c.SolverPath == "" {
		c.SolverPath = "z3"
	}
	if len(c.SolverArgs) == 0 {
		c.SolverArgs = []string{"-in"}
	}
	if c.UnrollBound < 1 {
		c.UnrollBound = 8
	}
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Second
	}
	if c.CacheSize < 1 {
		c.CacheSize = 1024
	}
	if c.BreakerThreshold < 1 {
		c.BreakerThreshold = 5
	}
	if c.BreakerCooldown <= 0 {
		c.BreakerCooldown = 30 * time.Second
	}
	return c
}

// SolverBackend implements Backend on an external SMT solver subprocess.
// Safe for concurrent use: solver access is serialized, results are cached
// by structural key, and repeated failures trip a circuit breaker.
type SolverBackend struct {
	cfg     Config
	logger  *slog.Logger
	metrics *observability.Metrics

	procMu sync.Mutex
	proc   *process

	cache   *lruCache
	breaker *breaker

	validCalls     atomic.Int64
	satCalls       atomic.Int64
	simplifyCalls  atomic.Int64
	cacheHits      atomic.Int64
	cacheMisses    atomic.Int64
	solverErrors   atomic.Int64
	solverRestarts atomic.Int64
	breakerRejects atomic.Int64
}

// NewSolverBackend builds a backend. The subprocess starts lazily on the
// first call, so construction never fails; a missing solver surfaces as
// per-call errors that callers degrade to "unknown".
func NewSolverBackend(cfg Config, logger *slog.Logger, metrics *observability.Metrics) *SolverBackend {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	return &SolverBackend{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		cache:   newLRUCache(cfg.CacheSize),
		breaker: newBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown),
	}
}

// Valid reports whether q holds on every trace up to the unrolling bound.
func (b *SolverBackend) Valid(ctx context.Context, q ldl.Query) (bool, error) {
	b.validCalls.Add(1)
	b.metrics.SolverCall("valid")

	key := "valid|" + q.Key()
	if v, ok := b.cached(key); ok {
		return v.(bool), nil
	}
	res, err := b.checkSat(ctx, ldl.Not(q))
	if err != nil {
		return false, err
	}
	if res == resultUnknown {
		return false, ErrSolverUnknown
	}
	valid := res == resultUnsat
	b.cache.put(key, valid)
	return valid, nil
}

// Satisfiable reports whether some trace up to the unrolling bound satisfies q.
func (b *SolverBackend) Satisfiable(ctx context.Context, q ldl.Query) (bool, error) {
	b.satCalls.Add(1)
	b.metrics.SolverCall("satisfiable")

	key := "sat|" + q.Key()
	if v, ok := b.cached(key); ok {
		return v.(bool), nil
	}
	res, err := b.checkSat(ctx, q)
	if err != nil {
		return false, err
	}
	if res == resultUnknown {
		return false, ErrSolverUnknown
	}
	sat := res == resultSat
	b.cache.put(key, sat)
	return sat, nil
}

// Simplify rewrites q into an equivalent normalized query. Solver probes
// collapse valid or unsatisfiable residuals to TT/FF; probe failures degrade
// to the rewrite-only result.
func (b *SolverBackend) Simplify(ctx context.Context, q ldl.Query) (ldl.Query, error) {
	b.simplifyCalls.Add(1)
	b.metrics.SolverCall("simplify")

	key := "simplify|" + q.Key()
	if v, ok := b.cached(key); ok {
		return v.(ldl.Query), nil
	}

	out := Rewrite(q)
	switch out.(type) {
	case ldl.TT, ldl.FF:
		b.cache.put(key, out)
		return out, nil
	}

	valid, err := b.Valid(ctx, out)
	if err != nil {
		return out, nil
	}
	if valid {
		out = ldl.TT{}
	} else {
		sat, err := b.Satisfiable(ctx, out)
		if err != nil {
			return out, nil
		}
		if !sat {
			out = ldl.FF{}
		}
	}
	b.cache.put(key, out)
	return out, nil
}

// Statistics returns a snapshot of backend counters.
func (b *SolverBackend) Statistics() Stats {
	return Stats{
		ValidCalls:     b.validCalls.Load(),
		SatCalls:       b.satCalls.Load(),
		SimplifyCalls:  b.simplifyCalls.Load(),
		CacheHits:      b.cacheHits.Load(),
		CacheMisses:    b.cacheMisses.Load(),
		SolverErrors:   b.solverErrors.Load(),
		SolverRestarts: b.solverRestarts.Load(),
		BreakerRejects: b.breakerRejects.Load(),
	}
}

// Close terminates the solver subprocess if one is running.
func (b *SolverBackend) Close() {
	b.procMu.Lock()
	defer b.procMu.Unlock()
	if b.proc != nil {
		b.proc.close()
		b.proc = nil
	}
}

func (b *SolverBackend) cached(key string) (any, bool) {
	if v, ok := b.cache.get(key); ok {
		b.cacheHits.Add(1)
		b.metrics.CacheHit()
		return v, true
	}
	b.cacheMisses.Add(1)
	b.metrics.CacheMiss()
	return nil, false
}

func (b *SolverBackend) checkSat(ctx context.Context, q ldl.Query) (solverResult, error) {
	script, truncated, err := encodeSatScript(q, b.cfg.UnrollBound)
	if err != nil {
		// Bound exhaustion is a property of the query, not a solver fault.
		return "", err
	}
	if !b.breaker.allow() {
		b.breakerRejects.Add(1)
		return "", ErrBreakerOpen
	}

	b.procMu.Lock()
	defer b.procMu.Unlock()

	if b.proc == nil {
		proc, err := startProcess(b.cfg.SolverPath, b.cfg.SolverArgs, b.logger)
		if err != nil {
			b.recordFailure("start", err)
			return "", err
		}
		b.proc = proc
	}

	callCtx := ctx
	if b.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, b.cfg.Timeout)
		defer cancel()
	}

	res, err := b.proc.check(callCtx, script)
	if err != nil {
		// The subprocess state is unusable after a failed round trip.
		b.proc.kill()
		b.proc = nil
		b.solverRestarts.Add(1)
		b.metrics.SolverRestart()
		b.recordFailure("check", err)
		return "", err
	}
	b.breaker.success()
	if res == resultUnsat && truncated {
		// A witness found within the bound is conclusive, but unsat over a
		// truncated sweep says nothing about longer traces.
		return "", fmt.Errorf("%w: step depth", ErrBoundExceeded)
	}
	return res, nil
}

func (b *SolverBackend) recordFailure(stage string, err error) {
	b.solverErrors.Add(1)
	b.metrics.SolverError()
	b.breaker.failure()
	b.logger.Error("solver call failed",
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
}

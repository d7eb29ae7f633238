// Package observability exposes the monitor's Prometheus instrumentation.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the pipeline and solver counters. A nil *Metrics is valid
// and records nothing, so components can run uninstrumented.
type Metrics struct {
	solverCalls      *prometheus.CounterVec
	solverErrors     prometheus.Counter
	solverRestarts   prometheus.Counter
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	eventsIngested   prometheus.Counter
	eventsDropped    prometheus.Counter
	workflowFailures prometheus.Counter
	decisionsEmitted prometheus.Counter
	deliveryFailures prometheus.Counter
	bufferDepth      prometheus.Gauge
}

// NewMetrics registers the monitor metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		solverCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "etm_solver_calls_total",
			Help: "SMT backend calls by operation.",
		}, []string{"op"}),
		solverErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "etm_solver_errors_total",
			Help: "SMT backend calls that failed or timed out.",
		}),
		solverRestarts: factory.NewCounter(prometheus.CounterOpts{
			Name: "etm_solver_restarts_total",
			Help: "Solver subprocess restarts.",
		}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "etm_solver_cache_hits_total",
			Help: "SMT result cache hits.",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "etm_solver_cache_misses_total",
			Help: "SMT result cache misses.",
		}),
		eventsIngested: factory.NewCounter(prometheus.CounterOpts{
			Name: "etm_events_ingested_total",
			Help: "Sensor net values accepted by the pipeline.",
		}),
		eventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "etm_events_dropped_total",
			Help: "Sensor net values dropped on buffer overflow or workflow failure.",
		}),
		workflowFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "etm_workflow_failures_total",
			Help: "Workflow plug-in invocations that returned an error.",
		}),
		decisionsEmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "etm_decisions_emitted_total",
			Help: "Classified exercise decisions delivered downstream.",
		}),
		deliveryFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "etm_delivery_failures_total",
			Help: "Decision deliveries that returned an error.",
		}),
		bufferDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "etm_buffer_depth",
			Help: "Current number of buffered sensor events.",
		}),
	}
}

func (m *Metrics) SolverCall(op string) {
	if m == nil {
		return
	}
	m.solverCalls.WithLabelValues(op).Inc()
}

func (m *Metrics) SolverError() {
	if m == nil {
		return
	}
	m.solverErrors.Inc()
}

func (m *Metrics) SolverRestart() {
	if m == nil {
		return
	}
	m.solverRestarts.Inc()
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

func (m *Metrics) EventIngested() {
	if m == nil {
		return
	}
	m.eventsIngested.Inc()
}

func (m *Metrics) EventDropped() {
	if m == nil {
		return
	}
	m.eventsDropped.Inc()
}

func (m *Metrics) WorkflowFailure() {
	if m == nil {
		return
	}
	m.workflowFailures.Inc()
}

func (m *Metrics) DecisionEmitted() {
	if m == nil {
		return
	}
	m.decisionsEmitted.Inc()
}

func (m *Metrics) DeliveryFailure() {
	if m == nil {
		return
	}
	m.deliveryFailures.Inc()
}

func (m *Metrics) SetBufferDepth(depth int) {
	if m == nil {
		return
	}
	m.bufferDepth.Set(float64(depth))
}

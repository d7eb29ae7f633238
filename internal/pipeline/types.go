// Package pipeline drives the streaming monitor: it reshapes sensor
// snapshots into per-block trace events, buffers them under backpressure,
// labels them with ground facts, and feeds them through per-query monitors
// that emit classification decisions.
package pipeline

import (
	"github.com/tiger/exercise-trace-monitor/api/exercise"
	"github.com/tiger/exercise-trace-monitor/api/sensors"
	"github.com/tiger/exercise-trace-monitor/internal/ldl"
)

// Listener identifies one logical trace and receives its decisions. Delivery
// is fire-and-forget: errors are logged, never retried.
type Listener interface {
	ID() string
	Deliver(decision exercise.ClassifiedExercise) error
}

// TraceEvent is one reshaped trace step paired with its originating listener.
type TraceEvent struct {
	EventID  string
	Value    sensors.SensorNetValue
	Listener Listener
}

// BindToSensors pairs a raw sensor value with the ground facts the workflow
// inferred for it.
type BindToSensors struct {
	Facts ldl.FactSet
	Value sensors.SensorNetValue
}

// Workflow labels one sensor value with the ground facts holding on it.
// Implementations must be pure; an error (or panic) drops the event.
type Workflow func(value sensors.SensorNetValue) (BindToSensors, error)

// DecisionFunc maps one monitor verdict to an optional downstream decision.
type DecisionFunc func(v ldl.QueryValue) *exercise.ClassifiedExercise

// WatchedQuery pairs a named query with its decision transform.
type WatchedQuery struct {
	Name   string
	Query  ldl.Query
	Decide DecisionFunc
}

// PositiveDecision builds the conventional transform: emit a classification
// once the verdict commits to true, and a rejection once it commits to false.
func PositiveDecision(ex exercise.Exercise, confidence float64) DecisionFunc {
	return func(v ldl.QueryValue) *exercise.ClassifiedExercise {
		if !v.IsStable() {
			return nil
		}
		if v.Verdict() {
			matched := ex
			return &exercise.ClassifiedExercise{Confidence: confidence, Exercise: &matched}
		}
		return &exercise.ClassifiedExercise{Confidence: confidence}
	}
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tiger/exercise-trace-monitor/api/exercise"
	"github.com/tiger/exercise-trace-monitor/api/sensors"
	"github.com/tiger/exercise-trace-monitor/internal/config"
	"github.com/tiger/exercise-trace-monitor/internal/ldl"
	"github.com/tiger/exercise-trace-monitor/internal/observability"
	"github.com/tiger/exercise-trace-monitor/internal/pipeline"
	"github.com/tiger/exercise-trace-monitor/internal/smt"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "etm-runner: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("etm-runner", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to YAML configuration (defaults apply when empty)")
	exerciseName := fs.String("exercise", "squat", "exercise name reported on a match")
	gesture := fs.String("gesture", "squat", "gesture fact name asserted by the demo workflow")
	location := fs.String("location", string(sensors.LocationWaist), "sensor location the demo workflow labels")
	threshold := fs.Float64("threshold", 1.5, "accelerometer magnitude above which the gesture fact is asserted")
	probability := fs.Float64("probability", 0.8, "probability attribute attached to the gesture fact")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(stderr, nil))
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	backend := smt.NewSolverBackend(cfg.SolverBackend(), logger, metrics)
	defer backend.Close()

	loc := sensors.Location(*location)
	fact := ldl.Gesture(*gesture, *probability, loc)
	watch := pipeline.WatchedQuery{
		Name:   *exerciseName,
		Query:  ldl.Diamond(ldl.Formula{Prop: ldl.AssertGround(fact)}),
		Decide: pipeline.PositiveDecision(exercise.Exercise{Name: *exerciseName}, *probability),
	}

	workflow := thresholdWorkflow(fact, loc, *threshold)

	p, err := pipeline.New(cfg.Pipeline(), workflow, backend, []pipeline.WatchedQuery{watch}, logger, metrics)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	listener := &printListener{id: "stdin", out: stdout}
	go func() {
		defer p.Stop()
		dec := json.NewDecoder(stdin)
		for {
			var net sensors.SensorNet
			if err := dec.Decode(&net); err != nil {
				if err != io.EOF {
					logger.Error("snapshot decode failed", slog.String("error", err.Error()))
				}
				return
			}
			if err := p.Ingest(net, listener); err != nil {
				logger.Error("snapshot rejected", slog.String("error", err.Error()))
			}
		}
	}()

	if err := p.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	stats := backend.Statistics()
	logger.Info("runner finished",
		slog.Int64("valid_calls", stats.ValidCalls),
		slog.Int64("sat_calls", stats.SatCalls),
		slog.Int64("cache_hits", stats.CacheHits),
		slog.Int64("solver_errors", stats.SolverErrors),
	)
	return nil
}

// thresholdWorkflow asserts the gesture fact when any accelerometer sample at
// the target location exceeds the magnitude threshold.
func thresholdWorkflow(fact ldl.GroundFact, loc sensors.Location, threshold float64) pipeline.Workflow {
	return func(value sensors.SensorNetValue) (pipeline.BindToSensors, error) {
		facts := ldl.NewFactSet()
		for _, sample := range value.Values[loc] {
			if sample.Kind != sensors.KindAccelerometer {
				continue
			}
			if sample.X*sample.X+sample.Y*sample.Y+sample.Z*sample.Z > threshold*threshold {
				facts.Add(fact)
				break
			}
		}
		return pipeline.BindToSensors{Facts: facts, Value: value}, nil
	}
}

type printListener struct {
	id  string
	out io.Writer
}

func (l *printListener) ID() string { return l.id }

func (l *printListener) Deliver(d exercise.ClassifiedExercise) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(l.out, string(raw))
	return err
}

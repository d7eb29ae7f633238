package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tiger/exercise-trace-monitor/api/exercise"
	"github.com/tiger/exercise-trace-monitor/api/sensors"
)

type recordingListener struct {
	id        string
	decisions []exercise.ClassifiedExercise
	err       error
}

func (l *recordingListener) ID() string { return l.id }

func (l *recordingListener) Deliver(d exercise.ClassifiedExercise) error {
	if l.err != nil {
		return l.err
	}
	l.decisions = append(l.decisions, d)
	return nil
}

func accel(x float64) sensors.SensorValue {
	return sensors.SensorValue{Kind: sensors.KindAccelerometer, X: x}
}

func snapshot(rate int, wristX, waistX []float64) sensors.SensorNet {
	wrist := make([]sensors.SensorValue, len(wristX))
	for i, x := range wristX {
		wrist[i] = accel(x)
	}
	waist := make([]sensors.SensorValue, len(waistX))
	for i, x := range waistX {
		waist[i] = accel(x)
	}
	return sensors.SensorNet{Streams: map[sensors.Location][]sensors.SensorStream{
		sensors.LocationLeftWrist: {{SamplingRate: rate, Values: wrist}},
		sensors.LocationWaist:     {{SamplingRate: rate, Values: waist}},
	}}
}

func TestReshapeSplitsBlocks(t *testing.T) {
	t.Parallel()

	listener := &recordingListener{id: "trace-1"}
	net := snapshot(50, []float64{1, 2, 3}, []float64{4, 5, 6})

	events, err := Reshape(net, 50, listener)
	require.NoError(t, err)
	require.Len(t, events, 3)

	seen := make(map[string]bool)
	for i, ev := range events {
		require.NotEmpty(t, ev.EventID)
		require.False(t, seen[ev.EventID])
		seen[ev.EventID] = true
		require.Same(t, listener, ev.Listener.(*recordingListener))

		require.Equal(t, float64(i+1), ev.Value.Values[sensors.LocationLeftWrist][0].X)
		require.Equal(t, float64(i+4), ev.Value.Values[sensors.LocationWaist][0].X)
	}
}

func TestReshapeRequiresListener(t *testing.T) {
	t.Parallel()

	_, err := Reshape(snapshot(50, []float64{1}, []float64{1}), 50, nil)
	require.Error(t, err)
}

func TestReshapeRejectsInvalidSnapshot(t *testing.T) {
	t.Parallel()

	listener := &recordingListener{id: "trace-1"}

	_, err := Reshape(sensors.SensorNet{}, 50, listener)
	require.Error(t, err)

	uneven := sensors.SensorNet{Streams: map[sensors.Location][]sensors.SensorStream{
		sensors.LocationLeftWrist: {
			{SamplingRate: 50, Values: []sensors.SensorValue{accel(1), accel(2)}},
			{SamplingRate: 50, Values: []sensors.SensorValue{accel(1)}},
		},
	}}
	_, err = Reshape(uneven, 50, listener)
	require.Error(t, err)
}

func TestReshapeRejectsWrongSamplingRate(t *testing.T) {
	t.Parallel()

	listener := &recordingListener{id: "trace-1"}
	_, err := Reshape(snapshot(25, []float64{1}, []float64{1}), 50, listener)
	require.Error(t, err)
	require.Contains(t, err.Error(), "sampling rate")
}

package pipeline

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/tiger/exercise-trace-monitor/api/sensors"
)

// Reshape splits one validated snapshot into per-block trace events: event i
// carries the i-th sample of every sensor point, grouped by location in point
// order. Emission order follows block index. Violated ingress preconditions
// (empty streams, inconsistent block sizes, unexpected sampling rate) are
// caller bugs and fail the whole snapshot.
func Reshape(net sensors.SensorNet, samplingRate int, listener Listener) ([]TraceEvent, error) {
	if listener == nil {
		return nil, fmt.Errorf("listener is required")
	}
	if err := net.Validate(); err != nil {
		return nil, fmt.Errorf("ingress validation: %w", err)
	}
	if rate := net.SamplingRate(); rate != samplingRate {
		return nil, fmt.Errorf("ingress validation: sampling rate %d, configured %d", rate, samplingRate)
	}

	blockSize := net.BlockSize()
	events := make([]TraceEvent, 0, blockSize)
	for i := 0; i < blockSize; i++ {
		values := make(map[sensors.Location][]sensors.SensorValue, len(net.Streams))
		for loc, streams := range net.Streams {
			row := make([]sensors.SensorValue, len(streams))
			for j, stream := range streams {
				row[j] = stream.Values[i]
			}
			values[loc] = row
		}
		events = append(events, TraceEvent{
			EventID:  uuid.NewString(),
			Value:    sensors.SensorNetValue{Values: values},
			Listener: listener,
		})
	}
	return events, nil
}

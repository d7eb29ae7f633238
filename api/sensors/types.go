package sensors

import "fmt"

// Location is an enumerated on-body sensor position.
type Location string

const (
	LocationLeftWrist  Location = "left_wrist"
	LocationRightWrist Location = "right_wrist"
	LocationWaist      Location = "waist"
	LocationChest      Location = "chest"
	LocationLeftAnkle  Location = "left_ankle"
	LocationRightAnkle Location = "right_ankle"
)

// Kind discriminates sensor sample variants.
type Kind string

const (
	KindAccelerometer Kind = "accelerometer"
	KindRotation      Kind = "rotation"
)

// SensorValue is one sample from a single sensor point.
type SensorValue struct {
	Kind Kind    `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
}

func (v SensorValue) Validate() error {
	if v.Kind != KindAccelerometer && v.Kind != KindRotation {
		return fmt.Errorf("invalid sensor value kind: %q", v.Kind)
	}
	return nil
}

// SensorStream is a uniformly sampled vector of values from one sensor point.
type SensorStream struct {
	SamplingRate int           `json:"sampling_rate"`
	Values       []SensorValue `json:"values"`
}

func (s SensorStream) Validate() error {
	if s.SamplingRate < 1 {
		return fmt.Errorf("sampling_rate must be >=1, got %d", s.SamplingRate)
	}
	if len(s.Values) == 0 {
		return fmt.Errorf("sensor stream requires at least one value")
	}
	for i, v := range s.Values {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("values[%d]: %w", i, err)
		}
	}
	return nil
}

// SensorNet is one snapshot: per-location lists of sensor point streams.
type SensorNet struct {
	Streams map[Location][]SensorStream `json:"streams"`
}

// Validate checks the snapshot-wide ingress preconditions: non-empty
// locations and streams, one shared block size, one shared sampling rate.
func (n SensorNet) Validate() error {
	if len(n.Streams) == 0 {
		return fmt.Errorf("sensor net requires at least one location")
	}
	blockSize := -1
	rate := -1
	for loc, streams := range n.Streams {
		if !isLocation(loc) {
			return fmt.Errorf("invalid location: %q", loc)
		}
		if len(streams) == 0 {
			return fmt.Errorf("location %q has no streams", loc)
		}
		for i, s := range streams {
			if err := s.Validate(); err != nil {
				return fmt.Errorf("location %q streams[%d]: %w", loc, i, err)
			}
			if blockSize == -1 {
				blockSize = len(s.Values)
			} else if len(s.Values) != blockSize {
				return fmt.Errorf("location %q streams[%d]: block size %d != %d", loc, i, len(s.Values), blockSize)
			}
			if rate == -1 {
				rate = s.SamplingRate
			} else if s.SamplingRate != rate {
				return fmt.Errorf("location %q streams[%d]: sampling rate %d != %d", loc, i, s.SamplingRate, rate)
			}
		}
	}
	return nil
}

// BlockSize returns the shared vector length across all streams.
// Undefined before Validate succeeds.
func (n SensorNet) BlockSize() int {
	for _, streams := range n.Streams {
		for _, s := range streams {
			return len(s.Values)
		}
	}
	return 0
}

// SamplingRate returns the shared sampling rate across all streams.
// Undefined before Validate succeeds.
func (n SensorNet) SamplingRate() int {
	for _, streams := range n.Streams {
		for _, s := range streams {
			return s.SamplingRate
		}
	}
	return 0
}

// SensorNetValue is one trace step: the i-th sample of every sensor point,
// grouped by location in point order.
type SensorNetValue struct {
	Values map[Location][]SensorValue `json:"values"`
}

func (v SensorNetValue) Validate() error {
	if len(v.Values) == 0 {
		return fmt.Errorf("sensor net value requires at least one location")
	}
	for loc, samples := range v.Values {
		if !isLocation(loc) {
			return fmt.Errorf("invalid location: %q", loc)
		}
		if len(samples) == 0 {
			return fmt.Errorf("location %q has no samples", loc)
		}
		for i, s := range samples {
			if err := s.Validate(); err != nil {
				return fmt.Errorf("location %q samples[%d]: %w", loc, i, err)
			}
		}
	}
	return nil
}

func isLocation(l Location) bool {
	switch l {
	case LocationLeftWrist, LocationRightWrist, LocationWaist, LocationChest, LocationLeftAnkle, LocationRightAnkle:
		return true
	default:
		return false
	}
}

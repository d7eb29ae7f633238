package exercise

import "fmt"

// Exercise names a recognized exercise.
type Exercise struct {
	Name string `json:"name"`
}

func (e Exercise) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("exercise name is required")
	}
	return nil
}

// ClassifiedExercise is the downstream decision message. Exercise is nil
// when the monitor rules an exercise out.
type ClassifiedExercise struct {
	Confidence float64   `json:"confidence"`
	Exercise   *Exercise `json:"exercise,omitempty"`
}

func (c ClassifiedExercise) Validate() error {
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("confidence must be within [0,1], got %v", c.Confidence)
	}
	if c.Exercise != nil {
		if err := c.Exercise.Validate(); err != nil {
			return err
		}
	}
	return nil
}

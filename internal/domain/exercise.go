// internal/domain/exercise.go
package domain

import "errors"

// ExerciseType classifies an exercise within a workout.
type ExerciseType string

const (
	ExerciseWarmup   ExerciseType = "warmup"
	ExerciseStrength ExerciseType = "strength"
	ExerciseCardio   ExerciseType = "cardio"
	ExerciseCooldown ExerciseType = "cooldown"
)

// Valid reports whether t is a known exercise type.
func (t ExerciseType) Valid() bool {
	switch t {
	case ExerciseWarmup, ExerciseStrength, ExerciseCardio, ExerciseCooldown:
		return true
	}
	return false
}

// Exercise is one step of a workout. Either DurationSeconds or Reps (or both) is set.
type Exercise struct {
	Name            string       `json:"name" bson:"name"`
	Type            ExerciseType `json:"type" bson:"type"`
	DurationSeconds *int         `json:"duration_sec,omitempty" bson:"durationSec,omitempty"` // Timed exercises
	Reps            string       `json:"reps,omitempty" bson:"reps,omitempty"`                // Free-form label, e.g. "3x12"
}

// Validate checks the exercise shape.
func (e *Exercise) Validate() error {
	if e.Name == "" {
		return errors.New("name is required")
	}
	if !e.Type.Valid() {
		return errors.New("unknown exercise type " + string(e.Type))
	}
	if e.DurationSeconds == nil && e.Reps == "" {
		return errors.New("either duration or reps is required")
	}
	if e.DurationSeconds != nil && *e.DurationSeconds <= 0 {
		return errors.New("duration must be positive")
	}
	return nil
}

// Duration returns the exercise duration in seconds, or 0 for rep-based exercises.
func (e *Exercise) Duration() int {
	if e.DurationSeconds == nil {
		return 0
	}
	return *e.DurationSeconds
}

package domain

import (
	"errors"
	"fmt"
)

// Level is the intensity label of a catalog workout.
type Level string

const (
	LevelEasy   Level = "Easy"
	LevelMedium Level = "Medium"
	LevelHeavy  Level = "Heavy"
)

// IntensityLevels lists the levels in catalog display order.
var IntensityLevels = []Level{LevelEasy, LevelMedium, LevelHeavy}

// Valid reports whether l is one of the known intensity levels.
func (l Level) Valid() bool {
	switch l {
	case LevelEasy, LevelMedium, LevelHeavy:
		return true
	}
	return false
}

// ErrInvalidWorkout is returned when a workout cannot be run as a session.
var ErrInvalidWorkout = errors.New("invalid workout")

// Workout is a single entry of the workout catalog. It is read-only once loaded.
type Workout struct {
	ID              string     `json:"id" bson:"id"`
	Title           string     `json:"title" bson:"title"`
	Level           Level      `json:"level" bson:"level"`
	DurationMinutes int        `json:"duration_min" bson:"durationMin"`
	METValue        float64    `json:"met_value" bson:"metValue"` // Metabolic equivalent used for calorie estimates
	ImagePath       string     `json:"image_path" bson:"imagePath"`
	Exercises       []Exercise `json:"exercises" bson:"exercises"`
	Description     string     `json:"description,omitempty" bson:"description,omitempty"`
	Featured        bool       `json:"featured,omitempty" bson:"featured,omitempty"`
}

// IsLastExercise reports whether index points at the final exercise.
func (w *Workout) IsLastExercise(index int) bool {
	return index == len(w.Exercises)-1
}

// Validate checks that the workout can drive a session: at least one
// exercise, a positive MET value, and every exercise well formed.
func (w *Workout) Validate() error {
	if w == nil {
		return fmt.Errorf("%w: workout is nil", ErrInvalidWorkout)
	}
	if len(w.Exercises) == 0 {
		return fmt.Errorf("%w: workout %q has no exercises", ErrInvalidWorkout, w.ID)
	}
	if !(w.METValue > 0) {
		return fmt.Errorf("%w: workout %q has non-positive MET value %v", ErrInvalidWorkout, w.ID, w.METValue)
	}
	for i := range w.Exercises {
		if err := w.Exercises[i].Validate(); err != nil {
			return fmt.Errorf("%w: exercise %d of workout %q: %v", ErrInvalidWorkout, i, w.ID, err)
		}
	}
	return nil
}

// WorkoutLibrary is the catalog document stored in object storage.
type WorkoutLibrary struct {
	Version  int       `json:"version" bson:"version"`
	Workouts []Workout `json:"workouts" bson:"workouts"`
}

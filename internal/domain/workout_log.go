package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutLog records one completed workout session in the user's history.
type WorkoutLog struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID             primitive.ObjectID `bson:"userId" json:"userId"`
	WorkoutID          string             `bson:"workoutId" json:"workoutId"`
	WorkoutTitle       string             `bson:"workoutTitle" json:"workoutTitle"`
	Date               time.Time          `bson:"date" json:"date"` // Session start time
	DurationMinutes    int                `bson:"durationMin" json:"durationMin"`
	CaloriesBurned     int                `bson:"caloriesBurned" json:"caloriesBurned"`
	CompletedExercises int                `bson:"completedExercises" json:"completedExercises"`
	TotalExercises     int                `bson:"totalExercises" json:"totalExercises"`
}

// HistoryStats aggregates a user's workout history.
type HistoryStats struct {
	TotalWorkouts int `json:"totalWorkouts"`
	TotalCalories int `json:"totalCalories"`
	TotalMinutes  int `json:"totalMinutes"`
}

// CachedCatalog is a locally cached copy of the workout catalog document.
type CachedCatalog struct {
	Key       string    `bson:"_id" json:"key"`
	Payload   []byte    `bson:"payload" json:"-"`
	FetchedAt time.Time `bson:"fetchedAt" json:"fetchedAt"`
}

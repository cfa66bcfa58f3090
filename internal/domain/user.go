package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile option lists offered during profile setup.
var (
	Genders       = []string{"Male", "Female", "Other"}
	Goals         = []string{"Lose Weight", "Build Muscle", "Get Fit", "Improve Endurance", "Stay Healthy"}
	FitnessLevels = []string{"Beginner", "Intermediate", "Advanced"}
)

// Inclusive ranges accepted for profile measurements.
const (
	MinAge      = 13
	MaxAge      = 99
	MinWeightKg = 30
	MaxWeightKg = 250
	MinHeightCm = 100
	MaxHeightCm = 250
)

// User is an account. Profile stays nil until the user completes profile setup.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Profile      *Profile           `bson:"profile,omitempty" json:"profile,omitempty"`
	Favorites    []string           `bson:"favorites" json:"favorites"` // Workout IDs
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Profile holds the personal details collected at setup.
type Profile struct {
	Name     string  `bson:"name" json:"name"`
	Gender   string  `bson:"gender" json:"gender"`
	Age      int     `bson:"age" json:"age"`
	WeightKg float64 `bson:"weight" json:"weight"`
	HeightCm float64 `bson:"height" json:"height"`
	Goal     string  `bson:"goal" json:"goal"`
	Level    string  `bson:"level" json:"level"`
}

func (u *User) HasProfile() bool {
	return u.Profile != nil
}

// IsFavorite reports whether workoutID is in the user's favorites.
func (u *User) IsFavorite(workoutID string) bool {
	for _, id := range u.Favorites {
		if id == workoutID {
			return true
		}
	}
	return false
}

package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vyam/fitness-app/internal/domain"
)

func TestCalculateCalories(t *testing.T) {
	require.Equal(t, 184, CalculateCalories(30, 5.0, 70))
	require.Equal(t, 25, CalculateCalories(3, 6.0, 80))
	require.Zero(t, CalculateCalories(30, 5.0, UnknownWeight))
	require.Zero(t, CalculateCalories(0, 5.0, 70))
}

func TestElapsedMinutesRoundsHalfUp(t *testing.T) {
	require.Equal(t, 0, elapsedMinutes(29))
	require.Equal(t, 1, elapsedMinutes(30))
	require.Equal(t, 1, elapsedMinutes(89))
	require.Equal(t, 2, elapsedMinutes(90))
}

func TestFormatExerciseDuration(t *testing.T) {
	require.Equal(t, "1:30 min", FormatExerciseDuration(90))
	require.Equal(t, "0:45 min", FormatExerciseDuration(45))
	require.Equal(t, "2:00 min", FormatExerciseDuration(120))
}

func TestFormatTime(t *testing.T) {
	require.Equal(t, "00:00", FormatTime(0))
	require.Equal(t, "00:30", FormatTime(30))
	require.Equal(t, "01:05", FormatTime(65))
	require.Equal(t, "61:01", FormatTime(3661))
}

func TestFormatDuration(t *testing.T) {
	require.Equal(t, "45min", FormatDuration(45))
	require.Equal(t, "1h", FormatDuration(60))
	require.Equal(t, "1h 30min", FormatDuration(90))
}

func TestWorkoutDuration(t *testing.T) {
	require.Equal(t, 90, WorkoutDuration(threeStepWorkout().Exercises))
	require.Zero(t, WorkoutDuration([]domain.Exercise{{Name: "x", Reps: "10"}}))
}

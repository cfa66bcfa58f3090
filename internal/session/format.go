package session

import (
	"fmt"

	"vyam/fitness-app/internal/domain"
)

// FormatTime renders seconds as MM:SS for the elapsed and rest timers.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatExerciseDuration renders an exercise length, e.g. 90 -> "1:30 min".
func FormatExerciseDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d min", seconds/60, seconds%60)
}

// FormatDuration renders a workout length in minutes, e.g. "45min", "1h", "1h 30min".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dmin", minutes)
	}
	hours, mins := minutes/60, minutes%60
	if mins > 0 {
		return fmt.Sprintf("%dh %dmin", hours, mins)
	}
	return fmt.Sprintf("%dh", hours)
}

// WorkoutDuration sums the timed exercises of a workout, in seconds.
// Rep-based exercises contribute nothing.
func WorkoutDuration(exercises []domain.Exercise) int {
	total := 0
	for i := range exercises {
		total += exercises[i].Duration()
	}
	return total
}

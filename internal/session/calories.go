package session

import "math"

// UnknownWeight is passed as weightKg when the user has no profile weight.
// Calorie estimates are 0 in that case.
const UnknownWeight = 0.0

// CalculateCalories estimates calories burned with the MET formula:
//
//	calories = minutes * (MET * 3.5 * weightKg) / 200
//
// rounded to the nearest integer.
func CalculateCalories(durationMinutes int, metValue, weightKg float64) int {
	if weightKg <= UnknownWeight || metValue <= 0 || durationMinutes <= 0 {
		return 0
	}
	calories := float64(durationMinutes) * ((metValue * 3.5 * weightKg) / 200)
	return int(math.Round(calories))
}

// elapsedMinutes converts active seconds into whole minutes, rounding half up.
func elapsedMinutes(seconds int) int {
	return int(math.Round(float64(seconds) / 60))
}

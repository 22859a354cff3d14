package analytics

import "math"

const (
	rateWeight        = 40
	currentWeight     = 30
	longestWeight     = 20
	consistencyWeight = 10

	currentCap     = 30
	longestCap     = 60
	consistencyCap = 90
)

// Strength combines the four engagement signals into a score in [0, 100].
// Each term is capped before weighting and the weights sum to 100.
func Strength(completionRate float64, currentStreak, longestStreak, totalCompletions int) int {
	score := clamp01(completionRate)*rateWeight +
		capped(currentStreak, currentCap)*currentWeight +
		capped(longestStreak, longestCap)*longestWeight +
		capped(totalCompletions, consistencyCap)*consistencyWeight
	return roundInt(score)
}

func capped(n, limit int) float64 {
	return clamp01(float64(n) / float64(limit))
}

func clamp01(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	return math.Min(f, 1)
}

func roundInt(f float64) int {
	return int(math.Round(f))
}

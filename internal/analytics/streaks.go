package analytics

import (
	"slices"

	"github.com/brk3/habitstats/pkg/habit"
)

// Streaks computes the current and longest run of consecutive days in days.
// Input order and duplicates don't matter. The current streak is alive only
// while the most recent day is today or yesterday: a user who hasn't logged
// yet today still has the whole day to do it.
func (e *Engine) Streaks(days []habit.Day) habit.Streaks {
	uniq := make(map[habit.Day]struct{}, len(days))
	for _, d := range days {
		uniq[d] = struct{}{}
	}
	if len(uniq) == 0 {
		return habit.Streaks{}
	}

	sorted := make([]habit.Day, 0, len(uniq))
	for d := range uniq {
		sorted = append(sorted, d)
	}
	// canonical day strings sort chronologically
	slices.Sort(sorted)

	longest, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if habit.DaysBetween(sorted[i-1], sorted[i]) == 1 {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}

	last := sorted[len(sorted)-1]
	if gap := habit.DaysBetween(last, e.today); gap != 0 && gap != 1 {
		return habit.Streaks{Current: 0, Longest: longest}
	}

	current := 1
	for i := len(sorted) - 1; i > 0; i-- {
		if habit.DaysBetween(sorted[i-1], sorted[i]) != 1 {
			break
		}
		current++
	}

	return habit.Streaks{Current: current, Longest: longest}
}

package analytics

import (
	"math"

	"github.com/brk3/habitstats/pkg/habit"
)

const daysPerWeek = 7

// AnalyzeHabit builds the detail view for h from all of its logs.
func (e *Engine) AnalyzeHabit(h habit.Habit, logs []habit.Log) (habit.Analytics, error) {
	if err := h.Validate(); err != nil {
		return habit.Analytics{}, err
	}
	if err := validateLogs(h, logs); err != nil {
		return habit.Analytics{}, err
	}

	days := completedDays(logs)
	streaks := e.Streaks(days)
	totalDays := e.totalDays(h)

	// a day can only be completed once, but count distinct days anyway
	done := distinct(days)
	completionRate := rate(done, totalDays)

	return habit.Analytics{
		Habit:            h,
		CurrentStreak:    streaks.Current,
		LongestStreak:    streaks.Longest,
		CompletionRate:   completionRate,
		StrengthScore:    Strength(float64(completionRate)/100, streaks.Current, streaks.Longest, done),
		TotalCompleted:   done,
		Heatmap:          heatmap(logs),
		WeeklyTrend:      e.weeklyTrend(h, days, totalDays),
		MonthlyBreakdown: monthlyBreakdown(days),
		AvgIntensity:     avgIntensity(logs),
	}, nil
}

func distinct(days []habit.Day) int {
	uniq := make(map[habit.Day]struct{}, len(days))
	for _, d := range days {
		uniq[d] = struct{}{}
	}
	return len(uniq)
}

// heatmap covers every logged day, not only completed ones.
func heatmap(logs []habit.Log) map[habit.Day]habit.HeatmapCell {
	out := make(map[habit.Day]habit.HeatmapCell, len(logs))
	for _, l := range logs {
		out[l.Day] = habit.HeatmapCell{Status: l.Status, Intensity: l.Intensity, Count: 1}
	}
	return out
}

// weeklyTrend splits the habit's lifetime into 7-day windows anchored at its
// creation day, newest window first. The last window may run past today.
func (e *Engine) weeklyTrend(h habit.Habit, completed []habit.Day, totalDays int) []habit.WeekTrend {
	if totalDays <= 0 {
		return []habit.WeekTrend{}
	}
	start := e.createdOn(h)
	weeks := (totalDays + daysPerWeek - 1) / daysPerWeek

	counts := make([]int, weeks)
	seen := make(map[habit.Day]struct{}, len(completed))
	for _, d := range completed {
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		offset := habit.DaysBetween(start, d)
		if offset < 0 {
			continue
		}
		if w := offset / daysPerWeek; w < weeks {
			counts[w]++
		}
	}

	out := make([]habit.WeekTrend, 0, weeks)
	for w := weeks - 1; w >= 0; w-- {
		out = append(out, habit.WeekTrend{
			Week:      start.AddDays(w * daysPerWeek),
			Completed: counts[w],
			Rate:      rate(counts[w], daysPerWeek),
		})
	}
	return out
}

func monthlyBreakdown(completed []habit.Day) map[string]int {
	out := make(map[string]int)
	seen := make(map[habit.Day]struct{}, len(completed))
	for _, d := range completed {
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out[d.Month()]++
	}
	return out
}

// avgIntensity is the mean intensity of completed logs to one decimal place.
func avgIntensity(logs []habit.Log) float64 {
	var sum, n int
	for _, l := range logs {
		if l.Completed() {
			sum += l.Intensity
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(n)*10) / 10
}


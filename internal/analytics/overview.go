package analytics

import (
	"github.com/brk3/habitstats/pkg/habit"
)

// Overview aggregates dashboard totals over the active habits. Logs are keyed
// by habit ID; logs for habits not in habits are ignored. The result doesn't
// depend on the order of habits.
func (e *Engine) Overview(habits []habit.Habit, logsByHabit map[string][]habit.Log) (habit.Overview, error) {
	active, err := activeHabits(habits, logsByHabit)
	if err != nil {
		return habit.Overview{}, err
	}

	var (
		out          habit.Overview
		earliest     habit.Day
		totalCurrent int
	)
	out.TotalHabits = len(active)

	for _, h := range active {
		if created := e.createdOn(h); earliest == "" || created.Before(earliest) {
			earliest = created
		}

		logs := logsByHabit[h.ID]
		for _, l := range logs {
			if !l.Completed() {
				continue
			}
			out.TotalCompleted++
			if l.Day == e.today {
				out.CompletedToday++
			}
		}

		streaks := e.Streaks(completedDays(logs))
		out.BestStreak = max(out.BestStreak, streaks.Longest)
		totalCurrent += streaks.Current
	}

	if earliest == "" {
		earliest = e.today
	}
	totalDays := habit.ElapsedDaysInclusive(earliest, e.today)
	out.CompletionRate = rate(out.TotalCompleted, len(active)*totalDays)
	if len(active) > 0 {
		out.AvgCurrentStreak = roundInt(float64(totalCurrent) / float64(len(active)))
	}
	return out, nil
}

// Summaries returns one compact row per active habit, in input order.
func (e *Engine) Summaries(habits []habit.Habit, logsByHabit map[string][]habit.Log) ([]habit.Summary, error) {
	active, err := activeHabits(habits, logsByHabit)
	if err != nil {
		return nil, err
	}

	out := make([]habit.Summary, 0, len(active))
	for _, h := range active {
		days := completedDays(logsByHabit[h.ID])
		streaks := e.Streaks(days)
		done := distinct(days)
		completionRate := rate(done, e.totalDays(h))

		var last habit.Day
		for _, d := range days {
			if last == "" || last.Before(d) {
				last = d
			}
		}

		out = append(out, habit.Summary{
			HabitID:        h.ID,
			Name:           h.Name,
			Color:          h.Color,
			Icon:           h.Icon,
			Category:       h.Category,
			CurrentStreak:  streaks.Current,
			LongestStreak:  streaks.Longest,
			CompletionRate: completionRate,
			StrengthScore:  Strength(float64(completionRate)/100, streaks.Current, streaks.Longest, done),
			TotalCompleted: done,
			LastCompleted:  last,
		})
	}
	return out, nil
}

// activeHabits drops archived habits and validates what remains together
// with its logs.
func activeHabits(habits []habit.Habit, logsByHabit map[string][]habit.Log) ([]habit.Habit, error) {
	out := make([]habit.Habit, 0, len(habits))
	for _, h := range habits {
		if h.Archived {
			continue
		}
		if err := h.Validate(); err != nil {
			return nil, err
		}
		if err := validateLogs(h, logsByHabit[h.ID]); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

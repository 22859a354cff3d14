package analytics

import (
	"time"

	"github.com/brk3/habitstats/pkg/habit"
)

type Milestone struct {
	ID          string
	Streak      int
	Name        string
	Icon        string
	Description string
}

// Milestones are ordered by the current streak needed to reach them.
var Milestones = []Milestone{
	{ID: "streak_3", Streak: 3, Name: "3-Day Streak", Icon: "🔥", Description: "Completed 3 days in a row!"},
	{ID: "streak_7", Streak: 7, Name: "1-Week Warrior", Icon: "⚡", Description: "7-day streak achieved!"},
	{ID: "streak_30", Streak: 30, Name: "Monthly Master", Icon: "🏆", Description: "30-day streak!"},
	{ID: "streak_100", Streak: 100, Name: "Century Club", Icon: "💎", Description: "100-day streak!"},
}

// Earned returns an achievement for every milestone the habit's current
// streak has reached, stamped with at. Whether the user already holds one is
// the store's concern.
func (e *Engine) Earned(h habit.Habit, logs []habit.Log, at time.Time) ([]habit.Achievement, error) {
	if err := validateLogs(h, logs); err != nil {
		return nil, err
	}
	current := e.Streaks(completedDays(logs)).Current

	var out []habit.Achievement
	for _, m := range Milestones {
		if current < m.Streak {
			break
		}
		out = append(out, habit.Achievement{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description,
			Icon:        m.Icon,
			Streak:      m.Streak,
			HabitID:     h.ID,
			UnlockedAt:  at,
		})
	}
	return out, nil
}

// Package analytics turns snapshots of habits and their logs into streaks,
// strength scores and aggregated views. It does no I/O and never mutates its
// inputs; the calendar day it treats as "today" is fixed when the Engine is
// built, so one Engine gives internally consistent answers.
package analytics

import (
	"fmt"
	"time"

	"github.com/brk3/habitstats/pkg/habit"
)

type Engine struct {
	today habit.Day
	loc   *time.Location
}

// New returns an engine pinned to today. loc is the calendar used to turn
// habit creation timestamps into days; nil means UTC.
func New(today habit.Day, loc *time.Location) (*Engine, error) {
	if _, err := habit.ParseDay(string(today)); err != nil {
		return nil, fmt.Errorf("engine today: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{today: today, loc: loc}, nil
}

// NewAt is New with today derived from now in loc.
func NewAt(now time.Time, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{today: habit.Today(loc, now), loc: loc}
}

func (e *Engine) Today() habit.Day { return e.today }

func (e *Engine) createdOn(h habit.Habit) habit.Day {
	return h.CreatedOn(e.loc)
}

// totalDays is the habit's lifetime in days, counting its creation day.
func (e *Engine) totalDays(h habit.Habit) int {
	return habit.ElapsedDaysInclusive(e.createdOn(h), e.today)
}

// validateLogs checks every log and that it belongs to h.
func validateLogs(h habit.Habit, logs []habit.Log) error {
	for i := range logs {
		if err := logs[i].Validate(); err != nil {
			return fmt.Errorf("habit %s log %d: %w", h.ID, i, err)
		}
		if logs[i].HabitID != h.ID {
			return fmt.Errorf("habit %s log %s: %w (%s)", h.ID, logs[i].Day, habit.ErrHabitMismatch, logs[i].HabitID)
		}
	}
	return nil
}

func completedDays(logs []habit.Log) []habit.Day {
	days := make([]habit.Day, 0, len(logs))
	for i := range logs {
		if logs[i].Completed() {
			days = append(days, logs[i].Day)
		}
	}
	return days
}

// rate returns round(100 * n / d), or 0 when d is not positive.
func rate(n, d int) int {
	if d <= 0 {
		return 0
	}
	return roundInt(100 * float64(n) / float64(d))
}

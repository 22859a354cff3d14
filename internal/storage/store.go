package storage

import (
	"errors"

	"github.com/brk3/habitstats/pkg/habit"
)

var ErrNotFound = errors.New("not found")

// LogRange bounds ListLogs by day, inclusive. Empty bounds are open.
type LogRange struct {
	From habit.Day
	To   habit.Day
}

func (r LogRange) Contains(d habit.Day) bool {
	if r.From != "" && d < r.From {
		return false
	}
	if r.To != "" && d > r.To {
		return false
	}
	return true
}

type Store interface {
	PutHabit(userID string, h habit.Habit) error
	GetHabit(userID, habitID string) (habit.Habit, error)
	ListHabits(userID string) ([]habit.Habit, error)
	DeleteHabit(userID, habitID string) error

	// PutLog upserts the log for (l.HabitID, l.Day).
	PutLog(userID string, l habit.Log) error
	ListLogs(userID, habitID string, r LogRange) ([]habit.Log, error)
	DeleteLog(userID, habitID string, day habit.Day) error

	// GrantAchievements stores the achievements whose ID the user doesn't
	// hold yet and returns only those.
	GrantAchievements(userID string, as []habit.Achievement) ([]habit.Achievement, error)
	// ListAchievements returns the user's achievements ordered by streak.
	ListAchievements(userID string) ([]habit.Achievement, error)

	PutAPIKey(keyHash, userID string) error
	GetAPIKey(keyHash string) (userID string, found bool, err error)

	Close() error
}

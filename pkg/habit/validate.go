package habit

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidIntensity = errors.New("invalid intensity")
	ErrInvalidMood      = errors.New("invalid mood")
	ErrInvalidHabit     = errors.New("invalid habit")
	ErrInvalidLog       = errors.New("invalid log")
	ErrHabitMismatch    = errors.New("log belongs to a different habit")
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 500
	maxNotesLength       = 1000
)

// IsValidationError reports whether err came from record validation rather
// than from I/O.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidDay, ErrInvalidStatus, ErrInvalidIntensity, ErrInvalidMood,
		ErrInvalidHabit, ErrInvalidLog, ErrHabitMismatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (h Habit) Validate() error {
	if h.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidHabit)
	}
	if n := utf8.RuneCountInString(h.Name); n == 0 || n > maxNameLength {
		return fmt.Errorf("%w: name must be 1-%d characters", ErrInvalidHabit, maxNameLength)
	}
	if utf8.RuneCountInString(h.Description) > maxDescriptionLength {
		return fmt.Errorf("%w: description must be 0-%d characters", ErrInvalidHabit, maxDescriptionLength)
	}
	if h.Category != "" && !h.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidHabit, h.Category)
	}
	switch h.Frequency {
	case "", FrequencyDaily, FrequencyWeekly:
	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidHabit, h.Frequency)
	}
	switch h.Difficulty {
	case "", DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidHabit, h.Difficulty)
	}
	for _, d := range h.TargetDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("%w: target day %d out of range 0-6", ErrInvalidHabit, d)
		}
	}
	if h.GoalTarget < 1 {
		return fmt.Errorf("%w: goal target must be at least 1", ErrInvalidHabit)
	}
	if h.CreatedAt.IsZero() {
		return fmt.Errorf("%w: missing creation time", ErrInvalidHabit)
	}
	return nil
}

func (l Log) Validate() error {
	if l.HabitID == "" {
		return fmt.Errorf("%w: missing habit id", ErrInvalidLog)
	}
	if _, err := ParseDay(string(l.Day)); err != nil {
		return err
	}
	if !l.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, l.Status)
	}
	if l.Intensity < MinIntensity || l.Intensity > MaxIntensity {
		return fmt.Errorf("%w: %d not in %d-%d", ErrInvalidIntensity, l.Intensity, MinIntensity, MaxIntensity)
	}
	// zero means no mood was recorded
	if l.Mood != 0 && (l.Mood < MinMood || l.Mood > MaxMood) {
		return fmt.Errorf("%w: %d not in %d-%d", ErrInvalidMood, l.Mood, MinMood, MaxMood)
	}
	if utf8.RuneCountInString(l.Notes) > maxNotesLength {
		return fmt.Errorf("%w: notes must be 0-%d characters", ErrInvalidLog, maxNotesLength)
	}
	return nil
}

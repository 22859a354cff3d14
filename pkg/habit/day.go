package habit

import (
	"fmt"
	"time"
)

const DayLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// Day is a calendar day in canonical YYYY-MM-DD form. It carries no time of
// day and no location: the client that logged it decided which day it was.
type Day string

// ParseDay accepts only the canonical form, so "2024-1-5" or
// "2024-01-05T00:00:00Z" are rejected rather than coerced.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil || t.Format(DayLayout) != s {
		return "", fmt.Errorf("%w: %q", ErrInvalidDay, s)
	}
	return Day(s), nil
}

// DayOf truncates t to its calendar day in t's own location.
func DayOf(t time.Time) Day {
	return Day(t.Format(DayLayout))
}

// Today returns the calendar day of now in loc. A nil loc means UTC.
func Today(loc *time.Location, now time.Time) Day {
	if loc == nil {
		loc = time.UTC
	}
	return DayOf(now.In(loc))
}

func (d Day) String() string { return string(d) }

// Time returns midnight UTC of d. It panics on a malformed day; callers
// validate input before doing arithmetic on it.
func (d Day) Time() time.Time {
	t, err := time.Parse(DayLayout, string(d))
	if err != nil {
		panic(fmt.Sprintf("habit: malformed day %q", string(d)))
	}
	return t
}

// ordinal counts days since the unix epoch. UTC has no DST transitions, so
// every UTC day is exactly secondsPerDay long and the division is exact.
func (d Day) ordinal() int64 {
	return d.Time().Unix() / secondsPerDay
}

func (d Day) AddDays(n int) Day {
	return DayOf(d.Time().AddDate(0, 0, n))
}

// Month returns the YYYY-MM prefix of d.
func (d Day) Month() string {
	return string(d)[:7]
}

func (d Day) Before(o Day) bool { return d < o }

// DaysBetween returns b - a in whole calendar days.
func DaysBetween(a, b Day) int {
	return int(b.ordinal() - a.ordinal())
}

// ElapsedDaysInclusive counts since as day 1, so a habit created today has
// one elapsed day.
func ElapsedDaysInclusive(since, now Day) int {
	return DaysBetween(since, now) + 1
}

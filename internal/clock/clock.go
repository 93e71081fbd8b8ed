// Package clock holds the date arithmetic everything else leans on.
// All instants are interpreted in local time; callers must not mix
// UTC and local values, or day boundaries shift and streaks go wrong.
package clock

import (
	"math"
	"time"
)

// StartOfDay truncates an instant to local midnight.
func StartOfDay(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayIndex returns the weekday as 0=Sunday .. 6=Saturday.
func DayIndex(t time.Time) int {
	return int(t.Local().Weekday())
}

// DaysBetween returns the whole-day difference a-b, sign-preserving.
// Same calendar day yields 0, a one day after b yields 1. Midnight
// deltas are rounded so DST transitions don't produce off-by-ones.
func DaysBetween(a, b time.Time) int {
	diff := StartOfDay(a).Sub(StartOfDay(b))
	return int(math.Round(diff.Hours() / 24))
}

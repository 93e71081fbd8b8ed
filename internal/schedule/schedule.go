// Package schedule computes when the next workout reminder lands.
// Everything here is pure date math over a time-of-day plus a set of
// active weekdays; actual timers live in the remind package.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kerri/buddy/internal/clock"
)

// Grace is how long after the scheduled time a workout still counts as
// "due now". Two hours is a heuristic carried over from the product,
// not a derived value, so it stays tunable.
var Grace = 2 * time.Hour

// ParseTime splits an "HH:MM" string into hour and minute. The whole
// string must match; trailing junk is rejected.
func ParseTime(hhmm string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(hhmm, ":")
	if !ok {
		return 0, 0, fmt.Errorf("parsing time %q: want HH:MM", hhmm)
	}
	hour, err = strconv.Atoi(h)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing time %q: %w", hhmm, err)
	}
	minute, err = strconv.Atoi(m)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing time %q: %w", hhmm, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time %q out of range", hhmm)
	}
	return hour, minute, nil
}

// NextOccurrence returns the next future instant at the given
// time-of-day on an active weekday. Today counts only while the
// candidate is still strictly ahead of now. ok is false when no day is
// active or the time does not parse.
func NextOccurrence(hhmm string, activeDays []int, now time.Time) (time.Time, bool) {
	hour, minute, err := ParseTime(hhmm)
	if err != nil {
		return time.Time{}, false
	}

	today := clock.StartOfDay(now).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	if dayActive(activeDays, clock.DayIndex(today)) && today.After(now) {
		return today, true
	}

	// Scan the week ahead. This also wraps back to today's weekday
	// when today was skipped because the time already passed.
	for i := 1; i <= 7; i++ {
		day := clock.StartOfDay(now.AddDate(0, 0, i))
		candidate := day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
		if dayActive(activeDays, clock.DayIndex(candidate)) {
			return candidate, true
		}
	}
	return time.Time{}, false
}

// IsDueNow reports whether now falls inside [scheduled, scheduled+Grace)
// on an active day. Deliberately asymmetric: never due early, and the
// window closes after the grace period.
func IsDueNow(hhmm string, activeDays []int, now time.Time) bool {
	if !dayActive(activeDays, clock.DayIndex(now)) {
		return false
	}
	hour, minute, err := ParseTime(hhmm)
	if err != nil {
		return false
	}
	scheduled := clock.StartOfDay(now).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	diff := now.Sub(scheduled)
	return diff >= 0 && diff < Grace
}

// Describe renders the gap to the next occurrence as a human label.
func Describe(hhmm string, activeDays []int, now time.Time) string {
	next, ok := NextOccurrence(hhmm, activeDays, now)
	if !ok {
		return "No workouts scheduled"
	}

	diff := next.Sub(now)
	hours := int(diff / time.Hour)
	minutes := int(diff % time.Hour / time.Minute)
	at := next.Format(time.Kitchen)

	// Labels follow the gap in hours, not the calendar day: a workout
	// 10 hours away is "Today" even when midnight sits in between.
	switch {
	case hours < 1:
		return fmt.Sprintf("Today at %s (in %dm)", at, minutes)
	case hours < 24:
		return fmt.Sprintf("Today at %s (in %dh %dm)", at, hours, minutes)
	case hours < 48:
		return fmt.Sprintf("Tomorrow at %s", at)
	default:
		return fmt.Sprintf("%s at %s", next.Weekday(), at)
	}
}

func dayActive(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

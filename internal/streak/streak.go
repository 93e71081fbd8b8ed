// Package streak derives streak state from the workout log. Nothing
// here is persisted; state is recomputed from the full log every time
// so no counter can drift from history.
package streak

import (
	"time"

	"github.com/kerri/buddy/internal/clock"
	"github.com/kerri/buddy/internal/db"
)

// Never is the DaysSinceLast value for an empty log.
const Never = 999

// BreakGap is the largest number of days between today and the most
// recent completion that keeps a streak alive. The value is a
// heuristic, not a law; it is a variable so callers can tune it.
var BreakGap = 1

// State is the derived streak snapshot.
type State struct {
	Current       int `json:"streak"`
	DaysSinceLast int `json:"daysSinceLast"`
}

// Compute walks a newest-first workout history and returns the current
// streak and days since the last logged workout of any status.
//
// Streak counting uses completions only. DaysSinceLast uses the full
// log, skips and misses included, because "when did I last show up"
// and "how long is my run" are different questions.
func Compute(history []db.Workout, now time.Time) State {
	state := State{DaysSinceLast: Never}
	if len(history) == 0 {
		return state
	}
	state.DaysSinceLast = clock.DaysBetween(now, history[0].Date)

	var completed []db.Workout
	for _, w := range history {
		if w.Status == db.StatusCompleted {
			completed = append(completed, w)
		}
	}
	if len(completed) == 0 {
		return state
	}

	// A streak only lives if the most recent completion is recent enough.
	if clock.DaysBetween(now, completed[0].Date) > BreakGap {
		return state
	}

	// Count the unbroken run ending at the most recent completion.
	// Two completions on the same day are one streak day, not two.
	state.Current = 1
	for i := 1; i < len(completed); i++ {
		diff := clock.DaysBetween(completed[i-1].Date, completed[i].Date)
		switch {
		case diff == 0:
			continue
		case diff == 1:
			state.Current++
		default:
			return state
		}
	}
	return state
}

// Band is the discrete mood band driving UI theming and message
// escalation.
type Band string

const (
	BandAmazing Band = "amazing"
	BandGreat   Band = "great"
	BandGood    Band = "good"
	BandWarning Band = "warning"
	BandDanger  Band = "danger"
	BandNeutral Band = "neutral"
)

// Classify maps streak state to a band. Streak bands are checked
// before days-since bands; first match wins.
func Classify(streak, daysSinceLast int) Band {
	switch {
	case streak >= 14:
		return BandAmazing
	case streak >= 7:
		return BandGreat
	case streak >= 3:
		return BandGood
	case daysSinceLast > 3:
		return BandDanger
	case daysSinceLast > 1:
		return BandWarning
	default:
		return BandNeutral
	}
}

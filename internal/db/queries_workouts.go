package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Workout statuses.
const (
	StatusCompleted = "completed"
	StatusSkipped   = "skipped"
	StatusMissed    = "missed"
)

// Workout is one row of the append-only workout log. Rows are created
// once per user action and never updated or deleted.
type Workout struct {
	ID            int64      `json:"id"`
	Date          time.Time  `json:"date"`
	ScheduledTime string     `json:"scheduled_time,omitempty"` // HH:MM
	CompletedTime *time.Time `json:"completed_time,omitempty"`
	Status        string     `json:"status"`
	Notes         string     `json:"notes,omitempty"`
	Activity      string     `json:"activity,omitempty"`
}

// Stats summarizes outcomes over the most recent workouts.
type Stats struct {
	Completed      int     `json:"completed"`
	Skipped        int     `json:"skipped"`
	Missed         int     `json:"missed"`
	Total          int     `json:"total"`
	CompletionRate float64 `json:"completion_rate"` // percent
}

// AppendWorkout inserts a workout record and returns its ID.
// A zero Date is filled in with the current time.
func (d *DB) AppendWorkout(w Workout) (int64, error) {
	if w.Date.IsZero() {
		w.Date = time.Now()
	}
	var completed any
	if w.CompletedTime != nil {
		completed = w.CompletedTime.Format(time.RFC3339)
	}
	res, err := d.conn.Exec(
		"INSERT INTO workouts (date, scheduled_time, completed_time, status, notes, activity) VALUES (?, ?, ?, ?, ?, ?)",
		w.Date.Format(time.RFC3339), w.ScheduledTime, completed, w.Status, w.Notes, w.Activity,
	)
	if err != nil {
		return 0, fmt.Errorf("appending workout: %w", err)
	}
	return res.LastInsertId()
}

// ListWorkouts returns up to limit workouts, newest first by date.
func (d *DB) ListWorkouts(limit int) ([]Workout, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := d.conn.Query(
		"SELECT id, date, scheduled_time, COALESCE(completed_time, ''), status, notes, activity FROM workouts ORDER BY date DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	defer rows.Close()
	return scanWorkouts(rows)
}

// LastWorkout returns the most recent workout of any status, or nil if
// the log is empty.
func (d *DB) LastWorkout() (*Workout, error) {
	workouts, err := d.ListWorkouts(1)
	if err != nil {
		return nil, err
	}
	if len(workouts) == 0 {
		return nil, nil
	}
	return &workouts[0], nil
}

// GetStats counts outcomes over the last limit workouts.
func (d *DB) GetStats(limit int) (Stats, error) {
	workouts, err := d.ListWorkouts(limit)
	if err != nil {
		return Stats{}, err
	}
	var s Stats
	for _, w := range workouts {
		switch w.Status {
		case StatusCompleted:
			s.Completed++
		case StatusSkipped:
			s.Skipped++
		case StatusMissed:
			s.Missed++
		}
	}
	s.Total = len(workouts)
	if s.Total > 0 {
		s.CompletionRate = float64(s.Completed) / float64(s.Total) * 100
	}
	return s, nil
}

func scanWorkouts(rows *sql.Rows) ([]Workout, error) {
	var out []Workout
	for rows.Next() {
		var w Workout
		var date, completed string
		if err := rows.Scan(&w.ID, &date, &w.ScheduledTime, &completed, &w.Status, &w.Notes, &w.Activity); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, fmt.Errorf("parsing workout date %q: %w", date, err)
		}
		w.Date = parsed
		if completed != "" {
			ct, err := time.Parse(time.RFC3339, completed)
			if err != nil {
				return nil, fmt.Errorf("parsing completed time %q: %w", completed, err)
			}
			w.CompletedTime = &ct
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

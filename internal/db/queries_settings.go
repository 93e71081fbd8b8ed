package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
)

const settingsKey = "settings"

// Settings is the single mutable record per installation. It is
// overwritten wholesale on every change.
type Settings struct {
	WorkoutTime          string `json:"workoutTime"` // HH:MM
	ActiveDays           []int  `json:"activeDays"`  // 0=Sunday .. 6=Saturday
	MessageProvider      string `json:"messageProvider"`
	APIKey               string `json:"apiKey"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
}

// DefaultSettings are the out-of-the-box values, also used to fill
// fields missing from a stored record.
func DefaultSettings() Settings {
	return Settings{
		WorkoutTime:     "12:00",
		ActiveDays:      []int{0, 1, 4, 6}, // Sun, Mon, Thu, Sat
		MessageProvider: "scripted",
	}
}

// LoadSettings returns the stored settings, with defaults applied to
// any field the stored record does not carry.
func (d *DB) LoadSettings() (Settings, error) {
	settings := DefaultSettings()
	var value string
	err := d.conn.QueryRow("SELECT value FROM settings WHERE key = ?", settingsKey).Scan(&value)
	if err == sql.ErrNoRows {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("loading settings: %w", err)
	}
	// Unmarshal over the defaults so missing keys keep their default.
	if err := json.Unmarshal([]byte(value), &settings); err != nil {
		return DefaultSettings(), fmt.Errorf("parsing settings: %w", err)
	}
	settings.ActiveDays = normalizeDays(settings.ActiveDays)
	return settings, nil
}

// SaveSettings overwrites the settings record wholesale.
func (d *DB) SaveSettings(s Settings) error {
	s.ActiveDays = normalizeDays(s.ActiveDays)
	value, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	_, err = d.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')",
		settingsKey, string(value),
	)
	if err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// normalizeDays drops out-of-range entries and duplicates. Membership
// is all that matters for active days.
func normalizeDays(days []int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, day := range days {
		if day < 0 || day > 6 || seen[day] {
			continue
		}
		seen[day] = true
		out = append(out, day)
	}
	sort.Ints(out)
	return out
}

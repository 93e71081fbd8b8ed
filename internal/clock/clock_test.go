package clock

import (
	"testing"
	"time"
)

func TestStartOfDay(t *testing.T) {
	in := time.Date(2025, 6, 2, 15, 42, 7, 123, time.Local)
	got := StartOfDay(in)
	want := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestStartOfDay_AlreadyMidnight(t *testing.T) {
	in := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)
	if got := StartOfDay(in); !got.Equal(in) {
		t.Errorf("expected %v unchanged, got %v", in, got)
	}
}

func TestDayIndex(t *testing.T) {
	tests := []struct {
		date time.Time
		want int
	}{
		{time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local), 0}, // Sunday
		{time.Date(2025, 6, 2, 12, 0, 0, 0, time.Local), 1}, // Monday
		{time.Date(2025, 6, 7, 12, 0, 0, 0, time.Local), 6}, // Saturday
	}
	for _, tt := range tests {
		if got := DayIndex(tt.date); got != tt.want {
			t.Errorf("DayIndex(%v): expected %d, got %d", tt.date, tt.want, got)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	day := func(d, hour int) time.Time {
		return time.Date(2025, 6, d, hour, 0, 0, 0, time.Local)
	}
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day", day(2, 23), day(2, 1), 0},
		{"next day", day(3, 1), day(2, 23), 1},
		{"three days", day(5, 12), day(2, 12), 3},
		{"negative", day(2, 12), day(5, 12), -3},
		{"same instant", day(2, 12), day(2, 12), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.a, tt.b); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

package db

import (
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

// --- Workouts ---

func TestAppendAndListWorkouts(t *testing.T) {
	d := openTestDB(t)

	now := time.Now()
	id, err := d.AppendWorkout(Workout{
		Date:          now,
		ScheduledTime: "09:00",
		CompletedTime: &now,
		Status:        StatusCompleted,
		Notes:         "felt good",
		Activity:      "running",
	})
	if err != nil {
		t.Fatalf("AppendWorkout: %v", err)
	}

	workouts, err := d.ListWorkouts(10)
	if err != nil {
		t.Fatalf("ListWorkouts: %v", err)
	}
	if len(workouts) != 1 {
		t.Fatalf("expected 1 workout, got %d", len(workouts))
	}
	w := workouts[0]
	if w.ID != id {
		t.Errorf("expected ID %d, got %d", id, w.ID)
	}
	if w.Status != StatusCompleted {
		t.Errorf("expected status %q, got %q", StatusCompleted, w.Status)
	}
	if w.ScheduledTime != "09:00" {
		t.Errorf("expected scheduled time %q, got %q", "09:00", w.ScheduledTime)
	}
	if w.Notes != "felt good" || w.Activity != "running" {
		t.Errorf("notes/activity mismatch: %q %q", w.Notes, w.Activity)
	}
	if w.CompletedTime == nil {
		t.Fatal("expected completed time to be set")
	}
	if !w.CompletedTime.Truncate(time.Second).Equal(now.Truncate(time.Second)) {
		t.Errorf("completed time round-trip mismatch: %v vs %v", w.CompletedTime, now)
	}
}

func TestListWorkouts_NewestFirst(t *testing.T) {
	d := openTestDB(t)

	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local)
	for i := 0; i < 3; i++ {
		_, err := d.AppendWorkout(Workout{Date: base.AddDate(0, 0, i), Status: StatusCompleted})
		if err != nil {
			t.Fatalf("AppendWorkout: %v", err)
		}
	}

	workouts, err := d.ListWorkouts(10)
	if err != nil {
		t.Fatalf("ListWorkouts: %v", err)
	}
	if len(workouts) != 3 {
		t.Fatalf("expected 3 workouts, got %d", len(workouts))
	}
	for i := 1; i < len(workouts); i++ {
		if workouts[i].Date.After(workouts[i-1].Date) {
			t.Errorf("workouts not newest-first at index %d", i)
		}
	}
}

func TestAppendWorkout_RejectsBogusStatus(t *testing.T) {
	d := openTestDB(t)

	if _, err := d.AppendWorkout(Workout{Status: "unsure"}); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestLastWorkout(t *testing.T) {
	d := openTestDB(t)

	last, err := d.LastWorkout()
	if err != nil {
		t.Fatalf("LastWorkout (empty): %v", err)
	}
	if last != nil {
		t.Errorf("expected nil on empty log, got %+v", last)
	}

	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local)
	d.AppendWorkout(Workout{Date: base, Status: StatusCompleted})
	d.AppendWorkout(Workout{Date: base.AddDate(0, 0, 1), Status: StatusSkipped})

	last, err = d.LastWorkout()
	if err != nil {
		t.Fatalf("LastWorkout: %v", err)
	}
	if last == nil || last.Status != StatusSkipped {
		t.Errorf("expected most recent (skipped) workout, got %+v", last)
	}
}

func TestGetStats(t *testing.T) {
	d := openTestDB(t)

	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local)
	statuses := []string{StatusCompleted, StatusCompleted, StatusCompleted, StatusSkipped, StatusMissed}
	for i, status := range statuses {
		d.AppendWorkout(Workout{Date: base.AddDate(0, 0, i), Status: status})
	}

	stats, err := d.GetStats(30)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Completed != 3 || stats.Skipped != 1 || stats.Missed != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.Total != 5 {
		t.Errorf("expected total 5, got %d", stats.Total)
	}
	if stats.CompletionRate != 60 {
		t.Errorf("expected completion rate 60, got %v", stats.CompletionRate)
	}
}

// --- Messages ---

func TestAppendAndListMessages(t *testing.T) {
	d := openTestDB(t)

	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local)
	d.AppendMessage(Message{Timestamp: base, Sender: SenderAssistant, Content: "first"})
	d.AppendMessage(Message{Timestamp: base.Add(time.Minute), Sender: SenderUser, Content: "second"})
	d.AppendMessage(Message{Timestamp: base.Add(2 * time.Minute), Sender: SenderAssistant, Content: "third"})

	msgs, err := d.ListMessages(10)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	// Chronological order.
	if msgs[0].Content != "first" || msgs[2].Content != "third" {
		t.Errorf("messages out of order: %q .. %q", msgs[0].Content, msgs[2].Content)
	}
}

func TestListMessages_LimitKeepsNewest(t *testing.T) {
	d := openTestDB(t)

	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local)
	for i := 0; i < 5; i++ {
		d.AppendMessage(Message{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Sender:    SenderUser,
			Content:   string(rune('a' + i)),
		})
	}

	msgs, err := d.ListMessages(2)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	// The newest two, oldest of the pair first.
	if msgs[0].Content != "d" || msgs[1].Content != "e" {
		t.Errorf("expected [d e], got [%s %s]", msgs[0].Content, msgs[1].Content)
	}
}

func TestCountMessages(t *testing.T) {
	d := openTestDB(t)

	n, err := d.CountMessages()
	if err != nil {
		t.Fatalf("CountMessages: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0, got %d", n)
	}

	d.AppendMessage(Message{Sender: SenderSystem, Content: "hello"})
	n, _ = d.CountMessages()
	if n != 1 {
		t.Errorf("expected 1, got %d", n)
	}
}

// --- Settings ---

func TestLoadSettings_Defaults(t *testing.T) {
	d := openTestDB(t)

	s, err := d.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.WorkoutTime != "12:00" {
		t.Errorf("expected default time 12:00, got %q", s.WorkoutTime)
	}
	want := []int{0, 1, 4, 6}
	if len(s.ActiveDays) != len(want) {
		t.Fatalf("expected default days %v, got %v", want, s.ActiveDays)
	}
	for i := range want {
		if s.ActiveDays[i] != want[i] {
			t.Fatalf("expected default days %v, got %v", want, s.ActiveDays)
		}
	}
	if s.MessageProvider != "scripted" {
		t.Errorf("expected default provider scripted, got %q", s.MessageProvider)
	}
	if s.NotificationsEnabled {
		t.Error("expected notifications disabled by default")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	d := openTestDB(t)

	in := Settings{
		WorkoutTime:          "07:30",
		ActiveDays:           []int{1, 3, 5},
		MessageProvider:      "api",
		APIKey:               "sk-test",
		NotificationsEnabled: true,
	}
	if err := d.SaveSettings(in); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	out, err := d.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if out.WorkoutTime != in.WorkoutTime || out.MessageProvider != in.MessageProvider ||
		out.APIKey != in.APIKey || !out.NotificationsEnabled {
		t.Errorf("round-trip mismatch: %+v", out)
	}
	if len(out.ActiveDays) != 3 || out.ActiveDays[0] != 1 || out.ActiveDays[2] != 5 {
		t.Errorf("expected days [1 3 5], got %v", out.ActiveDays)
	}
}

func TestSaveSettings_NormalizesDays(t *testing.T) {
	d := openTestDB(t)

	in := DefaultSettings()
	in.ActiveDays = []int{6, 1, 1, 9, -2, 0}
	if err := d.SaveSettings(in); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	out, _ := d.LoadSettings()
	want := []int{0, 1, 6}
	if len(out.ActiveDays) != len(want) {
		t.Fatalf("expected days %v, got %v", want, out.ActiveDays)
	}
	for i := range want {
		if out.ActiveDays[i] != want[i] {
			t.Fatalf("expected days %v, got %v", want, out.ActiveDays)
		}
	}
}

func TestSaveSettings_OverwritesWholesale(t *testing.T) {
	d := openTestDB(t)

	first := DefaultSettings()
	first.APIKey = "sk-old"
	d.SaveSettings(first)

	second := DefaultSettings()
	second.WorkoutTime = "06:00"
	d.SaveSettings(second)

	out, _ := d.LoadSettings()
	if out.WorkoutTime != "06:00" {
		t.Errorf("expected 06:00, got %q", out.WorkoutTime)
	}
	if out.APIKey != "" {
		t.Errorf("expected old API key gone, got %q", out.APIKey)
	}
}

// --- ClearAll ---

func TestClearAll(t *testing.T) {
	d := openTestDB(t)

	d.AppendWorkout(Workout{Status: StatusCompleted})
	d.AppendMessage(Message{Sender: SenderUser, Content: "hi"})
	settings := DefaultSettings()
	settings.WorkoutTime = "08:00"
	d.SaveSettings(settings)

	if err := d.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}

	workouts, _ := d.ListWorkouts(10)
	if len(workouts) != 0 {
		t.Errorf("expected no workouts, got %d", len(workouts))
	}
	n, _ := d.CountMessages()
	if n != 0 {
		t.Errorf("expected no messages, got %d", n)
	}
	out, _ := d.LoadSettings()
	if out.WorkoutTime != "12:00" {
		t.Errorf("expected settings back to defaults, got %q", out.WorkoutTime)
	}
}

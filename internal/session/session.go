// Package session sequences the engine on each user action. It holds
// the only mutable state in the process; every action is an append to
// the log followed by a full recomputation, never an incremental
// patch, so the derived streak can never diverge from history.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kerri/buddy/internal/db"
	"github.com/kerri/buddy/internal/message"
	"github.com/kerri/buddy/internal/notify"
	"github.com/kerri/buddy/internal/remind"
	"github.com/kerri/buddy/internal/schedule"
	"github.com/kerri/buddy/internal/streak"
)

// historyWindow is how many workouts feed the streak calculation.
const historyWindow = 100

type Session struct {
	db          *db.DB
	notifier    notify.Notifier
	sched       *remind.Scheduler
	newProvider func(db.Settings) message.Provider

	// mu serializes user actions and reminder callbacks. No two
	// state-changing actions may be in flight at once.
	mu       sync.Mutex
	provider message.Provider
	settings db.Settings
	state    streak.State
}

// New loads settings and wires the reminder timers. newProvider is
// called whenever settings change so a provider switch takes effect
// immediately.
func New(database *db.DB, notifier notify.Notifier, newProvider func(db.Settings) message.Provider, followUpDelay time.Duration) (*Session, error) {
	settings, err := database.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	s := &Session{
		db:          database,
		notifier:    notifier,
		newProvider: newProvider,
		settings:    settings,
		provider:    newProvider(settings),
	}
	s.sched = remind.New(followUpDelay, s.handleDue, s.handleFollowUp)
	return s, nil
}

// Start recomputes state, schedules reminders, and greets the user if
// this is a fresh install or the workout is due right now.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.recompute(); err != nil {
		return err
	}

	if err := s.sched.Reschedule(s.settings.WorkoutTime, s.settings.ActiveDays); err != nil {
		log.Printf("scheduling reminders: %v", err)
	}
	s.sched.Start()

	count, err := s.db.CountMessages()
	if err != nil {
		return err
	}
	if count == 0 || schedule.IsDueNow(s.settings.WorkoutTime, s.settings.ActiveDays, time.Now()) {
		if _, err := s.emit(ctx, message.EventWelcome, nil); err != nil {
			return err
		}
	}
	return nil
}

// Close stops the reminder timers.
func (s *Session) Close() {
	s.sched.Stop()
}

// Complete records a completed workout and returns the buddy's reply.
func (s *Session) Complete(ctx context.Context, activity, notes string) (string, error) {
	now := time.Now()
	return s.act(ctx, db.Workout{
		Date:          now,
		ScheduledTime: s.Settings().WorkoutTime,
		CompletedTime: &now,
		Status:        db.StatusCompleted,
		Activity:      activity,
		Notes:         notes,
	}, "I did it!", message.EventCompleted)
}

// Skip records a skipped workout and returns the buddy's reply.
func (s *Session) Skip(ctx context.Context) (string, error) {
	return s.act(ctx, db.Workout{
		Date:          time.Now(),
		ScheduledTime: s.Settings().WorkoutTime,
		Status:        db.StatusSkipped,
	}, "Skipping today", message.EventSkipped)
}

// Miss records a missed workout, for when the day went by without an
// answer and the user owns up to it later.
func (s *Session) Miss(ctx context.Context) (string, error) {
	return s.act(ctx, db.Workout{
		Date:          time.Now(),
		ScheduledTime: s.Settings().WorkoutTime,
		Status:        db.StatusMissed,
	}, "I missed it", message.EventMissed)
}

// act is the one state-changing path: append the record, recompute
// everything from the log, then speak.
func (s *Session) act(ctx context.Context, w db.Workout, userEcho string, event message.EventType) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.recompute(); err != nil {
		return "", err
	}
	daysBefore := s.state.DaysSinceLast

	if _, err := s.db.AppendWorkout(w); err != nil {
		return "", err
	}
	if err := s.recompute(); err != nil {
		return "", err
	}
	mc := message.Context{
		Type:          event,
		Streak:        s.state.Current,
		DaysSinceLast: s.state.DaysSinceLast,
	}
	// The missed message escalates on how long the absence had been,
	// which the record just appended would reset to zero.
	if event == message.EventMissed {
		mc.DaysSinceLast = daysBefore
	}
	return s.deliver(ctx, mc, &userEcho)
}

// Say handles a freeform user message.
func (s *Session) Say(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.recompute(); err != nil {
		return "", err
	}
	mc := message.Context{
		Type:          message.EventMessage,
		Streak:        s.state.Current,
		DaysSinceLast: s.state.DaysSinceLast,
		Data:          map[string]string{"content": text},
	}
	if err := s.append(db.SenderUser, text, mc); err != nil {
		return "", err
	}
	reply, err := s.provider.Produce(ctx, mc)
	if err != nil {
		return "", fmt.Errorf("producing message: %w", err)
	}
	if err := s.append(db.SenderAssistant, reply, mc); err != nil {
		return "", err
	}
	return reply, nil
}

// State returns the current streak state and its band, fresh from the
// log.
func (s *Session) State() (streak.State, streak.Band, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.recompute(); err != nil {
		return streak.State{}, streak.BandNeutral, err
	}
	return s.state, streak.Classify(s.state.Current, s.state.DaysSinceLast), nil
}

// SetNotifier swaps the notification channel, e.g. once a Discord DM
// channel becomes available.
func (s *Session) SetNotifier(n notify.Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = n
}

// Settings returns a copy of the current settings.
func (s *Session) Settings() db.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// NextWorkout describes the next scheduled occurrence.
func (s *Session) NextWorkout() string {
	settings := s.Settings()
	return schedule.Describe(settings.WorkoutTime, settings.ActiveDays, time.Now())
}

// UpdateSettings overwrites settings wholesale, rebuilds the message
// provider, and replaces the reminder timers. Cancellation happens
// inside Reschedule before the new timers exist, so a stale timer can
// never fire with old settings.
func (s *Session) UpdateSettings(newSettings db.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.SaveSettings(newSettings); err != nil {
		return err
	}
	// Read back so normalization and defaults apply.
	saved, err := s.db.LoadSettings()
	if err != nil {
		return err
	}
	s.settings = saved
	s.provider = s.newProvider(saved)
	return s.sched.Reschedule(saved.WorkoutTime, saved.ActiveDays)
}

// handleDue fires at the scheduled workout time.
func (s *Session) handleDue() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.recompute(); err != nil {
		log.Printf("reminder: %v", err)
		return
	}
	if _, err := s.emit(context.Background(), message.EventWelcome, nil); err != nil {
		log.Printf("reminder: %v", err)
	}
	if s.settings.NotificationsEnabled && s.notifier != nil {
		s.notifier.Show("Workout Time!", "Time to get moving. Let's do this.", "workout-reminder", nil)
	}
}

// handleFollowUp fires an hour after the reminder. It only produces a
// message; the streak is untouched.
func (s *Session) handleFollowUp() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.recompute(); err != nil {
		log.Printf("follow-up: %v", err)
		return
	}
	if _, err := s.emit(context.Background(), message.EventFollowUp, nil); err != nil {
		log.Printf("follow-up: %v", err)
	}
	if s.settings.NotificationsEnabled && s.notifier != nil {
		s.notifier.Show("Check-in Time", "Hey, did you end up doing anything? Let me know.", "workout-followup", nil)
	}
}

// recompute rebuilds the derived streak state from the log. Callers
// hold the mutex.
func (s *Session) recompute() error {
	history, err := s.db.ListWorkouts(historyWindow)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	s.state = streak.Compute(history, time.Now())
	return nil
}

// emit produces and stores an assistant message for the current state.
// Callers hold the mutex.
func (s *Session) emit(ctx context.Context, event message.EventType, userEcho *string) (string, error) {
	mc := message.Context{
		Type:          event,
		Streak:        s.state.Current,
		DaysSinceLast: s.state.DaysSinceLast,
	}
	return s.deliver(ctx, mc, userEcho)
}

// deliver produces and stores an assistant message (plus the user's
// echo for actions that have one). Callers hold the mutex.
func (s *Session) deliver(ctx context.Context, mc message.Context, userEcho *string) (string, error) {
	if userEcho != nil {
		if err := s.append(db.SenderUser, *userEcho, mc); err != nil {
			return "", err
		}
	}
	reply, err := s.provider.Produce(ctx, mc)
	if err != nil {
		return "", fmt.Errorf("producing message: %w", err)
	}
	if err := s.append(db.SenderAssistant, reply, mc); err != nil {
		return "", err
	}
	return reply, nil
}

func (s *Session) append(sender, content string, mc message.Context) error {
	encoded, _ := json.Marshal(mc) // plain struct, cannot fail
	_, err := s.db.AppendMessage(db.Message{
		Sender:  sender,
		Content: content,
		Context: encoded,
	})
	return err
}

// Package remind owns the two reminder timers: a weekly cron entry at
// the workout time on active days, and a one-shot follow-up that fires
// a fixed delay after each weekly fire. Both are cancelable, and
// cancellation always precedes rescheduling so a stale timer can never
// fire with old settings.
package remind

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kerri/buddy/internal/schedule"
)

type Scheduler struct {
	cron          *cron.Cron
	followUpDelay time.Duration
	onDue         func()
	onFollowUp    func()

	mu       sync.Mutex
	entry    cron.EntryID
	hasEntry bool
	followUp *time.Timer
}

func New(followUpDelay time.Duration, onDue, onFollowUp func()) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		followUpDelay: followUpDelay,
		onDue:         onDue,
		onFollowUp:    onFollowUp,
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("reminder scheduler started")
}

func (s *Scheduler) Stop() {
	s.Cancel()
	s.cron.Stop()
}

// Reschedule cancels everything pending and registers the weekly
// reminder for the given settings. With no active days it just leaves
// everything canceled.
func (s *Scheduler) Reschedule(workoutTime string, activeDays []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()

	if len(activeDays) == 0 {
		return nil
	}
	spec, err := CronSpec(workoutTime, activeDays)
	if err != nil {
		return err
	}
	entry, err := s.cron.AddFunc(spec, s.fire)
	if err != nil {
		return fmt.Errorf("registering reminder %q: %w", spec, err)
	}
	s.entry = entry
	s.hasEntry = true
	log.Printf("reminder scheduled: %s", spec)
	return nil
}

// Cancel stops the weekly entry and any pending follow-up. Idempotent.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

func (s *Scheduler) cancelLocked() {
	if s.hasEntry {
		s.cron.Remove(s.entry)
		s.hasEntry = false
	}
	if s.followUp != nil {
		s.followUp.Stop()
		s.followUp = nil
	}
}

// fire runs on the weekly schedule. The cron entry stays registered,
// so the recurrence carries on without an explicit reschedule. The
// follow-up is armed fresh on every fire; the two never block each
// other because the follow-up runs on its own timer goroutine.
func (s *Scheduler) fire() {
	if s.onDue != nil {
		s.onDue()
	}

	s.mu.Lock()
	if s.followUp != nil {
		s.followUp.Stop()
	}
	s.followUp = time.AfterFunc(s.followUpDelay, func() {
		if s.onFollowUp != nil {
			s.onFollowUp()
		}
	})
	s.mu.Unlock()
}

// CronSpec renders a robfig/cron spec ("minute hour * * days") for a
// workout time and active weekday set. cron and the settings agree
// that 0 means Sunday.
func CronSpec(hhmm string, activeDays []int) (string, error) {
	hour, minute, err := schedule.ParseTime(hhmm)
	if err != nil {
		return "", err
	}
	days := make([]string, len(activeDays))
	for i, d := range activeDays {
		if d < 0 || d > 6 {
			return "", fmt.Errorf("weekday %d out of range", d)
		}
		days[i] = strconv.Itoa(d)
	}
	return fmt.Sprintf("%d %d * * %s", minute, hour, strings.Join(days, ",")), nil
}

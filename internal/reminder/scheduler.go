package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/EanHD/homework-app/internal/model"
)

// lookahead bounds how far ahead a timer may be armed. Anything further out
// is picked up by a later resync pass, which keeps the timer set small and
// avoids long-lived timers outliving the state they were computed from.
const lookahead = 24 * time.Hour

// resyncInterval re-runs the full pass so assignments entering the lookahead
// window get their timers armed.
const resyncInterval = time.Hour

// Notification is what the scheduler hands to the notifier when a reminder
// fires.
type Notification struct {
	AssignmentID string
	Title        string
	Body         string
	URL          string
	Tag          string
}

// Notifier is the in-tab notification surface. PermissionGranted mirrors the
// platform notification permission: when it is false nothing is scheduled.
type Notifier interface {
	PermissionGranted() bool
	Show(n Notification) error
}

// AssignmentSource supplies the scheduling input set.
type AssignmentSource interface {
	ListActive() ([]model.Assignment, error)
	GetByID(id string) (*model.Assignment, error)
}

// SettingsSource supplies the current notification configuration.
type SettingsSource interface {
	ReminderSettings() (model.ReminderSettings, error)
}

// Scheduler keeps at most one pending timer per assignment and rebuilds the
// whole set on every resync. The full cancel-and-recompute pass trades
// efficiency for correctness simplicity: no incremental patching, so
// interleaved partial updates cannot happen. Only the goroutine started by
// Start triggers passes; callers just kick it via Resync.
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer

	// fired records the trigger time already delivered per assignment, so a
	// resync pass does not re-fire an unchanged past-due reminder. An entry
	// is dropped when the assignment leaves the active set or its computed
	// fire time moves.
	fired map[string]time.Time

	assignments AssignmentSource
	settings    SettingsSource
	notifier    Notifier
	logger      *slog.Logger

	loc *time.Location
	now func() time.Time

	kick   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(assignments AssignmentSource, settings SettingsSource, notifier Notifier, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		timers:      make(map[string]*time.Timer),
		fired:       make(map[string]time.Time),
		assignments: assignments,
		settings:    settings,
		notifier:    notifier,
		logger:      logger,
		loc:         time.Local,
		now:         time.Now,
		kick:        make(chan struct{}, 1),
	}
}

// Start runs an initial pass and then serializes all future passes in one
// goroutine: one per Resync kick, plus an hourly safety pass.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	s.CheckNow()

	go func() {
		defer close(s.done)
		defer s.CancelAll()
		ticker := time.NewTicker(resyncInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.kick:
				s.CheckNow()
			case <-ticker.C:
				s.CheckNow()
			}
		}
	}()
}

// Stop halts the resync goroutine and clears all pending timers.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	s.CancelAll()
}

// Resync requests a full pass from the owning goroutine. Non-blocking; a
// kick that arrives while one is already queued coalesces with it.
func (s *Scheduler) Resync() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// CheckNow is the idempotent full resync: cancel every pending timer, then
// re-arm from current assignment and settings state. Running it twice with
// no state change in between produces the same timer set.
func (s *Scheduler) CheckNow() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelAllLocked()

	cfg, err := s.settings.ReminderSettings()
	if err != nil {
		s.logger.Error("read reminder settings", "error", err)
		return
	}
	if !cfg.NotificationsEnabled || !s.notifier.PermissionGranted() {
		return
	}

	active, err := s.assignments.ListActive()
	if err != nil {
		s.logger.Error("list active assignments", "error", err)
		return
	}

	now := s.now()
	seen := make(map[string]struct{}, len(active))
	for _, a := range active {
		seen[a.ID] = struct{}{}

		off := ResolveLocalOffset(a, cfg)
		fireAt := FireTime(a.DueAt, off)

		// Dropped, not deferred: a reminder landing inside the quiet
		// window is skipped for this cycle entirely.
		if cfg.QuietHoursEnabled && WithinQuietHours(Clock(fireAt.In(s.loc)), cfg.QuietHoursStart, cfg.QuietHoursEnd) {
			continue
		}

		delta := fireAt.Sub(now)
		switch {
		case delta <= 0:
			if last, ok := s.fired[a.ID]; ok && last.Equal(fireAt) {
				continue
			}
			s.fired[a.ID] = fireAt
			go s.fire(a.ID)
		case delta > lookahead:
			// Picked up by a later pass once inside the window.
		default:
			id := a.ID
			at := fireAt
			s.timers[id] = time.AfterFunc(delta, func() {
				s.markFired(id, at)
				s.fire(id)
			})
		}
	}

	// Forget delivered trigger times for assignments that completed or were
	// removed, so a reactivated or rescheduled one can fire again.
	for id := range s.fired {
		if _, ok := seen[id]; !ok {
			delete(s.fired, id)
		}
	}
}

func (s *Scheduler) markFired(id string, at time.Time) {
	s.mu.Lock()
	s.fired[id] = at
	s.mu.Unlock()
}

// CancelAll clears every pending timer without firing anything.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelAllLocked()
}

func (s *Scheduler) cancelAllLocked() {
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// Pending returns the assignment IDs with an armed timer, sorted.
func (s *Scheduler) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.timers))
	for id := range s.timers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// fire delivers one reminder. Settings, permission, and the assignment
// itself are re-read at fire time, not schedule time, so edits made in
// between are reflected. Every failure is swallowed: reminders are additive
// and must never surface as an application error.
func (s *Scheduler) fire(id string) {
	s.mu.Lock()
	delete(s.timers, id)
	s.mu.Unlock()

	cfg, err := s.settings.ReminderSettings()
	if err != nil || !cfg.NotificationsEnabled || !s.notifier.PermissionGranted() {
		return
	}

	a, err := s.assignments.GetByID(id)
	if err != nil {
		s.logger.Debug("reminder fire lookup failed", "assignment_id", id, "error", err)
		return
	}
	if a == nil || a.Completed {
		return
	}

	due := a.DueAt.In(s.loc).Format("3:04 PM")
	body := fmt.Sprintf("Due at %s", due)
	if a.ClassName != "" {
		body = fmt.Sprintf("%s · due at %s", a.ClassName, due)
	}

	n := Notification{
		AssignmentID: a.ID,
		Title:        a.Title,
		Body:         body,
		URL:          "/assignments/" + a.ID,
		Tag:          "assignment-" + a.ID,
	}
	if err := s.notifier.Show(n); err != nil {
		s.logger.Debug("show reminder failed", "assignment_id", id, "error", err)
	}
}

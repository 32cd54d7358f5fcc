package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/thammystudio/studio-crm/internal/model"
	"github.com/thammystudio/studio-crm/internal/reminder"
	"github.com/thammystudio/studio-crm/pkg/logger"
	"github.com/thammystudio/studio-crm/pkg/prom"
	"github.com/thammystudio/studio-crm/pkg/redis"
)

const sweepLockKey = "sweep:reminders:lock"

// ErrSweepInProgress is returned when another instance holds the sweep lock.
var ErrSweepInProgress = errors.New("reminder sweep already running")

type OpenReminderLister interface {
	ListOpen(ctx context.Context) ([]model.Reminder, error)
}

type SweepConfig struct {
	Spec          string
	UpcomingHours int
	Timeout       time.Duration
	LockTTL       time.Duration
}

// SweepResult is the backlog observed by one sweep.
type SweepResult struct {
	Open     int
	Overdue  int
	Upcoming int
	Oldest   *model.Reminder
}

// ReminderSweeper periodically reports the reminder backlog. It only reads;
// reminder state is changed by staff actions alone.
type ReminderSweeper struct {
	cron      *cron.Cron
	reminders OpenReminderLister
	lock      redis.RedisAdapter
	cfg       SweepConfig
	now       func() time.Time
}

// NewReminderSweeper builds a sweeper. lock may be nil when a single instance
// runs the schedule.
func NewReminderSweeper(reminders OpenReminderLister, lock redis.RedisAdapter, cfg SweepConfig) *ReminderSweeper {
	if cfg.Spec == "" {
		cfg.Spec = "*/5 * * * *"
	}
	if cfg.UpcomingHours <= 0 {
		cfg.UpcomingHours = 24
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = cfg.Timeout
	}
	return &ReminderSweeper{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		reminders: reminders,
		lock:      lock,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *ReminderSweeper) Start() error {
	_, err := s.cron.AddFunc(s.cfg.Spec, s.run)
	if err != nil {
		return fmt.Errorf("schedule reminder sweep %q: %w", s.cfg.Spec, err)
	}
	s.cron.Start()
	logger.Info("reminder sweep scheduled", "spec", s.cfg.Spec, "upcoming_hours", s.cfg.UpcomingHours)
	return nil
}

// Stop waits for a running sweep to finish.
func (s *ReminderSweeper) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("reminder sweep stopped")
}

func (s *ReminderSweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()

	if _, err := s.Sweep(ctx); err != nil {
		if errors.Is(err, ErrSweepInProgress) {
			logger.Debug("reminder sweep skipped", "reason", err.Error())
			return
		}
		logger.Error("reminder sweep failed", "error", err)
	}
}

// Sweep loads open reminders, publishes the backlog gauges and logs what is
// overdue.
func (s *ReminderSweeper) Sweep(ctx context.Context) (*SweepResult, error) {
	if s.lock != nil {
		token := []byte(uuid.NewString())
		ok, err := s.lock.SetNX(ctx, sweepLockKey, token, s.cfg.LockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire sweep lock: %w", err)
		}
		if !ok {
			return nil, ErrSweepInProgress
		}
		defer func() {
			if _, err := s.lock.DelIfEqual(context.Background(), sweepLockKey, token); err != nil {
				logger.Warn("failed to release sweep lock", "error", err)
			}
		}()
	}

	open, err := s.reminders.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("list open reminders: %w", err)
	}

	now := s.now()
	overdue := reminder.OverdueList(open, now)
	res := &SweepResult{
		Open:     len(open),
		Overdue:  len(overdue),
		Upcoming: reminder.CountUpcoming(open, s.cfg.UpcomingHours, now),
	}
	prom.SetReminderBacklog(res.Overdue, res.Upcoming)

	if len(overdue) > 0 {
		res.Oldest = &overdue[0]
		logger.Warn("overdue reminders",
			"count", res.Overdue,
			"oldest_id", res.Oldest.ID,
			"oldest_customer", res.Oldest.CustomerName,
			"oldest_due", res.Oldest.ScheduledAt.Format(time.RFC3339),
			"oldest_overdue_for", reminder.FormatRelativeTime(res.Oldest.ScheduledAt, now),
		)
	}
	logger.Info("reminder sweep done", "open", res.Open, "overdue", res.Overdue, "upcoming", res.Upcoming)

	return res, nil
}

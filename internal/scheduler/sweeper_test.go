package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thammystudio/studio-crm/internal/model"
	"github.com/thammystudio/studio-crm/pkg/redis"
)

var baseTime = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

type fakeLister struct {
	reminders []model.Reminder
	err       error
	calls     int
}

func (f *fakeLister) ListOpen(context.Context) ([]model.Reminder, error) {
	f.calls++
	return f.reminders, f.err
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr := miniredis.RunT(t)
	adapter, err := redis.NewRedisAdapter(t.Name()+"-"+mr.Addr(), "crm:", &redis.Options{Addrs: []string{mr.Addr()}})
	require.NoError(t, err)
	return mr, adapter
}

func openReminders() []model.Reminder {
	return []model.Reminder{
		{ID: "r-1", CustomerName: "Lan", Status: model.ReminderStatusPending, ScheduledAt: baseTime.Add(-3 * time.Hour)},
		{ID: "r-2", CustomerName: "Hoa", Status: model.ReminderStatusPending, ScheduledAt: baseTime.Add(-30 * time.Minute)},
		{ID: "r-3", CustomerName: "Mai", Status: model.ReminderStatusPending, ScheduledAt: baseTime.Add(2 * time.Hour)},
		{ID: "r-4", CustomerName: "Thu", Status: model.ReminderStatusPending, ScheduledAt: baseTime.Add(72 * time.Hour)},
		{ID: "r-5", CustomerName: "Ngoc", Status: model.ReminderStatusSnoozed, ScheduledAt: baseTime.Add(-5 * time.Hour)},
	}
}

func TestSweep_ReportsBacklog(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	lister := &fakeLister{reminders: openReminders()}
	before := openReminders()

	s := NewReminderSweeper(lister, adapter, SweepConfig{UpcomingHours: 24})
	s.now = func() time.Time { return baseTime }

	res, err := s.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, res.Open)
	assert.Equal(t, 2, res.Overdue)
	assert.Equal(t, 1, res.Upcoming)
	require.NotNil(t, res.Oldest)
	assert.Equal(t, "r-1", res.Oldest.ID)

	assert.Equal(t, before, lister.reminders, "sweep must not change reminders")
	assert.False(t, mr.Exists("crm:"+sweepLockKey), "lock released after sweep")
}

func TestSweep_SkipsWhileLocked(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	require.NoError(t, mr.Set("crm:"+sweepLockKey, "other-instance"))

	lister := &fakeLister{reminders: openReminders()}
	s := NewReminderSweeper(lister, adapter, SweepConfig{})

	_, err := s.Sweep(context.Background())
	assert.ErrorIs(t, err, ErrSweepInProgress)
	assert.Equal(t, 0, lister.calls)

	got, _ := mr.Get("crm:" + sweepLockKey)
	assert.Equal(t, "other-instance", got)
}

func TestSweep_WithoutLock(t *testing.T) {
	lister := &fakeLister{}
	s := NewReminderSweeper(lister, nil, SweepConfig{})
	s.now = func() time.Time { return baseTime }

	res, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Overdue)
	assert.Nil(t, res.Oldest)
}

func TestSweep_ListError(t *testing.T) {
	lister := &fakeLister{err: errors.New("db down")}
	s := NewReminderSweeper(lister, nil, SweepConfig{})

	_, err := s.Sweep(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestNewReminderSweeper_Defaults(t *testing.T) {
	s := NewReminderSweeper(&fakeLister{}, nil, SweepConfig{})
	assert.Equal(t, "*/5 * * * *", s.cfg.Spec)
	assert.Equal(t, 24, s.cfg.UpcomingHours)
	assert.Equal(t, time.Minute, s.cfg.LockTTL)
}

func TestStart_RejectsBadSpec(t *testing.T) {
	s := NewReminderSweeper(&fakeLister{}, nil, SweepConfig{Spec: "every now and then"})
	assert.Error(t, s.Start())
}

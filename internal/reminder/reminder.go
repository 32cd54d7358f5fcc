package reminder

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/thammystudio/studio-crm/internal/model"
)

const DefaultSnoozeHours = 24

// New builds a pending reminder with a fresh time-ordered id.
func New(customerID, customerName, customerPhone string, t model.ReminderType, scheduledAt time.Time, notes string, now time.Time) model.Reminder {
	return model.Reminder{
		ID:            uuid.Must(uuid.NewV7()).String(),
		CustomerID:    customerID,
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
		Type:          t,
		Status:        model.ReminderStatusPending,
		ScheduledAt:   scheduledAt,
		Notes:         notes,
		CreatedAt:     now,
	}
}

// IsOverdue reports whether r is pending and past its scheduled time.
// Handled reminders are never overdue.
func IsOverdue(r model.Reminder, now time.Time) bool {
	return r.Status == model.ReminderStatusPending && r.ScheduledAt.Before(now)
}

// Urgency classifies a pending reminder by the time left until it is due.
// Each boundary belongs to the less urgent bucket.
func Urgency(r model.Reminder, now time.Time) model.Urgency {
	if r.Status != model.ReminderStatusPending {
		return model.UrgencyLow
	}

	left := r.ScheduledAt.Sub(now)
	switch {
	case left < -24*time.Hour:
		return model.UrgencyUrgent
	case left < 0:
		return model.UrgencyHigh
	case left < 2*time.Hour:
		return model.UrgencyHigh
	case left < 24*time.Hour:
		return model.UrgencyMedium
	}
	return model.UrgencyLow
}

// detach gives r its own copies of the optional timestamps so the result of a
// transition never aliases its input.
func detach(r model.Reminder) model.Reminder {
	if r.CompletedAt != nil {
		v := *r.CompletedAt
		r.CompletedAt = &v
	}
	if r.SnoozedUntil != nil {
		v := *r.SnoozedUntil
		r.SnoozedUntil = &v
	}
	return r
}

// Snooze returns a copy of r deferred by hours from now. ScheduledAt is kept.
func Snooze(r model.Reminder, hours int, now time.Time) model.Reminder {
	r = detach(r)
	until := now.Add(time.Duration(hours) * time.Hour)
	r.Status = model.ReminderStatusSnoozed
	r.SnoozedUntil = &until
	r.SnoozeCount++
	return r
}

// Complete returns a completed copy of r. Fields from earlier states, such as
// SnoozedUntil, are kept.
func Complete(r model.Reminder, now time.Time) model.Reminder {
	r = detach(r)
	r.Status = model.ReminderStatusCompleted
	r.CompletedAt = &now
	return r
}

func Cancel(r model.Reminder) model.Reminder {
	r = detach(r)
	r.Status = model.ReminderStatusCancelled
	return r
}

// CountUpcoming counts pending reminders due within [now, now+hours].
func CountUpcoming(rs []model.Reminder, hours int, now time.Time) int {
	threshold := now.Add(time.Duration(hours) * time.Hour)
	n := 0
	for _, r := range rs {
		if r.Status != model.ReminderStatusPending {
			continue
		}
		if !r.ScheduledAt.Before(now) && !r.ScheduledAt.After(threshold) {
			n++
		}
	}
	return n
}

// OverdueList returns the overdue reminders, most overdue first.
func OverdueList(rs []model.Reminder, now time.Time) []model.Reminder {
	out := make([]model.Reminder, 0)
	for _, r := range rs {
		if IsOverdue(r, now) {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Reminder) int {
		return a.ScheduledAt.Compare(b.ScheduledAt)
	})
	return out
}

// GenerateSchedule returns the default cadence for a new lead: first contact,
// a follow-up and a re-engagement call.
func GenerateSchedule(customerID, customerName, customerPhone string, now time.Time) []model.Reminder {
	steps := []struct {
		t     model.ReminderType
		notes string
	}{
		{model.ReminderInitialContact, "Liên hệ lần đầu với khách hàng mới"},
		{model.ReminderFollowUp, "Theo dõi nếu khách chưa phản hồi"},
		{model.ReminderReEngagement, "Kích hoạt lại nếu không chuyển đổi"},
	}

	out := make([]model.Reminder, 0, len(steps))
	for _, s := range steps {
		out = append(out, New(customerID, customerName, customerPhone, s.t, NextFollowUp(s.t, now), s.notes, now))
	}
	return out
}

package reminder

import (
	"errors"
	"time"

	"github.com/thammystudio/studio-crm/internal/model"
)

var ErrReminderClosed = errors.New("reminder is already completed or cancelled")

var transitions = map[model.ReminderStatus][]model.ReminderStatus{
	model.ReminderStatusPending: {model.ReminderStatusCompleted, model.ReminderStatusCancelled, model.ReminderStatusSnoozed},
	model.ReminderStatusSnoozed: {model.ReminderStatusCompleted, model.ReminderStatusSnoozed, model.ReminderStatusCancelled},
}

// CanTransition reports whether a reminder may move from one status to another.
// Completed and cancelled are terminal; there is no way back to pending.
func CanTransition(from, to model.ReminderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func IsClosed(r model.Reminder) bool {
	return r.Status == model.ReminderStatusCompleted || r.Status == model.ReminderStatusCancelled
}

// EffectiveDueAt is when a reminder next needs attention: SnoozedUntil for
// snoozed reminders, ScheduledAt otherwise.
func EffectiveDueAt(r model.Reminder) time.Time {
	if r.Status == model.ReminderStatusSnoozed && r.SnoozedUntil != nil {
		return *r.SnoozedUntil
	}
	return r.ScheduledAt
}

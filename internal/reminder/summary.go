package reminder

import (
	"time"

	"github.com/thammystudio/studio-crm/internal/model"
)

// Summarize aggregates reminders for the dashboard header.
func Summarize(rs []model.Reminder, hours int, now time.Time) model.ReminderSummary {
	s := model.ReminderSummary{
		Upcoming:  CountUpcoming(rs, hours, now),
		ByStatus:  make(map[model.ReminderStatus]int),
		ByUrgency: make(map[model.Urgency]int),
	}
	for _, r := range rs {
		if IsOverdue(r, now) {
			s.Overdue++
		}
		s.ByStatus[r.Status]++
		s.ByUrgency[Urgency(r, now)]++
	}
	return s
}

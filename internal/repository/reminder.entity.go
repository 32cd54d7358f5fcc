package repository

import (
	"time"

	"github.com/thammystudio/studio-crm/internal/model"
)

type ReminderEntity struct {
	ID            string     `db:"id"             gorm:"primaryKey;column:id"`
	CustomerID    string     `db:"customer_id"    gorm:"column:customer_id;not null;index"`
	CustomerName  string     `db:"customer_name"  gorm:"column:customer_name;not null"`
	CustomerPhone string     `db:"customer_phone" gorm:"column:customer_phone"`
	Type          string     `db:"type"           gorm:"column:type;not null"`
	Status        string     `db:"status"         gorm:"column:status;not null;index"`
	ScheduledAt   time.Time  `db:"scheduled_at"   gorm:"column:scheduled_at;not null;index"`
	Notes         string     `db:"notes"          gorm:"column:notes"`
	CreatedAt     time.Time  `db:"created_at"     gorm:"column:created_at"`
	CompletedAt   *time.Time `db:"completed_at"   gorm:"column:completed_at"`
	SnoozedUntil  *time.Time `db:"snoozed_until"  gorm:"column:snoozed_until"`
	SnoozeCount   int        `db:"snooze_count"   gorm:"column:snooze_count;not null;default:0"`
}

func (ReminderEntity) TableName() string {
	return "follow_up_reminders"
}

func toReminderEntity(m model.Reminder) *ReminderEntity {
	return &ReminderEntity{
		ID:            m.ID,
		CustomerID:    m.CustomerID,
		CustomerName:  m.CustomerName,
		CustomerPhone: m.CustomerPhone,
		Type:          string(m.Type),
		Status:        string(m.Status),
		ScheduledAt:   m.ScheduledAt,
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt,
		CompletedAt:   m.CompletedAt,
		SnoozedUntil:  m.SnoozedUntil,
		SnoozeCount:   m.SnoozeCount,
	}
}

func toReminderModel(e *ReminderEntity) model.Reminder {
	return model.Reminder{
		ID:            e.ID,
		CustomerID:    e.CustomerID,
		CustomerName:  e.CustomerName,
		CustomerPhone: e.CustomerPhone,
		Type:          model.ReminderType(e.Type),
		Status:        model.ReminderStatus(e.Status),
		ScheduledAt:   e.ScheduledAt,
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt,
		CompletedAt:   e.CompletedAt,
		SnoozedUntil:  e.SnoozedUntil,
		SnoozeCount:   e.SnoozeCount,
	}
}

func toReminderModels(entities []*ReminderEntity) []model.Reminder {
	models := make([]model.Reminder, len(entities))
	for i, e := range entities {
		models[i] = toReminderModel(e)
	}
	return models
}

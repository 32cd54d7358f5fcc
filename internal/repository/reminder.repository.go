package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/thammystudio/studio-crm/internal/model"
	"github.com/thammystudio/studio-crm/pkg/pg"
)

type ReminderRepository struct {
	*pg.DB
}

func NewReminderRepository(db *pg.DB) *ReminderRepository {
	return &ReminderRepository{
		db,
	}
}

func (r *ReminderRepository) CreateBatch(ctx context.Context, reminders []model.Reminder) error {
	if len(reminders) == 0 {
		return nil
	}
	entities := make([]*ReminderEntity, len(reminders))
	for i, m := range reminders {
		entities[i] = toReminderEntity(m)
	}
	return r.Write(ctx).Create(&entities).Error
}

func (r *ReminderRepository) GetByID(ctx context.Context, id string) (model.Reminder, error) {
	var entity ReminderEntity
	err := r.Read(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Reminder{}, ErrReminderNotFound
		}
		return model.Reminder{}, err
	}
	return toReminderModel(&entity), nil
}

// List orders by scheduled_at.
func (r *ReminderRepository) List(ctx context.Context, f model.ReminderFilter) ([]model.Reminder, int64, error) {
	q := r.Read(ctx).Model(&ReminderEntity{})

	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		q = q.Where("status IN ?", statuses)
	}
	if len(f.Types) > 0 {
		types := make([]string, len(f.Types))
		for i, t := range f.Types {
			types[i] = string(t)
		}
		q = q.Where("type IN ?", types)
	}
	if f.DueFrom != nil {
		q = q.Where("scheduled_at >= ?", *f.DueFrom)
	}
	if f.DueTo != nil {
		q = q.Where("scheduled_at < ?", *f.DueTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := page(f.Limit, f.Offset)

	var entities []*ReminderEntity
	if err := q.Order(orderBy("scheduled_at", f.Desc)).Order("id ASC").Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toReminderModels(entities), total, nil
}

// ListOpen returns every pending or snoozed reminder, oldest due first.
func (r *ReminderRepository) ListOpen(ctx context.Context) ([]model.Reminder, error) {
	var entities []*ReminderEntity
	err := r.Read(ctx).
		Where("status IN ?", []string{string(model.ReminderStatusPending), string(model.ReminderStatusSnoozed)}).
		Order("scheduled_at ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toReminderModels(entities), nil
}

// SaveTransition persists the lifecycle fields of rem, provided the stored
// reminder is still in status from. scheduled_at is never written.
func (r *ReminderRepository) SaveTransition(ctx context.Context, rem model.Reminder, from model.ReminderStatus) error {
	result := r.Write(ctx).Model(&ReminderEntity{}).
		Where("id = ? AND status = ?", rem.ID, string(from)).
		Updates(map[string]any{
			"status":        string(rem.Status),
			"completed_at":  rem.CompletedAt,
			"snoozed_until": rem.SnoozedUntil,
			"snooze_count":  rem.SnoozeCount,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}

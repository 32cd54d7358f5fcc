package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thammystudio/studio-crm/internal/model"
	"github.com/thammystudio/studio-crm/pkg/pg"
)

type MessageRepository struct {
	*pg.DB
}

func NewMessageRepository(db *pg.DB) *MessageRepository {
	return &MessageRepository{
		db,
	}
}

func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) (*model.Message, error) {
	entity := toMessageEntity(msg)
	if entity.ID == "" {
		entity.ID = uuid.Must(uuid.NewV7()).String()
	}
	if entity.Status == "" {
		entity.Status = string(model.MessageStatusQueued)
	}

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toMessageModel(entity), nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id string) (*model.Message, error) {
	var entity MessageEntity
	err := r.Read(ctx).Preload("DeliveryReports").Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toMessageModel(&entity), nil
}

func (r *MessageRepository) List(ctx context.Context, f model.MessageFilter) ([]*model.Message, int64, error) {
	q := r.Read(ctx).Model(&MessageEntity{})

	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.ReminderID != nil {
		q = q.Where("reminder_id = ?", *f.ReminderID)
	}
	if f.Mobile != nil && *f.Mobile != "" {
		q = q.Where("mobile = ?", *f.Mobile)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := page(f.Limit, f.Offset)
	q = q.Order(orderBy("created_at", f.Desc)).Order("id ASC").Limit(limit).Offset(offset)
	if f.WithReports {
		q = q.Preload("DeliveryReports", func(db *gorm.DB) *gorm.DB {
			return db.Order("id DESC")
		})
	}

	var entities []*MessageEntity
	if err := q.Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toMessageModels(entities), total, nil
}

func (r *MessageRepository) UpdateStatus(ctx context.Context, id string, status model.MessageStatus) error {
	result := r.Write(ctx).Model(&MessageEntity{}).Where("id = ?", id).Update("status", string(status))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

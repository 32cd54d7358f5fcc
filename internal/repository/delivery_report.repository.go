package repository

import (
	"context"

	"github.com/thammystudio/studio-crm/internal/model"
	"github.com/thammystudio/studio-crm/pkg/pg"
)

// DeliveryReportRepository stores provider outcomes. Reports are append-only.
type DeliveryReportRepository struct {
	*pg.DB
}

func NewDeliveryReportRepository(db *pg.DB) *DeliveryReportRepository {
	return &DeliveryReportRepository{db}
}

func (r *DeliveryReportRepository) Create(ctx context.Context, dr *model.DeliveryReport) (*model.DeliveryReport, error) {
	entity := toDeliveryReportEntity(dr)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toDeliveryReportModel(entity), nil
}

// ListByMessage returns the reports of one message, oldest first.
func (r *DeliveryReportRepository) ListByMessage(ctx context.Context, messageID string) ([]*model.DeliveryReport, error) {
	var entities []*DeliveryReportEntity
	err := r.Read(ctx).
		Where("message_id = ?", messageID).
		Order("id ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toDeliveryReportModels(entities), nil
}

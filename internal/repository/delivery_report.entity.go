package repository

import (
	"time"

	"github.com/thammystudio/studio-crm/internal/model"
)

type DeliveryReportEntity struct {
	ID          int64      `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	MessageID   string     `db:"message_id"   gorm:"column:message_id;not null;index"`
	Status      string     `db:"status"       gorm:"column:status;not null;index"`
	OperatorID  string     `db:"operator_id"  gorm:"column:operator_id"`
	ErrorCode   string     `db:"error_code"   gorm:"column:error_code"`
	DeliveredAt *time.Time `db:"delivered_at" gorm:"column:delivered_at"`
	CreatedAt   time.Time  `db:"created_at"   gorm:"column:created_at;autoCreateTime"`
}

func (DeliveryReportEntity) TableName() string {
	return "delivery_reports"
}

func toDeliveryReportEntity(m *model.DeliveryReport) *DeliveryReportEntity {
	return &DeliveryReportEntity{
		ID:          m.ID,
		MessageID:   m.MessageID,
		Status:      m.Status,
		OperatorID:  m.OperatorID,
		ErrorCode:   m.ErrorCode,
		DeliveredAt: m.DeliveredAt,
		CreatedAt:   m.CreatedAt,
	}
}

func toDeliveryReportModel(e *DeliveryReportEntity) *model.DeliveryReport {
	return &model.DeliveryReport{
		ID:          e.ID,
		MessageID:   e.MessageID,
		Status:      e.Status,
		OperatorID:  e.OperatorID,
		ErrorCode:   e.ErrorCode,
		DeliveredAt: e.DeliveredAt,
		CreatedAt:   e.CreatedAt,
	}
}

func toDeliveryReportModels(entities []*DeliveryReportEntity) []*model.DeliveryReport {
	if entities == nil {
		return nil
	}
	out := make([]*model.DeliveryReport, 0, len(entities))
	for _, e := range entities {
		out = append(out, toDeliveryReportModel(e))
	}
	return out
}

package repository

import (
	"time"

	"github.com/thammystudio/studio-crm/internal/model"
)

type MessageEntity struct {
	ID              string                  `db:"id"          gorm:"primaryKey;column:id"`
	ReminderID      *string                 `db:"reminder_id" gorm:"column:reminder_id;index"`
	CustomerID      string                  `db:"customer_id" gorm:"column:customer_id;not null;index"`
	Mobile          string                  `db:"mobile"      gorm:"column:mobile;not null"`
	Channel         string                  `db:"channel"     gorm:"column:channel;not null;default:sms"`
	Template        string                  `db:"template"    gorm:"column:template"`
	Content         string                  `db:"content"     gorm:"column:content;not null"`
	Priority        string                  `db:"priority"    gorm:"column:priority;not null;default:normal"`
	Status          string                  `db:"status"      gorm:"column:status;not null;default:queued"`
	CreatedAt       time.Time               `db:"created_at"  gorm:"column:created_at;autoCreateTime"`
	DeliveryReports []*DeliveryReportEntity `gorm:"foreignKey:MessageID"`
}

func (MessageEntity) TableName() string {
	return "messages"
}

func toMessageEntity(m *model.Message) *MessageEntity {
	if m == nil {
		return nil
	}
	return &MessageEntity{
		ID:         m.ID,
		ReminderID: m.ReminderID,
		CustomerID: m.CustomerID,
		Mobile:     m.Mobile,
		Channel:    string(m.Channel),
		Template:   string(m.Template),
		Content:    m.Content,
		Priority:   m.Priority,
		Status:     string(m.Status),
		CreatedAt:  m.CreatedAt,
	}
}

func toMessageModel(e *MessageEntity) *model.Message {
	if e == nil {
		return nil
	}
	return &model.Message{
		ID:              e.ID,
		ReminderID:      e.ReminderID,
		CustomerID:      e.CustomerID,
		Mobile:          e.Mobile,
		Channel:         model.Channel(e.Channel),
		Template:        model.ReminderType(e.Template),
		Content:         e.Content,
		Priority:        e.Priority,
		Status:          model.MessageStatus(e.Status),
		CreatedAt:       e.CreatedAt,
		DeliveryReports: toDeliveryReportModels(e.DeliveryReports),
	}
}

func toMessageModels(entities []*MessageEntity) []*model.Message {
	if entities == nil {
		return nil
	}
	models := make([]*model.Message, len(entities))
	for i, e := range entities {
		models[i] = toMessageModel(e)
	}
	return models
}

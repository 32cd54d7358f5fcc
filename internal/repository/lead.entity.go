package repository

import (
	"time"

	"github.com/thammystudio/studio-crm/internal/model"
)

type LeadEntity struct {
	ID              string     `db:"id"               gorm:"primaryKey;column:id"`
	Name            string     `db:"name"             gorm:"column:name;not null"`
	Phone           string     `db:"phone"            gorm:"column:phone;not null;index"`
	Email           string     `db:"email"            gorm:"column:email"`
	ServiceInterest string     `db:"service_interest" gorm:"column:service_interest"`
	Source          string     `db:"source"           gorm:"column:source;not null;index"`
	Notes           string     `db:"notes"            gorm:"column:notes"`
	Status          string     `db:"status"           gorm:"column:status;not null;index"`
	Priority        string     `db:"priority"         gorm:"column:priority;not null"`
	Score           int        `db:"score"            gorm:"column:score;not null;default:0"`
	AssignedTo      string     `db:"assigned_to"      gorm:"column:assigned_to"`
	LastContactAt   *time.Time `db:"last_contact_at"  gorm:"column:last_contact_at"`
	FollowUpAt      *time.Time `db:"follow_up_at"     gorm:"column:follow_up_at"`
	CreatedAt       time.Time  `db:"created_at"       gorm:"column:created_at;index"`
	UpdatedAt       time.Time  `db:"updated_at"       gorm:"column:updated_at"`
}

func (LeadEntity) TableName() string {
	return "leads"
}

func toLeadEntity(m *model.Lead) *LeadEntity {
	if m == nil {
		return nil
	}
	return &LeadEntity{
		ID:              m.ID,
		Name:            m.Name,
		Phone:           m.Phone,
		Email:           m.Email,
		ServiceInterest: m.ServiceInterest,
		Source:          string(m.Source),
		Notes:           m.Notes,
		Status:          string(m.Status),
		Priority:        string(m.Priority),
		Score:           m.Score,
		AssignedTo:      m.AssignedTo,
		LastContactAt:   m.LastContactAt,
		FollowUpAt:      m.FollowUpAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toLeadModel(e *LeadEntity) *model.Lead {
	if e == nil {
		return nil
	}
	return &model.Lead{
		ID:              e.ID,
		Name:            e.Name,
		Phone:           e.Phone,
		Email:           e.Email,
		ServiceInterest: e.ServiceInterest,
		Source:          model.LeadSource(e.Source),
		Notes:           e.Notes,
		Status:          model.LeadStatus(e.Status),
		Priority:        model.LeadPriority(e.Priority),
		Score:           e.Score,
		AssignedTo:      e.AssignedTo,
		LastContactAt:   e.LastContactAt,
		FollowUpAt:      e.FollowUpAt,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func toLeadModels(entities []*LeadEntity) []*model.Lead {
	if entities == nil {
		return nil
	}
	models := make([]*model.Lead, len(entities))
	for i, e := range entities {
		models[i] = toLeadModel(e)
	}
	return models
}

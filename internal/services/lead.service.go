package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/thammystudio/studio-crm/internal/lead"
	"github.com/thammystudio/studio-crm/internal/model"
	"github.com/thammystudio/studio-crm/internal/reminder"
	"github.com/thammystudio/studio-crm/internal/sanitize"
	"github.com/thammystudio/studio-crm/pkg/logger"
	"github.com/thammystudio/studio-crm/pkg/prom"
)

type LeadRepository interface {
	Create(ctx context.Context, l *model.Lead) (*model.Lead, error)
	GetByID(ctx context.Context, id string) (*model.Lead, error)
	List(ctx context.Context, f model.LeadFilter) ([]*model.Lead, int64, error)
	UpdateStatus(ctx context.Context, id string, status model.LeadStatus, contactedAt *time.Time, now time.Time) error
	UpdateScore(ctx context.Context, id string, score int, priority model.LeadPriority, now time.Time) error
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type ReminderBatchCreator interface {
	CreateBatch(ctx context.Context, reminders []model.Reminder) error
}

type MessageCreator interface {
	Create(ctx context.Context, p model.MessageCreateRequest) (*model.Message, error)
}

type LeadNotifier interface {
	NotifyNewLead(ctx context.Context, l *model.Lead) error
}

// LeadService turns contact-form submissions into scored leads with their
// follow-up cadence.
type LeadService struct {
	leads     LeadRepository
	reminders ReminderBatchCreator
	messages  MessageCreator
	notifier  LeadNotifier
	now       func() time.Time
}

// NewLeadService wires the intake flow. messages and notifier may be nil, in
// which case the acknowledgement SMS and the staff e-mail are skipped.
func NewLeadService(leads LeadRepository, reminders ReminderBatchCreator, messages MessageCreator, notifier LeadNotifier) *LeadService {
	return &LeadService{
		leads:     leads,
		reminders: reminders,
		messages:  messages,
		notifier:  notifier,
		now:       time.Now,
	}
}

func cleanInput(in model.LeadInput) model.LeadInput {
	return model.LeadInput{
		Name:            sanitize.Text(in.Name),
		Phone:           sanitize.Text(in.Phone),
		Email:           strings.ToLower(sanitize.Text(in.Email)),
		ServiceInterest: sanitize.Text(in.ServiceInterest),
		Source:          model.LeadSource(sanitize.Text(string(in.Source))),
		Notes:           sanitize.Text(in.Notes),
	}
}

func (s *LeadService) Submit(ctx context.Context, in model.LeadInput) (*model.LeadSubmission, error) {
	in = cleanInput(in)
	if in.Name == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, model.ErrLeadNameRequired)
	}
	if in.Phone == "" {
		return nil, invalid("phone is required")
	}
	if in.Source == "" {
		in.Source = model.LeadSourceWebsite
	}
	if !in.Source.Valid() {
		return nil, invalid("unknown source %q", in.Source)
	}

	now := s.now()
	record := lead.BuildRecord(in, in.Source, now)

	var reminders []model.Reminder
	err := s.leads.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err := s.leads.Create(ctx, record)
		if err != nil {
			return fmt.Errorf("create lead: %w", err)
		}
		record = created

		reminders = reminder.GenerateSchedule(record.ID, record.Name, record.Phone, now)
		if err := s.reminders.CreateBatch(ctx, reminders); err != nil {
			return fmt.Errorf("create reminders: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	prom.IncLeadCreated(string(record.Source), string(record.Priority))
	logger.Info("lead submitted",
		"lead_id", record.ID,
		"source", string(record.Source),
		"priority", string(record.Priority),
		"score", record.Score)

	s.afterSubmit(ctx, record)

	return &model.LeadSubmission{
		Lead:      record,
		Reminders: reminders,
		Warnings:  lead.Warnings(in),
	}, nil
}

// afterSubmit runs the best-effort side effects of a committed submission.
func (s *LeadService) afterSubmit(ctx context.Context, l *model.Lead) {
	if s.messages != nil && lead.ValidatePhone(l.Phone) {
		if tpl, ok := reminder.MessageTemplate(model.ReminderInitialContact); ok {
			_, err := s.messages.Create(ctx, model.MessageCreateRequest{
				CustomerID: l.ID,
				Mobile:     l.Phone,
				Channel:    model.ChannelSMS,
				Template:   model.ReminderInitialContact,
				Content:    reminder.Render(tpl, map[string]string{"name": l.Name}),
			})
			if err != nil {
				logger.Warn("failed to queue acknowledgement", "lead_id", l.ID, "error", err)
			}
		}
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyNewLead(ctx, l); err != nil {
			logger.Warn("failed to notify staff", "lead_id", l.ID, "error", err)
		}
	}
}

func (s *LeadService) Get(ctx context.Context, id string) (*model.Lead, error) {
	l, err := s.leads.GetByID(ctx, id)
	return l, mapRepoErr(err)
}

func (s *LeadService) List(ctx context.Context, f model.LeadFilter) ([]*model.Lead, int64, error) {
	for _, st := range f.Statuses {
		if !st.Valid() {
			return nil, 0, invalid("unknown status %q", st)
		}
	}
	if f.Source != nil && !f.Source.Valid() {
		return nil, 0, invalid("unknown source %q", *f.Source)
	}
	if f.Priority != nil && !f.Priority.Valid() {
		return nil, 0, invalid("unknown priority %q", *f.Priority)
	}
	f.Search = strings.TrimSpace(f.Search)
	return s.leads.List(ctx, f)
}

// UpdateStatus records a staff action on the lead. Moving to contacted stamps
// last_contact_at.
func (s *LeadService) UpdateStatus(ctx context.Context, id string, status model.LeadStatus) (*model.Lead, error) {
	if !status.Valid() {
		return nil, invalid("unknown status %q", status)
	}

	now := s.now()
	var contactedAt *time.Time
	if status == model.LeadStatusContacted {
		contactedAt = &now
	}
	if err := s.leads.UpdateStatus(ctx, id, status, contactedAt, now); err != nil {
		return nil, mapRepoErr(err)
	}

	logger.Info("lead status updated", "lead_id", id, "status", string(status))
	return s.Get(ctx, id)
}

// Rescore recomputes score and priority from the stored form fields. It is
// the only path that changes them after creation.
func (s *LeadService) Rescore(ctx context.Context, id string) (*model.Lead, error) {
	l, err := s.leads.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	in := l.Input()
	score, priority := lead.Score(in), lead.Priority(in)
	if score == l.Score && priority == l.Priority {
		return l, nil
	}

	now := s.now()
	if err := s.leads.UpdateScore(ctx, id, score, priority, now); err != nil {
		return nil, mapRepoErr(err)
	}
	logger.Info("lead rescored", "lead_id", id, "old_score", l.Score, "score", score, "priority", string(priority))

	l.Score, l.Priority, l.UpdatedAt = score, priority, now
	return l, nil
}

package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/thammystudio/studio-crm/internal/lead"
	"github.com/thammystudio/studio-crm/internal/model"
	"github.com/thammystudio/studio-crm/internal/reminder"
	"github.com/thammystudio/studio-crm/internal/sanitize"
	"github.com/thammystudio/studio-crm/pkg/logger"
	"github.com/thammystudio/studio-crm/pkg/prom"
)

// MaxSnoozeHours caps a single snooze at thirty days.
const MaxSnoozeHours = 720

type ReminderRepository interface {
	CreateBatch(ctx context.Context, reminders []model.Reminder) error
	GetByID(ctx context.Context, id string) (model.Reminder, error)
	List(ctx context.Context, f model.ReminderFilter) ([]model.Reminder, int64, error)
	ListOpen(ctx context.Context) ([]model.Reminder, error)
	SaveTransition(ctx context.Context, rem model.Reminder, from model.ReminderStatus) error
}

type LeadReader interface {
	GetByID(ctx context.Context, id string) (*model.Lead, error)
}

type ReminderService struct {
	reminders ReminderRepository
	leads     LeadReader
	messages  MessageCreator
	now       func() time.Time
}

func NewReminderService(reminders ReminderRepository, leads LeadReader, messages MessageCreator) *ReminderService {
	return &ReminderService{
		reminders: reminders,
		leads:     leads,
		messages:  messages,
		now:       time.Now,
	}
}

func (s *ReminderService) List(ctx context.Context, f model.ReminderFilter) ([]model.Reminder, int64, error) {
	for _, st := range f.Statuses {
		if !st.Valid() {
			return nil, 0, invalid("unknown reminder status %q", st)
		}
	}
	for _, t := range f.Types {
		if !t.Valid() {
			return nil, 0, invalid("unknown reminder type %q", t)
		}
	}
	return s.reminders.List(ctx, f)
}

// Dashboard loads the open reminders and decorates them for the console.
// Items are ordered by when they next need attention.
func (s *ReminderService) Dashboard(ctx context.Context, hours int) (*model.ReminderDashboard, error) {
	if hours <= 0 {
		return nil, invalid("hours must be positive")
	}

	open, err := s.reminders.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	d := &model.ReminderDashboard{
		Summary:      reminder.Summarize(open, hours, now),
		WindowHours:  hours,
		OverdueItems: make([]*model.ReminderView, 0),
		Items:        make([]*model.ReminderView, 0, len(open)),
	}
	for _, r := range reminder.OverdueList(open, now) {
		d.OverdueItems = append(d.OverdueItems, view(r, now))
	}
	for _, r := range open {
		d.Items = append(d.Items, view(r, now))
	}
	slices.SortStableFunc(d.Items, func(a, b *model.ReminderView) int {
		return a.DueAt.Compare(b.DueAt)
	})
	return d, nil
}

func view(r model.Reminder, now time.Time) *model.ReminderView {
	due := reminder.EffectiveDueAt(r)
	v := &model.ReminderView{
		Reminder:       r,
		Urgency:        reminder.Urgency(r, now),
		Overdue:        reminder.IsOverdue(r, now),
		DueAt:          due,
		RelativeTime:   reminder.FormatRelativeTime(due, now),
		FormattedPhone: lead.FormatPhone(r.CustomerPhone),
		TelURL:         lead.TelURL(r.CustomerPhone),
	}
	if tpl, ok := reminder.Template(r.Type); ok {
		v.Title = tpl.Title
	}

	var text string
	if tpl, ok := reminder.MessageTemplate(r.Type); ok {
		text = reminder.Render(tpl, map[string]string{"name": r.CustomerName})
	}
	v.ZaloURL = lead.ZaloURL(r.CustomerPhone, text)
	v.SMSURL = lead.SMSURL(r.CustomerPhone, text)
	return v
}

// Create schedules an ad-hoc reminder for a lead. Missing customer details
// are copied from the lead, and a missing time defaults to the type's interval.
func (s *ReminderService) Create(ctx context.Context, req model.ReminderCreateRequest) (model.Reminder, error) {
	if req.CustomerID == "" {
		return model.Reminder{}, invalid("customer_id is required")
	}
	if !req.Type.Valid() {
		return model.Reminder{}, invalid("unknown reminder type %q", req.Type)
	}

	if req.CustomerName == "" || req.CustomerPhone == "" {
		l, err := s.leads.GetByID(ctx, req.CustomerID)
		if err != nil {
			return model.Reminder{}, mapRepoErr(err)
		}
		if req.CustomerName == "" {
			req.CustomerName = l.Name
		}
		if req.CustomerPhone == "" {
			req.CustomerPhone = l.Phone
		}
	}

	now := s.now()
	scheduledAt := reminder.NextFollowUp(req.Type, now)
	if req.ScheduledAt != nil {
		scheduledAt = *req.ScheduledAt
	}

	// staff notes come from the console's rich-text editor
	notes := strings.TrimSpace(sanitize.HTML(req.Notes))
	r := reminder.New(req.CustomerID, req.CustomerName, req.CustomerPhone, req.Type, scheduledAt, notes, now)
	if err := s.reminders.CreateBatch(ctx, []model.Reminder{r}); err != nil {
		return model.Reminder{}, fmt.Errorf("create reminder: %w", err)
	}

	logger.Info("reminder created", "reminder_id", r.ID, "customer_id", r.CustomerID, "type", string(r.Type))
	return r, nil
}

func (s *ReminderService) Complete(ctx context.Context, id string) (model.Reminder, error) {
	return s.transition(ctx, id, model.ReminderStatusCompleted, func(r model.Reminder, now time.Time) model.Reminder {
		return reminder.Complete(r, now)
	})
}

// Snooze defers a reminder. Zero hours means DefaultSnoozeHours.
func (s *ReminderService) Snooze(ctx context.Context, id string, hours int) (model.Reminder, error) {
	if hours == 0 {
		hours = reminder.DefaultSnoozeHours
	}
	if hours < 0 || hours > MaxSnoozeHours {
		return model.Reminder{}, invalid("hours must be between 1 and %d", MaxSnoozeHours)
	}
	return s.transition(ctx, id, model.ReminderStatusSnoozed, func(r model.Reminder, now time.Time) model.Reminder {
		return reminder.Snooze(r, hours, now)
	})
}

func (s *ReminderService) Cancel(ctx context.Context, id string) (model.Reminder, error) {
	return s.transition(ctx, id, model.ReminderStatusCancelled, func(r model.Reminder, _ time.Time) model.Reminder {
		return reminder.Cancel(r)
	})
}

func (s *ReminderService) transition(ctx context.Context, id string, to model.ReminderStatus, apply func(model.Reminder, time.Time) model.Reminder) (model.Reminder, error) {
	r, err := s.reminders.GetByID(ctx, id)
	if err != nil {
		return model.Reminder{}, mapRepoErr(err)
	}
	if !reminder.CanTransition(r.Status, to) {
		return model.Reminder{}, fmt.Errorf("%w: %s is %s", ErrReminderClosed, id, r.Status)
	}

	next := apply(r, s.now())
	if err := s.reminders.SaveTransition(ctx, next, r.Status); err != nil {
		return model.Reminder{}, mapRepoErr(err)
	}

	prom.IncReminderTransition(string(to))
	logger.Info("reminder transitioned", "reminder_id", id, "from", string(r.Status), "to", string(to))
	return next, nil
}

// SendMessage renders the customer template of the reminder's type and queues
// it. vars fill the template placeholders; name defaults to the customer name.
func (s *ReminderService) SendMessage(ctx context.Context, id string, channel model.Channel, vars map[string]string) (*model.Message, error) {
	if channel == "" {
		channel = model.ChannelSMS
	}
	if channel != model.ChannelSMS && channel != model.ChannelZalo {
		return nil, invalid("unknown channel %q", channel)
	}

	r, err := s.reminders.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if reminder.IsClosed(r) {
		return nil, fmt.Errorf("%w: %s is %s", ErrReminderClosed, id, r.Status)
	}

	tpl, ok := reminder.MessageTemplate(r.Type)
	if !ok {
		return nil, invalid("no customer message for reminder type %q", r.Type)
	}

	values := map[string]string{"name": r.CustomerName}
	for k, v := range vars {
		values[k] = sanitize.Text(v)
	}

	return s.messages.Create(ctx, model.MessageCreateRequest{
		ReminderID: &r.ID,
		CustomerID: r.CustomerID,
		Mobile:     r.CustomerPhone,
		Channel:    channel,
		Template:   r.Type,
		Content:    reminder.Render(tpl, values),
	})
}

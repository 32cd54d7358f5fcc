package handlers

import (
	"context"
	"time"

	"github.com/thammystudio/studio-crm/internal/model"
	xhttp "github.com/thammystudio/studio-crm/pkg/http"
)

type ReminderService interface {
	List(ctx context.Context, f model.ReminderFilter) ([]model.Reminder, int64, error)
	Dashboard(ctx context.Context, hours int) (*model.ReminderDashboard, error)
	Create(ctx context.Context, req model.ReminderCreateRequest) (model.Reminder, error)
	Complete(ctx context.Context, id string) (model.Reminder, error)
	Snooze(ctx context.Context, id string, hours int) (model.Reminder, error)
	Cancel(ctx context.Context, id string) (model.Reminder, error)
	SendMessage(ctx context.Context, id string, channel model.Channel, vars map[string]string) (*model.Message, error)
}

type ReminderHandler struct {
	svc         ReminderService
	windowHours int
}

func RegisterReminderRoutes(g *xhttp.Group, h *ReminderHandler) {
	g.GET("/reminders", h.ListReminders)
	g.POST("/reminders", h.CreateReminder)
	g.GET("/reminders/dashboard", h.Dashboard)
	g.POST("/reminders/{id}/complete", h.CompleteReminder)
	g.POST("/reminders/{id}/snooze", h.SnoozeReminder)
	g.POST("/reminders/{id}/cancel", h.CancelReminder)
	g.POST("/reminders/{id}/message", h.SendReminderMessage)
	g.GET("/leads/{id}/reminders", h.ListLeadReminders)
}

// NewReminderHandler uses windowHours as the dashboard's upcoming window when
// the request does not pass one.
func NewReminderHandler(svc ReminderService, windowHours int) *ReminderHandler {
	if windowHours <= 0 {
		windowHours = 24
	}
	return &ReminderHandler{svc: svc, windowHours: windowHours}
}

type createReminderRequest struct {
	CustomerID    string     `json:"customer_id" validate:"required"`
	CustomerName  string     `json:"customer_name" validate:"max=120"`
	CustomerPhone string     `json:"customer_phone" validate:"max=20"`
	Type          string     `json:"type" validate:"required,oneof=initial_contact follow_up appointment_reminder post_service birthday promotion re_engagement"`
	ScheduledAt   *time.Time `json:"scheduled_at"`
	Notes         string     `json:"notes" validate:"max=2000"`
}

type snoozeRequest struct {
	Hours int `json:"hours" validate:"omitempty,min=1,max=720"`
}

type sendMessageRequest struct {
	Channel string            `json:"channel" validate:"omitempty,oneof=sms zalo"`
	Vars    map[string]string `json:"vars" validate:"omitempty,dive,keys,oneof=name time promotion date,endkeys,max=200"`
}

// reminderFilter reads the list query. Malformed values are rejected rather
// than dropped, since dropping one would widen the result.
func (h *ReminderHandler) reminderFilter(ctx *xhttp.RequestCtx) (model.ReminderFilter, error) {
	var f model.ReminderFilter
	if v := query(ctx, "customer_id"); v != "" {
		f.CustomerID = &v
	}
	for _, s := range queryList(ctx, "status") {
		f.Statuses = append(f.Statuses, model.ReminderStatus(s))
	}
	for _, t := range queryList(ctx, "type") {
		f.Types = append(f.Types, model.ReminderType(t))
	}

	var err error
	if f.DueFrom, f.DueTo, err = queryRange(ctx, "due_from", "due_to"); err != nil {
		return f, err
	}
	if f.Limit, f.Offset, f.Desc, err = page(ctx); err != nil {
		return f, err
	}
	return f, nil
}

func (h *ReminderHandler) ListReminders(ctx *xhttp.RequestCtx) {
	f, err := h.reminderFilter(ctx)
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	h.list(ctx, f)
}

func (h *ReminderHandler) ListLeadReminders(ctx *xhttp.RequestCtx) {
	f, err := h.reminderFilter(ctx)
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	id := pathParam(ctx, "id")
	f.CustomerID = &id
	h.list(ctx, f)
}

func (h *ReminderHandler) list(ctx *xhttp.RequestCtx, f model.ReminderFilter) {
	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listResponse[model.Reminder]{Items: items, Total: total})
}

func (h *ReminderHandler) Dashboard(ctx *xhttp.RequestCtx) {
	hours := h.windowHours
	if query(ctx, "hours") != "" {
		n, err := queryInt(ctx, "hours")
		if err != nil {
			writeError(ctx, xhttp.StatusBadRequest, err.Error())
			return
		}
		hours = n
	}

	d, err := h.svc.Dashboard(ctx, hours)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, d)
}

func (h *ReminderHandler) CreateReminder(ctx *xhttp.RequestCtx) {
	var req createReminderRequest
	if !bind(ctx, &req) {
		return
	}

	r, err := h.svc.Create(ctx, model.ReminderCreateRequest{
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Type:          model.ReminderType(req.Type),
		ScheduledAt:   req.ScheduledAt,
		Notes:         req.Notes,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, r)
}

func (h *ReminderHandler) CompleteReminder(ctx *xhttp.RequestCtx) {
	h.respond(ctx)(h.svc.Complete(ctx, pathParam(ctx, "id")))
}

func (h *ReminderHandler) CancelReminder(ctx *xhttp.RequestCtx) {
	h.respond(ctx)(h.svc.Cancel(ctx, pathParam(ctx, "id")))
}

func (h *ReminderHandler) SnoozeReminder(ctx *xhttp.RequestCtx) {
	var req snoozeRequest
	if !bind(ctx, &req) {
		return
	}
	h.respond(ctx)(h.svc.Snooze(ctx, pathParam(ctx, "id"), req.Hours))
}

func (h *ReminderHandler) respond(ctx *xhttp.RequestCtx) func(model.Reminder, error) {
	return func(r model.Reminder, err error) {
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		writeJSON(ctx, xhttp.StatusOK, r)
	}
}

func (h *ReminderHandler) SendReminderMessage(ctx *xhttp.RequestCtx) {
	var req sendMessageRequest
	if !bind(ctx, &req) {
		return
	}

	msg, err := h.svc.SendMessage(ctx, pathParam(ctx, "id"), model.Channel(req.Channel), req.Vars)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusAccepted, msg)
}

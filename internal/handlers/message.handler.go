package handlers

import (
	"context"

	"github.com/thammystudio/studio-crm/internal/model"
	xhttp "github.com/thammystudio/studio-crm/pkg/http"
)

type MessageService interface {
	List(ctx context.Context, f model.MessageFilter) ([]*model.Message, int64, error)
}

type MessageHandler struct {
	svc MessageService
}

func RegisterMessageRoutes(g *xhttp.Group, h *MessageHandler) {
	g.GET("/messages", h.ListMessages)
}

func NewMessageHandler(svc MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// ListMessages lists outbound messages; with_reports=true embeds their
// delivery reports.
func (h *MessageHandler) ListMessages(ctx *xhttp.RequestCtx) {
	var f model.MessageFilter
	if v := query(ctx, "customer_id"); v != "" {
		f.CustomerID = &v
	}
	if v := query(ctx, "reminder_id"); v != "" {
		f.ReminderID = &v
	}
	if v := query(ctx, "mobile"); v != "" {
		f.Mobile = &v
	}

	var err error
	if f.From, f.To, err = queryRange(ctx, "from", "to"); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	if f.WithReports, err = queryBool(ctx, "with_reports"); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	if f.Limit, f.Offset, f.Desc, err = page(ctx); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listResponse[*model.Message]{Items: items, Total: total})
}

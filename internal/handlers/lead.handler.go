package handlers

import (
	"context"

	"github.com/thammystudio/studio-crm/internal/lead"
	"github.com/thammystudio/studio-crm/internal/model"
	xhttp "github.com/thammystudio/studio-crm/pkg/http"
)

type LeadService interface {
	Submit(ctx context.Context, in model.LeadInput) (*model.LeadSubmission, error)
	Get(ctx context.Context, id string) (*model.Lead, error)
	List(ctx context.Context, f model.LeadFilter) ([]*model.Lead, int64, error)
	UpdateStatus(ctx context.Context, id string, status model.LeadStatus) (*model.Lead, error)
	Rescore(ctx context.Context, id string) (*model.Lead, error)
}

type LeadHandler struct {
	svc LeadService
}

func RegisterLeadRoutes(g *xhttp.Group, h *LeadHandler) {
	g.POST("/leads", h.SubmitLead)
	g.GET("/leads", h.ListLeads)
	g.GET("/leads/{id}", h.GetLead)
	g.PATCH("/leads/{id}/status", h.UpdateLeadStatus)
	g.POST("/leads/{id}/rescore", h.RescoreLead)
	g.GET("/services", h.ListServices)
}

func NewLeadHandler(svc LeadService) *LeadHandler {
	return &LeadHandler{svc: svc}
}

type submitLeadRequest struct {
	Name            string `json:"name" validate:"required,max=120"`
	Phone           string `json:"phone" validate:"required,max=20"`
	Email           string `json:"email" validate:"omitempty,email,max=254"`
	ServiceInterest string `json:"service_interest" validate:"max=50"`
	Source          string `json:"source" validate:"omitempty,oneof=website landing_page popup phone zalo facebook referral walk_in"`
	Notes           string `json:"notes" validate:"max=2000"`
}

type updateLeadStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted qualified converted lost"`
}

func (h *LeadHandler) SubmitLead(ctx *xhttp.RequestCtx) {
	var req submitLeadRequest
	if !bind(ctx, &req) {
		return
	}

	res, err := h.svc.Submit(ctx, model.LeadInput{
		Name:            req.Name,
		Phone:           req.Phone,
		Email:           req.Email,
		ServiceInterest: req.ServiceInterest,
		Source:          model.LeadSource(req.Source),
		Notes:           req.Notes,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, res)
}

func (h *LeadHandler) ListLeads(ctx *xhttp.RequestCtx) {
	var f model.LeadFilter
	for _, s := range queryList(ctx, "status") {
		f.Statuses = append(f.Statuses, model.LeadStatus(s))
	}
	if v := query(ctx, "source"); v != "" {
		src := model.LeadSource(v)
		f.Source = &src
	}
	if v := query(ctx, "priority"); v != "" {
		p := model.LeadPriority(v)
		f.Priority = &p
	}
	f.Search = query(ctx, "q")

	var err error
	if f.From, f.To, err = queryRange(ctx, "from", "to"); err != nil {
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
	writeJSON(ctx, xhttp.StatusOK, listResponse[*model.Lead]{Items: items, Total: total})
}

func (h *LeadHandler) GetLead(ctx *xhttp.RequestCtx) {
	l, err := h.svc.Get(ctx, pathParam(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, l)
}

func (h *LeadHandler) UpdateLeadStatus(ctx *xhttp.RequestCtx) {
	var req updateLeadStatusRequest
	if !bind(ctx, &req) {
		return
	}

	l, err := h.svc.UpdateStatus(ctx, pathParam(ctx, "id"), model.LeadStatus(req.Status))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, l)
}

func (h *LeadHandler) RescoreLead(ctx *xhttp.RequestCtx) {
	l, err := h.svc.Rescore(ctx, pathParam(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, l)
}

// ListServices returns the service catalogue offered by the contact form.
func (h *LeadHandler) ListServices(ctx *xhttp.RequestCtx) {
	writeJSON(ctx, xhttp.StatusOK, lead.ServiceOptions())
}

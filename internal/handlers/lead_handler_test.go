package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/thammystudio/studio-crm/internal/model"
	"github.com/thammystudio/studio-crm/internal/services"
)

func TestLeadHandler_SubmitLead(t *testing.T) {
	t.Run("creates lead", func(t *testing.T) {
		svc := new(MockLeadService)
		h := NewLeadHandler(svc)

		svc.On("Submit", mock.Anything, model.LeadInput{
			Name:            "Nguyễn Thị Lan",
			Phone:           "0901234567",
			Email:           "lan@example.com",
			ServiceInterest: "tri-nam",
			Source:          model.LeadSourceLandingPage,
		}).Return(&model.LeadSubmission{
			Lead:      &model.Lead{ID: "lead-1", Score: 75, Priority: model.LeadPriorityHigh},
			Reminders: []model.Reminder{{ID: "r-1"}, {ID: "r-2"}, {ID: "r-3"}},
		}, nil)

		ctx := setupTestContext("POST", "/api/v1/leads", []byte(`{"name":"Nguyễn Thị Lan","phone":"0901234567","email":"lan@example.com","service_interest":"tri-nam","source":"landing_page"}`))
		h.SubmitLead(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())
		res := decode[model.LeadSubmission](t, ctx)
		assert.Equal(t, "lead-1", res.Lead.ID)
		assert.Len(t, res.Reminders, 3)
		svc.AssertExpectations(t)
	})

	t.Run("rejects invalid payloads", func(t *testing.T) {
		svc := new(MockLeadService)
		h := NewLeadHandler(svc)

		for _, body := range []string{
			`{not json`,
			`{"phone":"0901234567"}`,
			`{"name":"Lan","phone":"0901234567","email":"not-an-email"}`,
			`{"name":"Lan","phone":"0901234567","source":"tiktok"}`,
		} {
			ctx := setupTestContext("POST", "/api/v1/leads", []byte(body))
			h.SubmitLead(ctx)
			assert.Equal(t, 400, ctx.Response.StatusCode(), body)
			assert.Contains(t, string(ctx.Response.Body()), `"error"`)
		}
		svc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})

	t.Run("maps service validation error", func(t *testing.T) {
		svc := new(MockLeadService)
		h := NewLeadHandler(svc)
		svc.On("Submit", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: name is required", services.ErrInvalidInput))

		ctx := setupTestContext("POST", "/api/v1/leads", []byte(`{"name":"<p></p>","phone":"0901234567"}`))
		h.SubmitLead(ctx)
		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("hides internal errors", func(t *testing.T) {
		svc := new(MockLeadService)
		h := NewLeadHandler(svc)
		svc.On("Submit", mock.Anything, mock.Anything).Return(nil, errors.New("pq: connection reset"))

		ctx := setupTestContext("POST", "/api/v1/leads", []byte(`{"name":"Lan","phone":"0901234567"}`))
		h.SubmitLead(ctx)
		assert.Equal(t, 500, ctx.Response.StatusCode())
		assert.NotContains(t, string(ctx.Response.Body()), "pq:")
	})
}

func TestLeadHandler_ListLeads(t *testing.T) {
	svc := new(MockLeadService)
	h := NewLeadHandler(svc)

	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	svc.On("List", mock.Anything, mock.MatchedBy(func(f model.LeadFilter) bool {
		return len(f.Statuses) == 2 &&
			f.Statuses[1] == model.LeadStatusContacted &&
			*f.Source == model.LeadSourceZalo &&
			*f.Priority == model.LeadPriorityHigh &&
			f.Search == "lan" &&
			f.From.Equal(from) &&
			f.To == nil &&
			f.Limit == 20 && f.Offset == 40 && f.Desc
	})).Return([]*model.Lead{{ID: "lead-1"}}, int64(41), nil)

	ctx := setupTestContext("GET", "/api/v1/leads?status=new,contacted&source=zalo&priority=high&q=lan&from=2026-04-01&limit=20&offset=40&order=desc", nil)
	h.ListLeads(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())
	res := decode[listResponse[*model.Lead]](t, ctx)
	assert.Equal(t, int64(41), res.Total)
	assert.Len(t, res.Items, 1)
}

func TestLeadHandler_ListLeads_BadQuery(t *testing.T) {
	svc := new(MockLeadService)
	h := NewLeadHandler(svc)

	for _, q := range []string{"from=hôm-qua", "to=2026-13-01", "limit=many", "order=random"} {
		ctx := setupTestContext("GET", "/api/v1/leads?"+q, nil)
		h.ListLeads(ctx)
		assert.Equal(t, 400, ctx.Response.StatusCode(), q)
	}
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestLeadHandler_ListServices(t *testing.T) {
	h := NewLeadHandler(new(MockLeadService))

	ctx := setupTestContext("GET", "/api/v1/services", nil)
	h.ListServices(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())
	var opts []struct{ Slug, Name string }
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &opts))
	require.Len(t, opts, 8)
	assert.Equal(t, "tri-nam", opts[0].Slug)
	assert.Equal(t, "Trị nám da", opts[0].Name)
	assert.Equal(t, "khac", opts[7].Slug)
}

func TestLeadHandler_GetLead_NotFound(t *testing.T) {
	svc := new(MockLeadService)
	h := NewLeadHandler(svc)
	svc.On("Get", mock.Anything, "missing").Return(nil, fmt.Errorf("%w: lead not found", services.ErrNotFound))

	ctx := withID(setupTestContext("GET", "/api/v1/leads/missing", nil), "missing")
	h.GetLead(ctx)
	assert.Equal(t, 404, ctx.Response.StatusCode())
}

func TestLeadHandler_UpdateLeadStatus(t *testing.T) {
	svc := new(MockLeadService)
	h := NewLeadHandler(svc)
	svc.On("UpdateStatus", mock.Anything, "lead-1", model.LeadStatusQualified).
		Return(&model.Lead{ID: "lead-1", Status: model.LeadStatusQualified}, nil)

	ctx := withID(setupTestContext("PATCH", "/api/v1/leads/lead-1/status", []byte(`{"status":"qualified"}`)), "lead-1")
	h.UpdateLeadStatus(ctx)
	assert.Equal(t, 200, ctx.Response.StatusCode())

	ctx = withID(setupTestContext("PATCH", "/api/v1/leads/lead-1/status", []byte(`{"status":"archived"}`)), "lead-1")
	h.UpdateLeadStatus(ctx)
	assert.Equal(t, 400, ctx.Response.StatusCode())
}

func TestLeadHandler_RescoreLead(t *testing.T) {
	svc := new(MockLeadService)
	h := NewLeadHandler(svc)
	svc.On("Rescore", mock.Anything, "lead-1").Return(&model.Lead{ID: "lead-1", Score: 60}, nil)

	ctx := withID(setupTestContext("POST", "/api/v1/leads/lead-1/rescore", nil), "lead-1")
	h.RescoreLead(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())
	assert.Equal(t, 60, decode[model.Lead](t, ctx).Score)
}

package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/thammystudio/studio-crm/internal/model"
	xhttp "github.com/thammystudio/studio-crm/pkg/http"
)

type MockLeadService struct {
	mock.Mock
}

func (m *MockLeadService) Submit(ctx context.Context, in model.LeadInput) (*model.LeadSubmission, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LeadSubmission), args.Error(1)
}

func (m *MockLeadService) Get(ctx context.Context, id string) (*model.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

func (m *MockLeadService) List(ctx context.Context, f model.LeadFilter) ([]*model.Lead, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Lead), args.Get(1).(int64), args.Error(2)
}

func (m *MockLeadService) UpdateStatus(ctx context.Context, id string, status model.LeadStatus) (*model.Lead, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

func (m *MockLeadService) Rescore(ctx context.Context, id string) (*model.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

type MockReminderService struct {
	mock.Mock
}

func (m *MockReminderService) List(ctx context.Context, f model.ReminderFilter) ([]model.Reminder, int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]model.Reminder), args.Get(1).(int64), args.Error(2)
}

func (m *MockReminderService) Dashboard(ctx context.Context, hours int) (*model.ReminderDashboard, error) {
	args := m.Called(ctx, hours)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReminderDashboard), args.Error(1)
}

func (m *MockReminderService) Create(ctx context.Context, req model.ReminderCreateRequest) (model.Reminder, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.Reminder), args.Error(1)
}

func (m *MockReminderService) Complete(ctx context.Context, id string) (model.Reminder, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Reminder), args.Error(1)
}

func (m *MockReminderService) Snooze(ctx context.Context, id string, hours int) (model.Reminder, error) {
	args := m.Called(ctx, id, hours)
	return args.Get(0).(model.Reminder), args.Error(1)
}

func (m *MockReminderService) Cancel(ctx context.Context, id string) (model.Reminder, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Reminder), args.Error(1)
}

func (m *MockReminderService) SendMessage(ctx context.Context, id string, channel model.Channel, vars map[string]string) (*model.Message, error) {
	args := m.Called(ctx, id, channel, vars)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Message), args.Error(1)
}

type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) List(ctx context.Context, f model.MessageFilter) ([]*model.Message, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Message), args.Get(1).(int64), args.Error(2)
}

type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) Check(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]string), args.Error(1)
}

func setupTestContext(method, path string, body []byte) *xhttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(path)
	if body != nil {
		req.SetBody(body)
	}

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	return ctx
}

func withID(ctx *xhttp.RequestCtx, id string) *xhttp.RequestCtx {
	ctx.SetUserValue("id", id)
	return ctx
}

func decode[T any](t *testing.T, ctx *xhttp.RequestCtx) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &v))
	return v
}

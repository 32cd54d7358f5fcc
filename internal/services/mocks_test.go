package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/thammystudio/studio-crm/internal/model"
)

var baseTime = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return baseTime }

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, l *model.Lead) (*model.Lead, error) {
	args := m.Called(ctx, l)
	if fn, ok := args.Get(0).(func(context.Context, *model.Lead) *model.Lead); ok {
		return fn(ctx, l), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

func (m *MockLeadRepository) GetByID(ctx context.Context, id string) (*model.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

func (m *MockLeadRepository) List(ctx context.Context, f model.LeadFilter) ([]*model.Lead, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Lead), args.Get(1).(int64), args.Error(2)
}

func (m *MockLeadRepository) UpdateStatus(ctx context.Context, id string, status model.LeadStatus, contactedAt *time.Time, now time.Time) error {
	return m.Called(ctx, id, status, contactedAt, now).Error(0)
}

func (m *MockLeadRepository) UpdateScore(ctx context.Context, id string, score int, priority model.LeadPriority, now time.Time) error {
	return m.Called(ctx, id, score, priority, now).Error(0)
}

func (m *MockLeadRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockReminderRepository struct {
	mock.Mock
}

func (m *MockReminderRepository) CreateBatch(ctx context.Context, reminders []model.Reminder) error {
	return m.Called(ctx, reminders).Error(0)
}

func (m *MockReminderRepository) GetByID(ctx context.Context, id string) (model.Reminder, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Reminder), args.Error(1)
}

func (m *MockReminderRepository) List(ctx context.Context, f model.ReminderFilter) ([]model.Reminder, int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]model.Reminder), args.Get(1).(int64), args.Error(2)
}

func (m *MockReminderRepository) ListOpen(ctx context.Context) ([]model.Reminder, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Reminder), args.Error(1)
}

func (m *MockReminderRepository) SaveTransition(ctx context.Context, rem model.Reminder, from model.ReminderStatus) error {
	return m.Called(ctx, rem, from).Error(0)
}

type MockMessageCreator struct {
	mock.Mock
}

func (m *MockMessageCreator) Create(ctx context.Context, p model.MessageCreateRequest) (*model.Message, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Message), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyNewLead(ctx context.Context, l *model.Lead) error {
	return m.Called(ctx, l).Error(0)
}

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, msg *model.Message) (*model.Message, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Message), args.Error(1)
}

func (m *MockMessageRepository) List(ctx context.Context, f model.MessageFilter) ([]*model.Message, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Message), args.Get(1).(int64), args.Error(2)
}

func (m *MockMessageRepository) UpdateStatus(ctx context.Context, id string, status model.MessageStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error) {
	args := m.Called(ctx, data, metadata)
	return args.String(0), args.Error(1)
}

package e2e

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	gateway "github.com/thammystudio/studio-crm/internal/gateways"
	"github.com/thammystudio/studio-crm/internal/handlers"
	"github.com/thammystudio/studio-crm/internal/model"
	"github.com/thammystudio/studio-crm/internal/processor"
	"github.com/thammystudio/studio-crm/internal/queue"
	"github.com/thammystudio/studio-crm/internal/repository"
	"github.com/thammystudio/studio-crm/internal/scheduler"
	"github.com/thammystudio/studio-crm/internal/services"
	xhttp "github.com/thammystudio/studio-crm/pkg/http"
	"github.com/thammystudio/studio-crm/pkg/pg"
	"github.com/thammystudio/studio-crm/pkg/redis"
	"github.com/thammystudio/studio-crm/test/fixtures"
	"github.com/thammystudio/studio-crm/test/helpers"
)

type fakeOperator struct {
	mu   sync.Mutex
	sent map[string]int
}

func (f *fakeOperator) SendSMS(_ context.Context, req *gateway.SendRequest) (*gateway.SendResponse, error) {
	f.mu.Lock()
	f.sent[req.MessageID]++
	f.mu.Unlock()

	now := time.Now()
	return &gateway.SendResponse{MessageID: req.MessageID, Status: gateway.StatusDelivered, DeliveredAt: &now, ProcessedAt: now}, nil
}

func (f *fakeOperator) count(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[id]
}

type testEnv struct {
	db        *pg.DB
	redis     redis.RedisAdapter
	router    *xhttp.Router
	queues    []queue.QueueConfig
	reminders *repository.ReminderRepository
	messages  *repository.MessageRepository
	reports   *repository.DeliveryReportRepository
	operator  *fakeOperator
}

func setupEnv(t *testing.T) *testEnv {
	db := helpers.SetupTestDB(t)
	_, adapter := helpers.SetupTestRedis(t)

	queueCfg := func(name string) queue.QueueConfig {
		return queue.QueueConfig{
			Name:              name,
			ConsumerGroup:     "dispatchers",
			ConsumerName:      "e2e",
			MaxRetries:        3,
			VisibilityTimeout: 2 * time.Second,
			PollInterval:      20 * time.Millisecond,
			BatchSize:         10,
			MaxLen:            1000,
			EnableDLQ:         true,
		}
	}
	env := &testEnv{
		db:        db,
		redis:     adapter,
		queues:    []queue.QueueConfig{queueCfg("messages:express"), queueCfg("messages")},
		reminders: repository.NewReminderRepository(db),
		messages:  repository.NewMessageRepository(db),
		reports:   repository.NewDeliveryReportRepository(db),
		operator:  &fakeOperator{sent: make(map[string]int)},
	}

	express, err := queue.NewQueue(adapter, env.queues[0])
	require.NoError(t, err)
	normal, err := queue.NewQueue(adapter, env.queues[1])
	require.NoError(t, err)

	leads := repository.NewLeadRepository(db)
	messageService := services.NewMessageService(env.messages, normal, express)
	leadService := services.NewLeadService(leads, env.reminders, messageService, nil)
	reminderService := services.NewReminderService(env.reminders, leads, messageService)

	env.router = xhttp.CreateDefaultRouter()
	g := env.router.Group("/api/v1")
	handlers.RegisterLeadRoutes(g, handlers.NewLeadHandler(leadService))
	handlers.RegisterReminderRoutes(g, handlers.NewReminderHandler(reminderService, 24))
	handlers.RegisterMessageRoutes(g, handlers.NewMessageHandler(messageService))
	return env
}

func (env *testEnv) call(t *testing.T, method, uri string, body any) *fasthttp.RequestCtx {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	ctx := helpers.NewRequestCtx(method, uri, raw)
	env.router.Handler(ctx)
	return ctx
}

func decode[T any](t *testing.T, ctx *fasthttp.RequestCtx) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &v), string(ctx.Response.Body()))
	return v
}

func (env *testEnv) startDispatcher(t *testing.T) *processor.ProcessorService {
	svc, err := processor.NewProcessorService(env.redis, processor.ServiceConfig{Queues: env.queues, Workers: 2})
	require.NoError(t, err)
	svc.RegisterProcessor(processor.NewSMSMessageProcessor(
		env.operator,
		env.reports,
		env.messages,
		processor.NewIdempotencyService(env.redis, processor.DefaultIdempotencyConfig()),
	))
	require.NoError(t, svc.Start())
	t.Cleanup(svc.Stop)
	return svc
}

func TestE2E_LeadSubmission(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	res := env.call(t, "POST", "/api/v1/leads", fixtures.HotLead)
	require.Equal(t, 201, res.Response.StatusCode(), string(res.Response.Body()))

	sub := decode[model.LeadSubmission](t, res)
	assert.Equal(t, 100, sub.Lead.Score)
	assert.Equal(t, model.LeadPriorityHigh, sub.Lead.Priority)
	assert.Equal(t, "lan.nguyen@example.com", sub.Lead.Email)
	assert.Empty(t, sub.Warnings)
	require.Len(t, sub.Reminders, 3)

	stored, total, err := env.reminders.List(ctx, model.ReminderFilter{CustomerID: &sub.Lead.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	for _, r := range stored {
		assert.Equal(t, model.ReminderStatusPending, r.Status)
		assert.Equal(t, sub.Lead.Name, r.CustomerName)
	}

	msgs, _, err := env.messages.List(ctx, model.MessageFilter{CustomerID: &sub.Lead.ID})
	require.NoError(t, err)
	require.Len(t, msgs, 1, "acknowledgement queued")
	assert.Equal(t, model.ReminderInitialContact, msgs[0].Template)
	assert.Equal(t, model.PriorityExpress, msgs[0].Priority)
	assert.Equal(t, "0901234567", msgs[0].Mobile)
	assert.Contains(t, msgs[0].Content, "Nguyễn Thị Lan")
}

func TestE2E_InvalidPhoneIsStoredButNotMessaged(t *testing.T) {
	env := setupEnv(t)

	res := env.call(t, "POST", "/api/v1/leads", fixtures.ColdLead)
	require.Equal(t, 201, res.Response.StatusCode())

	sub := decode[model.LeadSubmission](t, res)
	assert.Equal(t, model.LeadPriorityLow, sub.Lead.Priority)
	assert.NotEmpty(t, sub.Warnings)
	assert.Len(t, sub.Reminders, 3)

	msgs, _, err := env.messages.List(context.Background(), model.MessageFilter{CustomerID: &sub.Lead.ID})
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestE2E_MarkupIsStripped(t *testing.T) {
	env := setupEnv(t)

	res := env.call(t, "POST", "/api/v1/leads", fixtures.ScriptLead)
	require.Equal(t, 201, res.Response.StatusCode())

	sub := decode[model.LeadSubmission](t, res)
	assert.NotContains(t, sub.Lead.Name, "<script>")
	assert.NotContains(t, sub.Lead.Notes, "<img")
	assert.Contains(t, sub.Lead.Notes, "Gọi buổi tối")
}

func TestE2E_AcknowledgementIsDeliveredOnce(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	res := env.call(t, "POST", "/api/v1/leads", fixtures.WarmLead)
	require.Equal(t, 201, res.Response.StatusCode())
	sub := decode[model.LeadSubmission](t, res)

	env.startDispatcher(t)

	var msg *model.Message
	helpers.AssertEventually(t, 5*time.Second, func() bool {
		msgs, _, err := env.messages.List(ctx, model.MessageFilter{CustomerID: &sub.Lead.ID, WithReports: true})
		if err != nil || len(msgs) != 1 || msgs[0].Status != model.MessageStatusDelivered {
			return false
		}
		msg = msgs[0]
		return true
	}, "acknowledgement was not delivered")

	require.Len(t, msg.DeliveryReports, 1)
	assert.Equal(t, string(gateway.StatusDelivered), msg.DeliveryReports[0].Status)
	assert.NotNil(t, msg.DeliveryReports[0].DeliveredAt)
	assert.Equal(t, 1, env.operator.count(msg.ID))

	// the list endpoint embeds the report
	list := env.call(t, "GET", "/api/v1/messages?customer_id="+sub.Lead.ID+"&with_reports=true", nil)
	require.Equal(t, 200, list.Response.StatusCode())
	var body struct {
		Items []model.Message `json:"items"`
	}
	require.NoError(t, json.Unmarshal(list.Response.Body(), &body))
	require.Len(t, body.Items, 1)
	assert.Len(t, body.Items[0].DeliveryReports, 1)
}

func TestE2E_ReminderLifecycle(t *testing.T) {
	env := setupEnv(t)

	res := env.call(t, "POST", "/api/v1/leads", fixtures.WarmLead)
	require.Equal(t, 201, res.Response.StatusCode())
	sub := decode[model.LeadSubmission](t, res)

	first, second, third := sub.Reminders[0].ID, sub.Reminders[1].ID, sub.Reminders[2].ID

	res = env.call(t, "POST", "/api/v1/reminders/"+first+"/message", map[string]any{"channel": "zalo"})
	require.Equal(t, 202, res.Response.StatusCode(), string(res.Response.Body()))
	msg := decode[model.Message](t, res)
	assert.Equal(t, model.ChannelZalo, msg.Channel)
	require.NotNil(t, msg.ReminderID)
	assert.Equal(t, first, *msg.ReminderID)

	res = env.call(t, "POST", "/api/v1/reminders/"+first+"/complete", nil)
	require.Equal(t, 200, res.Response.StatusCode())
	done := decode[model.Reminder](t, res)
	assert.Equal(t, model.ReminderStatusCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)

	res = env.call(t, "POST", "/api/v1/reminders/"+first+"/snooze", nil)
	assert.Equal(t, 409, res.Response.StatusCode(), "completed reminders are closed")

	res = env.call(t, "POST", "/api/v1/reminders/"+second+"/snooze", map[string]int{"hours": 2})
	require.Equal(t, 200, res.Response.StatusCode())
	snoozed := decode[model.Reminder](t, res)
	assert.Equal(t, model.ReminderStatusSnoozed, snoozed.Status)
	assert.Equal(t, 1, snoozed.SnoozeCount)
	assert.Equal(t, sub.Reminders[1].ScheduledAt.Unix(), snoozed.ScheduledAt.Unix(), "snooze keeps scheduled_at")

	res = env.call(t, "POST", "/api/v1/reminders/"+third+"/message", nil)
	assert.Equal(t, 400, res.Response.StatusCode(), "re-engagement has no customer text")

	res = env.call(t, "POST", "/api/v1/reminders/"+third+"/cancel", nil)
	require.Equal(t, 200, res.Response.StatusCode())

	res = env.call(t, "GET", "/api/v1/leads/"+sub.Lead.ID+"/reminders?status=pending,snoozed", nil)
	require.Equal(t, 200, res.Response.StatusCode())
	var open struct {
		Items []model.Reminder `json:"items"`
		Total int64            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(res.Response.Body(), &open))
	assert.Equal(t, int64(1), open.Total)

	res = env.call(t, "GET", "/api/v1/reminders/dashboard?hours=720", nil)
	require.Equal(t, 200, res.Response.StatusCode())
	dash := decode[model.ReminderDashboard](t, res)
	assert.Equal(t, 720, dash.WindowHours)
	assert.Equal(t, 1, dash.Summary.ByStatus[model.ReminderStatusSnoozed])

	sweep, err := scheduler.NewReminderSweeper(env.reminders, env.redis, scheduler.SweepConfig{}).Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sweep.Open)
	assert.Zero(t, sweep.Overdue)
}

package processor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thammystudio/studio-crm/internal/queue"
)

type countingProcessor struct {
	calls atomic.Int32
	fail  bool
}

func (p *countingProcessor) GetType() string { return "counting" }

func (p *countingProcessor) Process(ctx context.Context, msg *queue.Message) error {
	p.calls.Add(1)
	if p.fail {
		return errors.New("boom")
	}
	return nil
}

func TestNewProcessorService_RequiresQueue(t *testing.T) {
	_, adapter := setupTestRedis(t)
	_, err := NewProcessorService(adapter, ServiceConfig{})
	assert.Error(t, err)
}

func TestProcessorService_StartRequiresProcessor(t *testing.T) {
	_, adapter := setupTestRedis(t)
	svc, err := NewProcessorService(adapter, ServiceConfig{Queues: []queue.QueueConfig{{Name: "q"}}})
	require.NoError(t, err)
	assert.Error(t, svc.Start())
}

func TestProcessorService_ConsumesAllQueues(t *testing.T) {
	_, adapter := setupTestRedis(t)
	cfg := ServiceConfig{
		Queues: []queue.QueueConfig{
			{Name: "messages", ConsumerGroup: "dispatchers", ConsumerName: "d", PollInterval: 10 * time.Millisecond},
			{Name: "messages:express", ConsumerGroup: "dispatchers", ConsumerName: "d", PollInterval: 10 * time.Millisecond},
		},
		ConsumersPerQueue: 2,
		Workers:           2,
	}
	svc, err := NewProcessorService(adapter, cfg)
	require.NoError(t, err)

	proc := &countingProcessor{}
	svc.RegisterProcessor(proc)
	require.NoError(t, svc.Start())
	defer svc.Stop()

	for _, qc := range cfg.Queues {
		q, err := queue.NewQueue(adapter, qc)
		require.NoError(t, err)
		_, err = q.Publish(context.Background(), []byte(`{}`), nil)
		require.NoError(t, err)
	}

	assert.Eventually(t, func() bool {
		return svc.Metrics().GetStats().TotalProcessed == 2
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(2), proc.calls.Load())
}

func TestServiceMetrics(t *testing.T) {
	m := NewServiceMetrics()
	m.RecordSuccess(10 * time.Millisecond)
	m.RecordSuccess(30 * time.Millisecond)
	m.RecordFailure()

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats.TotalProcessed)
	assert.Equal(t, int64(1), stats.TotalFailed)
	assert.Equal(t, 20*time.Millisecond, stats.AvgDuration)
}

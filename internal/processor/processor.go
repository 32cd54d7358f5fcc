package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/thammystudio/studio-crm/internal/queue"
	"github.com/thammystudio/studio-crm/pkg/logger"
	"github.com/thammystudio/studio-crm/pkg/redis"
	"github.com/thammystudio/studio-crm/pkg/worker"
)

const ProcessingTimeout = time.Second * 5
const HealthInterval = time.Second * 30
const ShutdownTimeout = time.Minute

// Processor handles one kind of queue payload.
type Processor interface {
	Process(ctx context.Context, message *queue.Message) error
	GetType() string
}

type ServiceConfig struct {
	// Queues lists every stream to consume, e.g. the express and normal queues.
	Queues []queue.QueueConfig
	// ConsumersPerQueue is the number of stream consumers per queue.
	ConsumersPerQueue int
	Workers           int
	BufferSize        int
	MetricsInterval   time.Duration
}

// ProcessorService reads the message queues and hands every message to a
// worker pool running the registered processor.
type ProcessorService struct {
	adapter   redis.RedisAdapter
	config    ServiceConfig
	queues    []*queue.Queue
	processor Processor
	metrics   *ServiceMetrics
	worker    *worker.WorkerManager
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewProcessorService(adapter redis.RedisAdapter, cfg ServiceConfig) (*ProcessorService, error) {
	if len(cfg.Queues) == 0 {
		return nil, errors.New("at least one queue is required")
	}
	if cfg.ConsumersPerQueue <= 0 {
		cfg.ConsumersPerQueue = 1
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 10
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.MetricsInterval <= 0 {
		cfg.MetricsInterval = 30 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &ProcessorService{
		adapter: adapter,
		config:  cfg,
		metrics: NewServiceMetrics(),
		worker:  worker.NewWorkerManager(cfg.BufferSize, cfg.Workers),
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

func (s *ProcessorService) RegisterProcessor(processor Processor) {
	s.processor = processor
	logger.Info("registered processor", "type", processor.GetType())
}

func (s *ProcessorService) Start() error {
	if s.processor == nil {
		return errors.New("no processor registered")
	}

	s.worker.SetWorker(s.workerHandler)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.worker.Start(s.ctx)
	}()

	for _, qc := range s.config.Queues {
		base := qc.ConsumerName
		for i := 0; i < s.config.ConsumersPerQueue; i++ {
			qc.ConsumerName = fmt.Sprintf("%s-%d", base, i)

			q, err := queue.NewQueue(s.adapter, qc)
			if err != nil {
				return fmt.Errorf("failed to create queue %s: %w", qc.Name, err)
			}
			if err := q.Consume(s.messageHandler); err != nil {
				return fmt.Errorf("failed to start consumer %s: %w", qc.ConsumerName, err)
			}
			s.queues = append(s.queues, q)
		}
		logger.Info("consuming queue", "queue", qc.Name, "consumers", s.config.ConsumersPerQueue)
	}

	s.wg.Add(2)
	go s.every(s.config.MetricsInterval, s.reportMetrics)
	go s.every(HealthInterval, s.performHealthCheck)

	logger.Info("processor service started", "consumers", len(s.queues), "workers", s.config.Workers)
	return nil
}

func (s *ProcessorService) every(interval time.Duration, fn func()) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fn()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *ProcessorService) Metrics() *ServiceMetrics {
	return s.metrics
}

func (s *ProcessorService) reportMetrics() {
	stats := s.metrics.GetStats()
	logger.Info("processor metrics",
		"total_processed", stats.TotalProcessed,
		"total_failed", stats.TotalFailed,
		"rate_per_second", stats.RatePerSecond,
		"avg_duration_ms", stats.AvgDuration.Milliseconds())

	seen := make(map[string]bool)
	for _, q := range s.queues {
		if seen[q.Name()] {
			continue
		}
		seen[q.Name()] = true
		if qs, err := q.GetStats(context.Background()); err == nil {
			logger.Info("queue stats", "queue", q.Name(), "total", qs.TotalMessages, "pending", qs.PendingMessages, "dead_letters", qs.DeadLetters)
		}
	}
}

func (s *ProcessorService) performHealthCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), ProcessingTimeout)
	defer cancel()

	if err := s.adapter.Ping(ctx); err != nil {
		logger.Error("health check failed: redis unreachable", "error", err)
		return
	}
	if backlog := s.worker.GetUnreadCount(); backlog > int64(s.config.BufferSize)/2 {
		logger.Warn("worker backlog is high", "buffered", backlog)
	}
}

func (s *ProcessorService) Stop() {
	logger.Info("shutting down processor service")

	var wg sync.WaitGroup
	for _, q := range s.queues {
		wg.Add(1)
		go func(q *queue.Queue) {
			defer wg.Done()
			if err := q.Stop(ShutdownTimeout); err != nil {
				logger.Error("error stopping queue", "queue", q.Name(), "error", err)
			}
		}(q)
	}
	wg.Wait()

	s.cancel()
	s.worker.Exit()
	s.wg.Wait()

	s.reportMetrics()
	logger.Info("processor service stopped")
}

type job struct {
	ctx    context.Context
	msg    *queue.Message
	result chan error
}

// messageHandler is the queue callback: it blocks until a worker has
// processed the message so the queue can ack or retry it.
func (s *ProcessorService) messageHandler(ctx context.Context, msg *queue.Message) error {
	jobCtx, cancel := context.WithTimeout(ctx, ProcessingTimeout)
	defer cancel()

	j := &job{ctx: jobCtx, msg: msg, result: make(chan error, 1)}
	if !s.worker.Enqueue(jobCtx, j) {
		return errors.New("worker pool unavailable")
	}

	select {
	case err := <-j.result:
		return err
	case <-jobCtx.Done():
		return fmt.Errorf("timeout waiting for worker: %w", jobCtx.Err())
	}
}

func (s *ProcessorService) workerHandler(workerIndex int, v interface{}) {
	j, ok := v.(*job)
	if !ok {
		logger.Error("invalid job type in worker", "worker", workerIndex)
		return
	}
	if j.ctx.Err() != nil {
		logger.Warn("job expired before processing", "worker", workerIndex, "id", j.msg.ID)
		return
	}

	start := time.Now()
	err := s.processor.Process(j.ctx, j.msg)
	if err != nil {
		s.metrics.RecordFailure()
		logger.Error("failed to process message", "worker", workerIndex, "id", j.msg.ID, "attempts", j.msg.Attempts, "error", err)
	} else {
		s.metrics.RecordSuccess(time.Since(start))
	}

	// buffered; never blocks
	j.result <- err
}

package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thammystudio/studio-crm/internal/config"
	gateway "github.com/thammystudio/studio-crm/internal/gateways"
	"github.com/thammystudio/studio-crm/internal/processor"
	"github.com/thammystudio/studio-crm/internal/queue"
	"github.com/thammystudio/studio-crm/internal/repository"
	"github.com/thammystudio/studio-crm/internal/scheduler"
	"github.com/thammystudio/studio-crm/pkg/logger"
	"github.com/thammystudio/studio-crm/pkg/pg"
	"github.com/thammystudio/studio-crm/pkg/prom"
	"github.com/thammystudio/studio-crm/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const defaultMetricsAddr = ":9100"

func main() {
	defer logger.Sync()

	if err := config.Load(config.EnvPathFromArgs(os.Args[1:], "")); err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	cfg := config.Get()
	logger.Info("starting dispatcher", "version", version, "commit", commit, "date", date, "env", cfg.AppEnv)

	db, err := pg.CreateReadWrite(cfg.PostgresRead(), cfg.PostgresWrite(), cfg.AppEnv == "dev")
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}
	defer db.Close()

	redisAdap, err := redis.NewRedisAdapter("default", cfg.RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{cfg.RedisAddr},
		ClientName: cfg.AppName + "-dispatcher",
		DB:         cfg.RedisDatabase,
		Username:   cfg.RedisUsername,
		Password:   cfg.RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	providers := []gateway.ProviderConfig{{Name: "primary", URL: cfg.ProviderPrimaryUrl, Weight: 100}}
	if cfg.ProviderSecondaryUrl != "" {
		providers = append(providers, gateway.ProviderConfig{Name: "secondary", URL: cfg.ProviderSecondaryUrl, Weight: 80})
	}
	client, err := gateway.NewClient(&gateway.Config{
		Providers:               providers,
		Timeout:                 cfg.ProviderTimeout,
		MaxRetries:              cfg.ProviderMaxRetries,
		RetryDelay:              100 * time.Millisecond,
		MaxConns:                256,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   60 * time.Second,
	})
	if err != nil {
		logger.Error("failed to create gateway", "error", err)
		return
	}
	defer client.Close()

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	if err = prom.Create(hostname, cfg.AppEnv, cfg.PromNamespace); err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}
	metricsAddr := cfg.AppDebugMetricsAddr
	if metricsAddr == "" {
		metricsAddr = defaultMetricsAddr
	}
	go prom.ListenAndServer(metricsAddr, cfg.AppDebugMetricsURI)

	// express first so time-sensitive messages are read before the backlog
	queues := []queue.QueueConfig{cfg.Queue(cfg.QueueExpressName), cfg.Queue(cfg.QueueName)}
	for i := range queues {
		queues[i].ConsumerName += "-" + hostname
	}

	idempotency := processor.NewIdempotencyService(redisAdap, processor.DefaultIdempotencyConfig())
	service, err := processor.NewProcessorService(redisAdap, processor.ServiceConfig{
		Queues:            queues,
		ConsumersPerQueue: cfg.QueueConsumers,
		Workers:           cfg.QueueWorkers,
	})
	if err != nil {
		logger.Error("failed to create the processor", "error", err)
		return
	}
	service.RegisterProcessor(processor.NewSMSMessageProcessor(
		client,
		repository.NewDeliveryReportRepository(db),
		repository.NewMessageRepository(db),
		idempotency,
	))

	sweeper := scheduler.NewReminderSweeper(repository.NewReminderRepository(db), redisAdap, scheduler.SweepConfig{
		Spec:          cfg.ReminderSweepCron,
		UpcomingHours: cfg.ReminderUpcomingHours,
	})
	if err = sweeper.Start(); err != nil {
		logger.Error("failed to start reminder sweep", "error", err)
		return
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := service.Start(); err != nil {
			logger.Error("failed to start processor", "error", err)
			c <- syscall.SIGTERM
		}
	}()

	<-c
	sweeper.Stop()
	service.Stop()
	for _, st := range client.Stats() {
		logger.Info("provider totals", "provider", st.Name, "state", st.State, "sent", st.Sent, "failed", st.Failed)
	}
}

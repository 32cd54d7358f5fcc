package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/thammystudio/studio-crm/internal/config"
	"github.com/thammystudio/studio-crm/internal/handlers"
	"github.com/thammystudio/studio-crm/internal/notify"
	"github.com/thammystudio/studio-crm/internal/queue"
	"github.com/thammystudio/studio-crm/internal/repository"
	"github.com/thammystudio/studio-crm/internal/services"
	xhttp "github.com/thammystudio/studio-crm/pkg/http"
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

func main() {
	defer logger.Sync()

	if err := config.Load(config.EnvPathFromArgs(os.Args[1:], "")); err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	cfg := config.Get()
	logger.Info("starting api", "version", version, "commit", commit, "date", date, "env", cfg.AppEnv)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	if err = prom.Create(hostname, cfg.AppEnv, cfg.PromNamespace); err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}
	if cfg.AppDebugMetricsAddr != "" {
		go prom.ListenAndServer(cfg.AppDebugMetricsAddr, cfg.AppDebugMetricsURI)
	}

	db, err := pg.CreateReadWrite(cfg.PostgresRead(), cfg.PostgresWrite(), cfg.AppEnv == "dev")
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}
	defer db.Close()

	redisAdap, err := redis.NewRedisAdapter("default", cfg.RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{cfg.RedisAddr},
		ClientName: cfg.AppName + "-api",
		DB:         cfg.RedisDatabase,
		Username:   cfg.RedisUsername,
		Password:   cfg.RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	q, err := queue.NewQueue(redisAdap, cfg.Queue(cfg.QueueName))
	if err != nil {
		logger.Error("failed creating queue", "queue", cfg.QueueName, "error", err)
		return
	}
	expressQ, err := queue.NewQueue(redisAdap, cfg.Queue(cfg.QueueExpressName))
	if err != nil {
		logger.Error("failed creating queue", "queue", cfg.QueueExpressName, "error", err)
		return
	}

	leadRepo := repository.NewLeadRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// services
	messageService := services.NewMessageService(messageRepo, q, expressQ)
	leadService := services.NewLeadService(leadRepo, reminderRepo, messageService, staffNotifier(cfg))
	reminderService := services.NewReminderService(reminderRepo, leadRepo, messageService)
	healthService := services.NewHealthService(map[string]services.Pinger{
		"postgres": db,
		"redis":    redisAdap,
	})

	opts := xhttp.DefaultServerOption
	opts.Name = cfg.AppName
	opts.ReadTimeout = cfg.HttpServerReadTimeout
	opts.WriteTimeout = cfg.HttpServerWriteTimeout
	s := xhttp.NewServer(opts)
	s.Use(xhttp.RecoverMiddleware)
	s.Use(xhttp.RequestIDMiddleware)
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.CORSMiddleware(cfg.CORSOrigins()))
	s.Use(xhttp.TimeoutMiddleware(cfg.HttpRequestTimeout))
	s.Use(xhttp.CompressMiddleware(6))

	// v1 handlers
	g := s.Router.Group("/api/v1")
	handlers.RegisterLeadRoutes(g, handlers.NewLeadHandler(leadService))
	handlers.RegisterReminderRoutes(g, handlers.NewReminderHandler(reminderService, cfg.ReminderUpcomingHours))
	handlers.RegisterMessageRoutes(g, handlers.NewMessageHandler(messageService))
	handlers.RegisterHealthRoutes(g, handlers.NewHealthHandler(healthService))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.ListenAndServe(cfg.HttpListenAddr); err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	<-c
	s.Shutdown()
}

// staffNotifier returns nil when SMTP is not configured; leads are then only
// visible in the dashboard.
func staffNotifier(cfg *config.Config) services.LeadNotifier {
	if cfg.SMTPHost == "" {
		logger.Warn("SMTP_HOST not set, staff e-mail notifications disabled")
		return nil
	}
	m, err := notify.NewMailer(notify.MailerConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		To:       cfg.StaffRecipients(),
	})
	if err != nil {
		logger.Warn("staff e-mail notifications disabled", "error", err)
		return nil
	}
	return m
}

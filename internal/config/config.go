package config

import (
	"os"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/thammystudio/studio-crm/internal/queue"
	"github.com/thammystudio/studio-crm/pkg/logger"
	"github.com/thammystudio/studio-crm/pkg/pg"
)

var config *Config

// Config holds every setting of the api, dispatcher and cli binaries. Nothing
// else reads the environment directly.
type Config struct {
	AppEnv              string `env:"APP_ENV,default=dev"`
	AppName             string `env:"APP_NAME,default=studio_crm"`
	AppDebugMetricsAddr string `env:"APP_DEBUG_METRIC_ADDR"`
	AppDebugMetricsURI  string `env:"APP_DEBUG_METRIC_URI,default=/metrics"`

	HttpListenAddr         string        `env:"HTTP_LISTEN_ADDR,default=:8080"`
	HttpServerReadTimeout  time.Duration `env:"HTTP_SERVER_READ_TIMEOUT,default=10s"`
	HttpServerWriteTimeout time.Duration `env:"HTTP_SERVER_WRITE_TIMEOUT,default=10s"`
	HttpRequestTimeout     time.Duration `env:"HTTP_REQUEST_TIMEOUT,default=15s"`
	HttpCORSOrigins        string        `env:"HTTP_CORS_ORIGINS"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT,default=5432"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string        `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string        `env:"POSTGRES_WRITE_PORT,default=5432"`
	PostgresWriteUser     string        `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string        `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string        `env:"POSTGRES_WRITE_DBNAME"`
	PostgresSSLMode       string        `env:"POSTGRES_SSLMODE,default=disable"`
	PostgresTimeZone      string        `env:"POSTGRES_TIMEZONE,default=UTC"`
	PostgresMaxOpenConns  int           `env:"POSTGRES_MAX_OPEN_CONNS,default=20"`
	PostgresMaxIdleConns  int           `env:"POSTGRES_MAX_IDLE_CONNS,default=5"`
	PostgresConnLifetime  time.Duration `env:"POSTGRES_CONN_MAX_LIFETIME,default=30m"`
	MigrationsDir         string        `env:"MIGRATIONS_DIR,default=migrations"`

	RedisAddr               string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX,default=crm:"`

	PromNamespace string `env:"PROM_NAMESPACE,default=studio_crm"`

	QueueName              string        `env:"QUEUE_NAME,default=messages"`
	QueueExpressName       string        `env:"QUEUE_EXPRESS_NAME,default=messages:express"`
	QueueConsumerGroup     string        `env:"QUEUE_CONSUMER_GROUP,default=dispatchers"`
	QueueConsumerName      string        `env:"QUEUE_CONSUMER_NAME,default=dispatcher"`
	QueueConsumers         int           `env:"QUEUE_CONSUMERS,default=2"`
	QueueWorkers           int           `env:"QUEUE_WORKERS,default=10"`
	QueueMaxRetries        int           `env:"QUEUE_MAX_RETRIES,default=3"`
	QueueVisibilityTimeout time.Duration `env:"QUEUE_VISIBILITY_TIMEOUT,default=30s"`
	QueuePollInterval      time.Duration `env:"QUEUE_POLL_INTERVAL,default=500ms"`
	QueueBatchSize         int64         `env:"QUEUE_BATCH_SIZE,default=10"`
	QueueMaxLen            int64         `env:"QUEUE_MAX_LEN,default=100000"`
	QueueEnableDLQ         bool          `env:"QUEUE_ENABLE_DLQ,default=true"`

	ProviderPrimaryUrl   string        `env:"PROVIDER_PRIMARY_URL,default=http://localhost:9090"`
	ProviderSecondaryUrl string        `env:"PROVIDER_SECONDARY_URL"`
	ProviderTimeout      time.Duration `env:"PROVIDER_TIMEOUT,default=5s"`
	ProviderMaxRetries   int           `env:"PROVIDER_MAX_RETRIES,default=2"`

	ReminderSweepCron     string `env:"REMINDER_SWEEP_CRON,default=*/5 * * * *"`
	ReminderUpcomingHours int    `env:"REMINDER_UPCOMING_HOURS,default=24"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT,default=587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"`
	StaffEmails  string `env:"STAFF_EMAILS"`
}

func (c *Config) PostgresRead() pg.Config {
	return pg.Config{
		Host:     c.PostgresReadHost,
		Port:     c.PostgresReadPort,
		User:     c.PostgresReadUser,
		Password: c.PostgresReadPassword,
		Database: c.PostgresReadDatabase,
		SSLMode:  c.PostgresSSLMode,
		TimeZone: c.PostgresTimeZone,

		MaxOpenConns:    c.PostgresMaxOpenConns,
		MaxIdleConns:    c.PostgresMaxIdleConns,
		ConnMaxLifetime: c.PostgresConnLifetime,
	}
}

func (c *Config) PostgresWrite() pg.Config {
	return pg.Config{
		Host:     c.PostgresWriteHost,
		Port:     c.PostgresWritePort,
		User:     c.PostgresWriteUser,
		Password: c.PostgresWritePassword,
		Database: c.PostgresWriteDatabase,
		SSLMode:  c.PostgresSSLMode,
		TimeZone: c.PostgresTimeZone,

		MaxOpenConns:    c.PostgresMaxOpenConns,
		MaxIdleConns:    c.PostgresMaxIdleConns,
		ConnMaxLifetime: c.PostgresConnLifetime,
	}
}

func (c *Config) CORSOrigins() []string {
	return splitList(c.HttpCORSOrigins)
}

func (c *Config) StaffRecipients() []string {
	return splitList(c.StaffEmails)
}

// Queue returns the stream settings shared by every queue, for the stream name.
func (c *Config) Queue(name string) queue.QueueConfig {
	return queue.QueueConfig{
		Name:              name,
		ConsumerGroup:     c.QueueConsumerGroup,
		ConsumerName:      c.QueueConsumerName,
		MaxRetries:        c.QueueMaxRetries,
		VisibilityTimeout: c.QueueVisibilityTimeout,
		PollInterval:      c.QueuePollInterval,
		BatchSize:         c.QueueBatchSize,
		MaxLen:            c.QueueMaxLen,
		EnableDLQ:         c.QueueEnableDLQ,
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) validate() error {
	if c.ReminderUpcomingHours <= 0 {
		return errors.New("REMINDER_UPCOMING_HOURS must be positive")
	}
	if c.QueueName == c.QueueExpressName {
		return errors.New("QUEUE_NAME and QUEUE_EXPRESS_NAME must differ")
	}
	return nil
}

// Load reads the optional dotenv file at path into the environment and then
// maps the environment onto Config.
func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return errors.Wrapf(err, "failed to load configuration file %s", path)
		}
	}

	c := &Config{}
	if _, err := env.UnmarshalFromEnviron(c); err != nil {
		return errors.Wrap(err, "failed to map env variables to Configuration object")
	}
	if err := c.validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	config = c
	return nil
}

// EnvPathFromArgs returns the file named by a --env=<file> argument, or
// fallback when none is given. A named file that cannot be opened yields "".
func EnvPathFromArgs(args []string, fallback string) string {
	path := fallback
	for _, a := range args {
		if v, ok := strings.CutPrefix(a, "--env="); ok {
			path = v
			break
		}
	}
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		logger.Warn("env file not readable, using the environment only", "path", path, "error", err)
		return ""
	}
	return path
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	require.NoError(t, Load(""))

	c := Get()
	assert.Equal(t, "*/5 * * * *", c.ReminderSweepCron)
	assert.Equal(t, 24, c.ReminderUpcomingHours)
	assert.Equal(t, "messages", c.QueueName)
	assert.Equal(t, "messages:express", c.QueueExpressName)
	assert.Equal(t, 30*time.Second, c.QueueVisibilityTimeout)
	assert.True(t, c.QueueEnableDLQ)
}

func TestLoad_FromDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "STAFF_EMAILS=le.tan@studio.vn, quanly@studio.vn\nHTTP_CORS_ORIGINS=https://thammystudio.vn\nPOSTGRES_WRITE_HOST=db-primary\nREMINDER_UPCOMING_HOURS=48\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() {
		for _, k := range []string{"STAFF_EMAILS", "HTTP_CORS_ORIGINS", "POSTGRES_WRITE_HOST", "REMINDER_UPCOMING_HOURS"} {
			os.Unsetenv(k)
		}
	})

	require.NoError(t, Load(path))

	c := Get()
	assert.Equal(t, []string{"le.tan@studio.vn", "quanly@studio.vn"}, c.StaffRecipients())
	assert.Equal(t, []string{"https://thammystudio.vn"}, c.CORSOrigins())
	assert.Equal(t, "db-primary", c.PostgresWrite().Host)
	assert.Equal(t, "disable", c.PostgresWrite().SSLMode)
	assert.Equal(t, 20, c.PostgresRead().MaxOpenConns)
	assert.Equal(t, 30*time.Minute, c.PostgresRead().ConnMaxLifetime)
	assert.Equal(t, 48, c.ReminderUpcomingHours)
}

func TestLoad_MissingFile(t *testing.T) {
	assert.Error(t, Load(filepath.Join(t.TempDir(), "missing.env")))
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("QUEUE_EXPRESS_NAME", "messages")
	assert.Error(t, Load(""))
}

func TestEnvPathFromArgs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.env")
	require.NoError(t, os.WriteFile(path, []byte("APP_ENV=test\n"), 0o600))

	assert.Equal(t, path, EnvPathFromArgs([]string{"api", "--env=" + path}, ""))
	assert.Equal(t, path, EnvPathFromArgs([]string{"api"}, path))
	assert.Equal(t, "", EnvPathFromArgs([]string{"api", "--env=/nonexistent/.env"}, ""))
	assert.Equal(t, "", EnvPathFromArgs([]string{"api"}, ""))
}

func TestConfig_Queue(t *testing.T) {
	require.NoError(t, Load(""))

	q := Get().Queue("messages:express")
	assert.Equal(t, "messages:express", q.Name)
	assert.Equal(t, "dispatchers", q.ConsumerGroup)
	assert.Equal(t, 3, q.MaxRetries)
	assert.True(t, q.EnableDLQ)
}

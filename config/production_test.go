package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProductionConfig_Defaults(t *testing.T) {
	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "smallbizagent", cfg.Database.Name)

	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, time.Hour, cfg.Scheduler.RecurringInterval)
	assert.Equal(t, time.Hour, cfg.Scheduler.ReminderInterval)
	assert.Equal(t, 24, cfg.Scheduler.ReminderLeadHours)
	assert.Equal(t, 100, cfg.Scheduler.RecurringBatchLimit)

	assert.Equal(t, "mock", cfg.SMS.ProviderDomain)
}

func TestLoadProductionConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SCHEDULER_ENABLED", "false")
	t.Setenv("SCHEDULER_RECURRING_INTERVAL", "15m")
	t.Setenv("SCHEDULER_REMINDER_LEAD_HOURS", "48")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 15*time.Minute, cfg.Scheduler.RecurringInterval)
	assert.Equal(t, 48, cfg.Scheduler.ReminderLeadHours)
	assert.Equal(t, "db.internal", cfg.Database.Host)
}

func TestValidateProductionConfig_RejectsBadValues(t *testing.T) {
	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	cfg.Scheduler.ReminderLeadHours = 0
	assert.Error(t, ValidateProductionConfig(cfg))

	cfg.Scheduler.ReminderLeadHours = 24
	cfg.Scheduler.RecurringInterval = time.Millisecond
	assert.Error(t, ValidateProductionConfig(cfg))

	cfg.Scheduler.RecurringInterval = time.Hour
	cfg.Database.SSLMode = "bogus"
	assert.Error(t, ValidateProductionConfig(cfg))
}

func TestGetEnvHelpers_IgnoreUnparsableValues(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	t.Setenv("SOME_BOOL", "maybe")
	t.Setenv("SOME_DURATION", "soon")

	assert.Equal(t, 7, getEnvInt("SOME_INT", 7))
	assert.True(t, getEnvBool("SOME_BOOL", true))
	assert.Equal(t, time.Minute, getEnvDuration("SOME_DURATION", time.Minute))
}

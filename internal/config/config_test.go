package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET_KEY", "jwt-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Payroll.BatchSize)
	assert.Equal(t, "KRW", cfg.Payroll.Currency)
	assert.Empty(t, cfg.Payroll.RateTablesPath)
	assert.Equal(t, 30*time.Minute, cfg.Payroll.StaleRunAfter)
	assert.Equal(t, 5*time.Minute, cfg.Payroll.StaleCheckInterval)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
	assert.Equal(t, int32(5), cfg.Database.MinConns)
	assert.Equal(t, "hr.payroll.run.reviewed.v1", cfg.Kafka.PayrollRunsTopic)
	assert.Equal(t, 3*time.Second, cfg.Kafka.OutboxPollInterval)
	assert.False(t, cfg.Kafka.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PAYROLL_BATCH_SIZE", "25")
	t.Setenv("PAYROLL_STALE_RUN_AFTER", "1h")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://hr.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Payroll.BatchSize)
	assert.Equal(t, time.Hour, cfg.Payroll.StaleRunAfter)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, []string{"https://hr.example.com"}, cfg.App.CORSAllowedOrigins)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"DB_PORT", "abc"},
		{"PAYROLL_BATCH_SIZE", "ten"},
		{"PAYROLL_STALE_RUN_AFTER", "soon"},
		{"OUTBOX_POLL_INTERVAL", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Database: DatabaseConfig{Password: "secret"},
		JWT:      JWTConfig{Secret: "jwt"},
		Payroll:  PayrollConfig{BatchSize: 1},
	}
	require.NoError(t, valid.Validate())

	noPassword := valid
	noPassword.Database.Password = ""
	assert.ErrorContains(t, noPassword.Validate(), "DB_PASSWORD")

	noSecret := valid
	noSecret.JWT.Secret = ""
	assert.ErrorContains(t, noSecret.Validate(), "JWT_SECRET_KEY")

	zeroBatch := valid
	zeroBatch.Payroll.BatchSize = 0
	assert.ErrorContains(t, zeroBatch.Validate(), "PAYROLL_BATCH_SIZE")
}

func TestSlogLevel(t *testing.T) {
	cfg := Config{App: AppConfig{LogLevel: "DEBUG"}}
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	cfg.App.LogLevel = "bogus"
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

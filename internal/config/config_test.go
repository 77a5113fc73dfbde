package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("INVITE_TOKEN_SECRET", "")
	t.Setenv("SWEEP_INTERVAL", "")
	t.Setenv("SMTP_HOST", "")

	cfg := Load()

	assert.Equal(t, "changeme", cfg.JWTSecret)
	assert.Equal(t, cfg.JWTSecret, cfg.InviteTokenSecret)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.False(t, cfg.SMTP.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("INVITE_TOKEN_SECRET", "links")
	t.Setenv("SWEEP_INTERVAL", "30s")
	t.Setenv("SWEEP_BATCH_SIZE", "not-a-number")
	t.Setenv("REQUIRE_DECLINE_JUSTIFICATION", "true")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_FROM", "noreply@example.com")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "links", cfg.InviteTokenSecret)
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
	assert.Equal(t, 200, cfg.SweepBatchSize)
	assert.True(t, cfg.RequireDeclineJustification)
	assert.True(t, cfg.SMTP.Enabled())
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_TYPE", "JWT_SECRET", "SESSION_TTL", "RESET_TOKEN_TTL", "FRONTEND_URL", "AUTH_RATE_LIMIT", "TRUST_PROXY"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "3000", cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, time.Hour, cfg.ResetTokenTTL)
	assert.Equal(t, "http://localhost:5173", cfg.FrontendURL)
	assert.Equal(t, 10, cfg.AuthRateLimit)
	assert.False(t, cfg.TrustProxy)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("RESET_TOKEN_TTL", "not-a-duration")
	t.Setenv("FRONTEND_URL", "https://app.example.com/")
	t.Setenv("AUTH_RATE_LIMIT", "3")
	t.Setenv("MAIL_PROVIDER", "SES")

	cfg := Load()
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, time.Hour, cfg.ResetTokenTTL)
	assert.Equal(t, "https://app.example.com", cfg.FrontendURL)
	assert.Equal(t, 3, cfg.AuthRateLimit)
	assert.Equal(t, "ses", cfg.MailProvider)
}

func TestValidate(t *testing.T) {
	cfg := &Config{DatabaseType: "sqlite"}
	require.EqualError(t, cfg.Validate(), "JWT_SECRET is not defined")

	cfg.JWTSecret = "secret"
	require.NoError(t, cfg.Validate())

	cfg.DatabaseType = "postgres"
	require.Error(t, cfg.Validate())

	cfg.DatabaseURL = "postgres://localhost/cashvelo"
	require.NoError(t, cfg.Validate())
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "s3cret")
	t.Setenv("PORT", "")
	t.Setenv("EVENT_BROKER", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("TOKEN_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Port)
	assert.Equal(t, "redis", cfg.EventBroker)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:5174"}, cfg.CORSOrigin)
	assert.Equal(t, 365*24*time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.Production())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "s3cret")
	t.Setenv("PORT", ":7000")
	t.Setenv("APP_ENV", "production")
	t.Setenv("EVENT_BROKER", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("RATE_LIMIT_RPS", "12.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Port)
	assert.True(t, cfg.Production())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 12.5, cfg.RateLimitRPS)
}

func TestLoadRejectsMissingSecret(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownBroker(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "x")
	t.Setenv("EVENT_BROKER", "carrier-pigeon")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadIdentitySettings(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "x")
	t.Setenv("APP_ENV", "")
	t.Setenv("EVENT_BROKER", "")
	t.Setenv("IDENTITY_TOKEN_SECRET", "idp")
	t.Setenv("IDENTITY_ISSUER", "https://idp.example.com")
	t.Setenv("DEV_LOGIN", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []byte("idp"), cfg.IdentitySecret)
	assert.Equal(t, "https://idp.example.com", cfg.IdentityIssuer)
	assert.True(t, cfg.DevLogin)
}

func TestLoadRejectsDevLoginInProduction(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "x")
	t.Setenv("EVENT_BROKER", "")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DEV_LOGIN", "1")
	_, err := Load()
	assert.Error(t, err)
}

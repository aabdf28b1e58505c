package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, int64(1), cfg.LocationID)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "CAD", cfg.Currency)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Empty(t, cfg.PaymentGatewayURL)
	assert.True(t, cfg.FlatShipping.IsZero())
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("FLAT_SHIPPING", "9.99")
	t.Setenv("FREE_SHIPPING_THRESHOLD", "100")
	t.Setenv("CURRENCY", "usd")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 45*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "9.99", cfg.FlatShipping.StringFixed(2))
	assert.Equal(t, "100", cfg.FreeShippingThreshold.String())
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PORT", "five")
	t.Setenv("PAYMENT_TIMEOUT", "soon")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PORT")
	assert.Contains(t, err.Error(), "PAYMENT_TIMEOUT")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-showtimes/internal/clock"
)

func setRequired(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_ENV":                "test",
		"APP_PORT":               "8080",
		"DB_USER":                "app",
		"DB_HOST":                "localhost",
		"DB_PORT":                "3306",
		"DB_NAME":                "cinema",
		"JWT_SECRET":             "secret",
		"ACCESS_TOKEN_TTL_MIN":   "15",
		"REFRESH_TOKEN_TTL_DAYS": "7",
		"BCRYPT_COST":            "4",
	} {
		t.Setenv(k, v)
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	cfg, err := load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15, cfg.AccessTTLMin)
	assert.True(t, cfg.DBMigrate)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.True(t, cfg.DefaultWallet.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, 15, cfg.TemplateSpanDays)
	assert.Equal(t, clock.Duration{Minutes: 10}, cfg.DefaultAds)
	assert.Equal(t, clock.Duration{Minutes: 10}, cfg.DefaultCleaning)
	assert.True(t, cfg.PurchaseEventsEnabled)
	assert.Equal(t, "logs", cfg.PurchaseLogDir)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_TIMEZONE", "Europe/Moscow")
	t.Setenv("DEFAULT_WALLET", "250.50")
	t.Setenv("DEFAULT_ADS_DURATION", "00:15")
	t.Setenv("TEMPLATE_SPAN_DAYS", "7")
	t.Setenv("DB_MIGRATE", "off")
	t.Setenv("AMQP_URL", "amqp://broker/")

	cfg, err := load()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Moscow", cfg.Location.String())
	assert.Equal(t, "250.5", cfg.DefaultWallet.String())
	assert.Equal(t, clock.Duration{Minutes: 15}, cfg.DefaultAds)
	assert.Equal(t, 7, cfg.TemplateSpanDays)
	assert.False(t, cfg.DBMigrate)
	assert.Equal(t, "amqp://broker/", cfg.RabbitURL)
}

func TestLoadErrors(t *testing.T) {
	setRequired(t)
	t.Setenv("BCRYPT_COST", "high")
	_, err := load()
	assert.ErrorContains(t, err, "BCRYPT_COST")

	setRequired(t)
	t.Setenv("JWT_SECRET", "")
	_, err = load()
	assert.ErrorContains(t, err, "JWT_SECRET")

	setRequired(t)
	t.Setenv("DEFAULT_WALLET", "-1")
	_, err = load()
	assert.ErrorContains(t, err, "DEFAULT_WALLET")
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 2*time.Second, cfg.RefillInterval)
	assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestLoadCacheAndBasketConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("BASKET_TTL", "90s")
	c := LoadCacheConfig()
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, c.Methods)
	b := LoadBasketConfig()
	assert.Equal(t, 90*time.Second, b.TTL)
	assert.Equal(t, "basket_session", b.CookieName)
}

func TestLoadRedisConfig(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	assert.Equal(t, "cache:6380", LoadRedisConfig().Addr)
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6379")
	assert.Equal(t, "redis:6379", LoadRedisConfig().Addr)
}

package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", strings.Repeat("s", 32))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cart:session:", cfg.Cart.StateKeyPrefix)
	assert.Equal(t, "200", cfg.Cart.BrownBagUnitPrice)
	assert.Equal(t, "NGN", cfg.Cart.Currency)
	assert.Equal(t, 0, cfg.Cart.DisplayScale)
	assert.Equal(t, "session_id", cfg.Cart.SessionCookieName)
	assert.Equal(t, 15*time.Second, cfg.OrderService.RequestTimeout)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "localhost:6379", cfg.GetRedisAddr())
}

func TestLoad_overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", strings.Repeat("s", 32))
	t.Setenv("APP_ENV", "production")
	t.Setenv("CART_BROWN_BAG_PRICE", "150.50")
	t.Setenv("CART_STATE_TTL", "48h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("CART_SESSION_CACHE_SIZE", "not-a-number")
	t.Setenv("CART_DISPLAY_SCALE", "-1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "150.50", cfg.Cart.BrownBagUnitPrice)
	assert.Equal(t, 48*time.Hour, cfg.Cart.StateTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.CORSAllowedOrigins)
	assert.Equal(t, 10000, cfg.Cart.SessionCacheSize)
	assert.Equal(t, -1, cfg.Cart.DisplayScale)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:       ServerConfig{Port: "8080"},
			Database:     DatabaseConfig{Host: "db", Name: "foodcart"},
			Redis:        RedisConfig{Host: "redis"},
			JWT:          JWTConfig{Secret: strings.Repeat("k", 32)},
			Cart:         CartConfig{Currency: "NGN", SessionCacheSize: 10},
			OrderService: OrderServiceConfig{BaseURL: "http://orders"},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"short secret", func(c *Config) { c.JWT.Secret = "short" }, "JWT_SECRET"},
		{"no db host", func(c *Config) { c.Database.Host = "" }, "DB_HOST"},
		{"no redis host", func(c *Config) { c.Redis.Host = "" }, "REDIS_HOST"},
		{"no order service", func(c *Config) { c.OrderService.BaseURL = "" }, "ORDER_SERVICE_URL"},
		{"bad currency", func(c *Config) { c.Cart.Currency = "NAIRA" }, "CART_CURRENCY"},
		{"display scale", func(c *Config) { c.Cart.DisplayScale = 9 }, "CART_DISPLAY_SCALE"},
		{"no cache", func(c *Config) { c.Cart.SessionCacheSize = 0 }, "CART_SESSION_CACHE_SIZE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

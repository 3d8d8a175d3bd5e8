package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("ORDER_NUMBER_PREFIX", "")
	t.Setenv("CATEGORY_CACHE_TTL", "")

	cfg := FromEnv()

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "BLM", cfg.Orders.NumberPrefix)
	assert.Equal(t, SequenceStore, cfg.Orders.SequenceBackend)
	assert.Equal(t, 10*time.Minute, cfg.Catalog.CategoryCacheTTL)
	assert.True(t, cfg.Catalog.ReviewsAutoApprove)
	require.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "MEMORY")
	t.Setenv("JOURNAL_REPLAY_INTERVAL", "15s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REVIEWS_AUTO_APPROVE", "false")

	cfg := FromEnv()

	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 15*time.Second, cfg.Journal.ReplayInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.CORSAllowedOrigins)
	assert.False(t, cfg.Catalog.ReviewsAutoApprove)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "short jwt secret",
			mutate:  func(c *Config) { c.JWT.Secret = "short" },
			wantErr: "JWT_SECRET",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "sqlite" },
			wantErr: "DB_DRIVER",
		},
		{
			name:    "mongo without uri",
			mutate:  func(c *Config) { c.Database.Driver = DriverMongo; c.Database.MongoURI = "" },
			wantErr: "MONGO_URI",
		},
		{
			name: "redis sequence without redis",
			mutate: func(c *Config) {
				c.Orders.SequenceBackend = SequenceRedis
				c.Redis.Enabled = false
			},
			wantErr: "REDIS_ENABLED",
		},
		{
			name:   "memory driver needs no host",
			mutate: func(c *Config) { c.Database.Driver = DriverMemory; c.Database.Host = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := FromEnv()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

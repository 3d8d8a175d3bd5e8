package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/ecommerce-core/internal/config"
	"github.com/your-org/ecommerce-core/internal/pkg/logger"
)

func TestOpen_Memory(t *testing.T) {
	cfg := config.FromEnv()
	cfg.Database.Driver = config.DriverMemory

	stores, err := Open(cfg, logger.Discard())
	require.NoError(t, err)
	defer stores.Close()

	ctx := context.Background()
	assert.Equal(t, config.DriverMemory, stores.Driver)
	assert.NoError(t, stores.Migrate(ctx))
	assert.NoError(t, stores.Ping(ctx))
	assert.ErrorIs(t, stores.Seed("admin@example.com", "password123"), ErrSeedUnsupported)

	n, err := stores.Sequence.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := config.FromEnv()
	cfg.Database.Driver = "sqlite"

	_, err := Open(cfg, logger.Discard())
	assert.Error(t, err)
}

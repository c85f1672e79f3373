package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/greenblatt/pkg/config"
)

func TestNew_MissingURL(t *testing.T) {
	_, err := New(&config.Config{})
	assert.True(t, errors.Is(err, ErrMissingURL))
}

func TestSchemaEmbedded(t *testing.T) {
	assert.Contains(t, schema, "portfolio_holdings")
	assert.Contains(t, schema, "companies")
}

func TestNewAndMigrate(t *testing.T) {
	// Skip if DATABASE_URL is not set
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	db, err := New(cfg)
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, db.Migrate(ctx))

	status, err := db.HealthCheck(ctx)
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.Greater(t, status.TotalConns, int32(0))
}

package portfolio

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/greenblatt/internal/contracts"
	"github.com/wonny/greenblatt/pkg/config"
	"github.com/wonny/greenblatt/pkg/database"
)

func TestRepository_Lifecycle(t *testing.T) {
	// Skip if DATABASE_URL is not set
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	db, err := database.New(cfg)
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, db.Migrate(ctx))

	repo := NewRepository(db.Pool)

	p, err := repo.CreatePortfolio(ctx, "  test portfolio ")
	require.NoError(t, err)
	assert.Equal(t, "test portfolio", p.Name)

	saved, err := repo.AddHoldings(ctx, p.ID, []contracts.Holding{
		{Ticker: "aapl", Shares: 3},
		{Ticker: "msft", Shares: 0},
	})
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "AAPL", saved[0].Ticker)

	got, err := repo.GetPortfolio(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Holdings, 1)

	require.NoError(t, repo.DeleteHolding(ctx, p.ID, saved[0].ID))
	err = repo.DeleteHolding(ctx, p.ID, saved[0].ID)
	assert.True(t, errors.Is(err, contracts.ErrHoldingNotFound))

	_, err = repo.GetPortfolio(ctx, -1)
	assert.True(t, errors.Is(err, contracts.ErrPortfolioNotFound))

	_, err = repo.AddHoldings(ctx, -1, []contracts.Holding{{Ticker: "AAPL", Shares: 1}})
	assert.True(t, errors.Is(err, contracts.ErrPortfolioNotFound))

	_, err = db.Pool.Exec(ctx, `DELETE FROM portfolios WHERE id = $1`, p.ID)
	require.NoError(t, err)
}

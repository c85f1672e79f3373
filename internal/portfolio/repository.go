package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/greenblatt/internal/contracts"
)

// Repository handles portfolio and holding persistence
// ⭐ SSOT: portfolio data is stored and read here only
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new portfolio repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreatePortfolio inserts a named portfolio
func (r *Repository) CreatePortfolio(ctx context.Context, name string) (*contracts.Portfolio, error) {
	query := `
		INSERT INTO portfolios (name)
		VALUES ($1)
		RETURNING id, name, created_at
	`

	var p contracts.Portfolio
	if err := r.pool.QueryRow(ctx, query, strings.TrimSpace(name)).Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create portfolio: %w", err)
	}
	return &p, nil
}

// ListPortfolios returns every portfolio, newest first
func (r *Repository) ListPortfolios(ctx context.Context) ([]contracts.Portfolio, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM portfolios ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolios: %w", err)
	}
	defer rows.Close()

	portfolios := make([]contracts.Portfolio, 0)
	for rows.Next() {
		var p contracts.Portfolio
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		portfolios = append(portfolios, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return portfolios, nil
}

// GetPortfolio returns a portfolio with its holdings
func (r *Repository) GetPortfolio(ctx context.Context, id int64) (*contracts.Portfolio, error) {
	var p contracts.Portfolio
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM portfolios WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("portfolio %d: %w", id, contracts.ErrPortfolioNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}

	holdings, err := r.ListHoldings(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Holdings = holdings

	return &p, nil
}

// AddHoldings inserts holdings in one transaction and returns them with IDs
func (r *Repository) AddHoldings(ctx context.Context, portfolioID int64, holdings []contracts.Holding) ([]contracts.Holding, error) {
	holdings = Normalize(holdings)
	if len(holdings) == 0 {
		return []contracts.Holding{}, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM portfolios WHERE id = $1)`, portfolioID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check portfolio: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("portfolio %d: %w", portfolioID, contracts.ErrPortfolioNotFound)
	}

	query := `
		INSERT INTO portfolio_holdings (portfolio_id, ticker, shares)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	saved := make([]contracts.Holding, 0, len(holdings))
	for _, h := range holdings {
		h.PortfolioID = portfolioID
		if err := tx.QueryRow(ctx, query, portfolioID, h.Ticker, h.Shares).Scan(&h.ID); err != nil {
			return nil, fmt.Errorf("failed to insert holding %s: %w", h.Ticker, err)
		}
		saved = append(saved, h)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return saved, nil
}

// DeleteHolding removes one holding from a portfolio
func (r *Repository) DeleteHolding(ctx context.Context, portfolioID, holdingID int64) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM portfolio_holdings WHERE id = $1 AND portfolio_id = $2`,
		holdingID, portfolioID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("holding %d: %w", holdingID, contracts.ErrHoldingNotFound)
	}
	return nil
}

// ListHoldings returns the holdings of a portfolio in insertion order
func (r *Repository) ListHoldings(ctx context.Context, portfolioID int64) ([]contracts.Holding, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, portfolio_id, ticker, shares
		FROM portfolio_holdings
		WHERE portfolio_id = $1
		ORDER BY id
	`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	holdings := make([]contracts.Holding, 0)
	for rows.Next() {
		var h contracts.Holding
		if err := rows.Scan(&h.ID, &h.PortfolioID, &h.Ticker, &h.Shares); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return holdings, nil
}

package universe

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/greenblatt/internal/contracts"
)

// Repository handles company persistence
// ⭐ SSOT: the ranking universe is stored and read here only
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new company repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert stores or replaces a company profile
func (r *Repository) Upsert(ctx context.Context, company contracts.Company) error {
	profileJSON, err := json.Marshal(company.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	query := `
		INSERT INTO companies (symbol, profile, last_updated)
		VALUES ($1, $2, $3)
		ON CONFLICT (symbol) DO UPDATE SET
			profile = EXCLUDED.profile,
			last_updated = EXCLUDED.last_updated
	`

	if _, err := r.pool.Exec(ctx, query, company.Symbol, profileJSON, company.LastUpdated); err != nil {
		return fmt.Errorf("failed to upsert company %s: %w", company.Symbol, err)
	}
	return nil
}

// List returns every stored company ordered by symbol
func (r *Repository) List(ctx context.Context) ([]contracts.Company, error) {
	rows, err := r.pool.Query(ctx, `SELECT symbol, profile, last_updated FROM companies ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	defer rows.Close()

	companies := make([]contracts.Company, 0)
	for rows.Next() {
		var (
			c           contracts.Company
			profileJSON []byte
		)
		if err := rows.Scan(&c.Symbol, &profileJSON, &c.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		if err := json.Unmarshal(profileJSON, &c.Profile); err != nil {
			return nil, fmt.Errorf("unmarshal profile %s: %w", c.Symbol, err)
		}
		companies = append(companies, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return companies, nil
}

// Symbols returns the stored symbols ordered alphabetically
func (r *Repository) Symbols(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT symbol FROM companies ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	symbols := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return symbols, nil
}

// Delete removes a company
func (r *Repository) Delete(ctx context.Context, symbol string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE symbol = $1`, symbol)
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("company %s: %w", symbol, contracts.ErrSymbolNotFound)
	}
	return nil
}

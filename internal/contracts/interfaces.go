package contracts

import "context"

// QuoteProvider returns live quotes
// ⭐ SSOT: used by the symbol resolver to probe candidates
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (*Quote, error)
}

// FundamentalsProvider returns the raw snapshot for a resolved symbol
type FundamentalsProvider interface {
	Snapshot(ctx context.Context, symbol string) (*Snapshot, error)
}

// NarrativeProvider turns a metrics bundle into free text
type NarrativeProvider interface {
	Analyze(ctx context.Context, bundle any) (string, error)
}

// ProfileSource returns the profile for a raw ticker
type ProfileSource interface {
	Profile(ctx context.Context, ticker string) (*FinancialProfile, error)
}

// HoldingStore persists portfolios and holdings
type HoldingStore interface {
	CreatePortfolio(ctx context.Context, name string) (*Portfolio, error)
	ListPortfolios(ctx context.Context) ([]Portfolio, error)
	GetPortfolio(ctx context.Context, id int64) (*Portfolio, error)
	AddHoldings(ctx context.Context, portfolioID int64, holdings []Holding) ([]Holding, error)
	DeleteHolding(ctx context.Context, portfolioID, holdingID int64) error
	ListHoldings(ctx context.Context, portfolioID int64) ([]Holding, error)
}

// CompanyStore persists the ranking universe
type CompanyStore interface {
	Upsert(ctx context.Context, company Company) error
	List(ctx context.Context) ([]Company, error)
	Symbols(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, symbol string) error
}

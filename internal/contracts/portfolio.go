package contracts

import "time"

// Portfolio is a named set of holdings
type Portfolio struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Holdings  []Holding `json:"holdings,omitempty"`
}

// Holding is one position in a portfolio
type Holding struct {
	ID          int64   `json:"id"`
	PortfolioID int64   `json:"portfolioId"`
	Ticker      string  `json:"ticker"`
	Shares      float64 `json:"shares"`
}

// Company is a stored profile in the ranking universe
type Company struct {
	Symbol      string           `json:"symbol"`
	Profile     FinancialProfile `json:"profile"`
	LastUpdated time.Time        `json:"lastUpdated"`
}

package contracts

import "time"

// Snapshot is the raw upstream payload for one symbol
// ⭐ SSOT: provider → extractor handoff
type Snapshot struct {
	Symbol  string           `json:"symbol"`
	Series  []StatementEntry `json:"series"` // chronological, oldest first
	Summary QuoteSummary     `json:"summary"`
	Quote   *Quote           `json:"quote,omitempty"`
}

// Empty reports whether the snapshot carries no statement series and no financialData
func (s *Snapshot) Empty() bool {
	return len(s.Series) == 0 && s.Summary.FinancialData == nil
}

// StatementEntry is one reporting period of named numeric fields
type StatementEntry struct {
	Date   time.Time          `json:"date"`
	Fields map[string]float64 `json:"fields"`
}

// Quote is a live quote
type Quote struct {
	Symbol             string   `json:"symbol"`
	ShortName          string   `json:"shortName,omitempty"`
	Currency           string   `json:"currency,omitempty"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	MarketCap          *float64 `json:"marketCap"`
}

// HasPrice reports whether the quote carries a positive market price
func (q *Quote) HasPrice() bool {
	return q != nil && q.RegularMarketPrice != nil && *q.RegularMarketPrice > 0
}

// QuoteSummary groups the summary modules used by the extractor
type QuoteSummary struct {
	FinancialData *FinancialData      `json:"financialData,omitempty"`
	KeyStatistics *KeyStatistics      `json:"defaultKeyStatistics,omitempty"`
	SummaryDetail *SummaryDetail      `json:"summaryDetail,omitempty"`
	Cashflows     []CashflowStatement `json:"cashflowStatements,omitempty"`
}

// FinancialData mirrors the financialData summary module
type FinancialData struct {
	EBIT                    *float64 `json:"ebit"`
	OperatingIncome         *float64 `json:"operatingIncome"`
	EBITDA                  *float64 `json:"ebitda"`
	Depreciation            *float64 `json:"depreciation"`
	InterestExpense         *float64 `json:"interestExpense"`
	MarketCap               *float64 `json:"marketCap"`
	TotalDebt               *float64 `json:"totalDebt"`
	TotalCash               *float64 `json:"totalCash"`
	ReturnOnEquity          *float64 `json:"returnOnEquity"`
	ReturnOnInvestedCapital *float64 `json:"returnOnInvestedCapital"`
	GrossMargins            *float64 `json:"grossMargins"`
	OperatingMargins        *float64 `json:"operatingMargins"`
	DebtToEquity            *float64 `json:"debtToEquity"`
	RevenueGrowth           *float64 `json:"revenueGrowth"`
	EarningsGrowth          *float64 `json:"earningsGrowth"`
	FreeCashflow            *float64 `json:"freeCashflow"`
	TotalRevenue            *float64 `json:"totalRevenue"`
	CurrentRatio            *float64 `json:"currentRatio"`
}

// KeyStatistics mirrors the defaultKeyStatistics summary module
type KeyStatistics struct {
	EnterpriseValue *float64 `json:"enterpriseValue"`
	MarketCap       *float64 `json:"marketCap"`
}

// SummaryDetail mirrors the summaryDetail summary module
type SummaryDetail struct {
	TrailingPE *float64 `json:"trailingPE"`
}

// CashflowStatement is one annual cash-flow statement, newest first in QuoteSummary
type CashflowStatement struct {
	EndDate         time.Time `json:"endDate"`
	InterestExpense *float64  `json:"interestExpense"`
}

package contracts

// FinancialProfile is the canonical per-company metric set
// ⭐ SSOT: every ranking and scoring stage reads from this struct only
// nil means "not reported"; zero is a reported zero.
type FinancialProfile struct {
	Symbol string `json:"symbol"`

	// Greenblatt inputs
	EBIT              *float64 `json:"ebit"`
	EnterpriseValue   *float64 `json:"enterpriseValue"`
	MarketCap         *float64 `json:"marketCap"`
	Debt              *float64 `json:"debt"`
	Cash              *float64 `json:"cash"`
	NetFixedAssets    *float64 `json:"netFixedAssets"`
	NetWorkingCapital *float64 `json:"netWorkingCapital"`

	// Quality inputs
	ReturnOnEquity          *float64 `json:"returnOnEquity"`
	ReturnOnInvestedCapital *float64 `json:"returnOnInvestedCapital"`
	GrossMargin             *float64 `json:"grossMargin"`
	OperatingMargin         *float64 `json:"operatingMargin"`
	DebtToEquity            *float64 `json:"debtToEquity"`
	RevenueGrowth           *float64 `json:"revenueGrowth"`
	EarningsGrowth          *float64 `json:"earningsGrowth"`
	PriceToEarnings         *float64 `json:"priceToEarnings"`
	FreeCashFlow            *float64 `json:"freeCashFlow"`
	Revenue                 *float64 `json:"revenue"`
	CurrentRatio            *float64 `json:"currentRatio"`
	InterestCoverage        *float64 `json:"interestCoverage"`

	// Chronological, oldest first
	HistoricalEarnings     []float64 `json:"historicalEarnings"`
	HistoricalGrossMargins []float64 `json:"historicalGrossMargins"`

	RiskFreeRate *float64 `json:"riskFreeRate"`
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

// ValueOr dereferences p, returning def when p is nil
func ValueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

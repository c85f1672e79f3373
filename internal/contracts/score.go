package contracts

// Category maxima for the quality score
const (
	MaxCapitalEfficiency   = 25
	MaxBusinessQuality     = 35
	MaxFinancialStrength   = 25
	MaxValuationDiscipline = 15
	MaxScore               = 100
)

// Score is the 0-100 quality composite for one profile
// ⭐ SSOT: quality scorer output
type Score struct {
	Total     int            `json:"total"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	Derived   DerivedMetrics `json:"derived"`
}

// ScoreBreakdown holds the points awarded per category
type ScoreBreakdown struct {
	CapitalEfficiency   int `json:"capitalEfficiency"`
	BusinessQuality     int `json:"businessQuality"`
	FinancialStrength   int `json:"financialStrength"`
	ValuationDiscipline int `json:"valuationDiscipline"`
}

// Sum adds the four categories
func (b ScoreBreakdown) Sum() int {
	return b.CapitalEfficiency + b.BusinessQuality + b.FinancialStrength + b.ValuationDiscipline
}

// DerivedMetrics are intermediate ratios computed while scoring
type DerivedMetrics struct {
	FCFMargin        *float64 `json:"fcfMargin"`
	FCFYield         *float64 `json:"fcfYield"`
	EquityBondSpread *float64 `json:"equityBondSpread"`
	ReturnOnCapital  *float64 `json:"returnOnCapital"`
}

package buffett

import (
	"math"

	"github.com/wonny/greenblatt/internal/contracts"
)

// DefaultRiskFreeRate applies when neither the profile nor the scorer carries one
const DefaultRiskFreeRate = 0.045

// Scorer computes the tiered 0-100 quality score
// ⭐ SSOT: quality thresholds live here only
type Scorer struct {
	riskFreeRate float64
}

// NewScorer creates a scorer whose fallback risk-free rate is riskFreeRate
func NewScorer(riskFreeRate float64) *Scorer {
	if riskFreeRate <= 0 {
		riskFreeRate = DefaultRiskFreeRate
	}
	return &Scorer{riskFreeRate: riskFreeRate}
}

// neutral is awarded when the governing metric is absent
func neutral(max int) int {
	return int(math.Round(float64(max) / 2))
}

// tier awards points[i] for the first threshold v exceeds, else floor
func tier(v float64, thresholds []float64, points []int, floor int) int {
	for i, th := range thresholds {
		if v > th {
			return points[i]
		}
	}
	return floor
}

// Score never fails; absent metrics earn half the points of their slot
func (s *Scorer) Score(p contracts.FinancialProfile) contracts.Score {
	var derived contracts.DerivedMetrics

	// 1. Capital efficiency (25)
	returnOnCapital := p.ReturnOnInvestedCapital
	if returnOnCapital == nil {
		returnOnCapital = p.ReturnOnEquity
	}
	derived.ReturnOnCapital = returnOnCapital
	derived.FCFMargin = ratio(p.FreeCashFlow, p.Revenue)

	capitalEfficiency := scoreOrNeutral(returnOnCapital, 12, func(v float64) int {
		return tier(v, []float64{0.25, 0.18, 0.12, 0.08}, []int{12, 10, 6, 3}, 1)
	}) + scoreOrNeutral(derived.FCFMargin, 13, func(v float64) int {
		return tier(v, []float64{0.25, 0.15, 0.08, 0.03}, []int{13, 10, 6, 3}, 1)
	})

	// 2. Business quality (35)
	businessQuality := scoreOrNeutral(p.GrossMargin, 8, func(v float64) int {
		return tier(v, []float64{0.6, 0.45, 0.3}, []int{8, 6, 3}, 1)
	}) + marginStability(p.HistoricalGrossMargins) +
		scoreOrNeutral(p.OperatingMargin, 8, func(v float64) int {
			return tier(v, []float64{0.3, 0.18, 0.1}, []int{8, 6, 3}, 1)
		}) + earningsConsistency(p.HistoricalEarnings, p.EarningsGrowth)

	// 3. Financial strength (25)
	financialStrength := scoreOrNeutral(p.DebtToEquity, 10, func(v float64) int {
		switch {
		case v < 40:
			return 10
		case v < 100:
			return 7
		case v < 180:
			return 4
		default:
			return 1
		}
	}) + scoreOrNeutral(p.CurrentRatio, 8, func(v float64) int {
		return tier(v, []float64{1.8, 1.2, 1}, []int{8, 6, 4}, 2)
	}) + scoreOrNeutral(p.InterestCoverage, 7, func(v float64) int {
		return tier(v, []float64{15, 8, 4}, []int{7, 5, 3}, 1)
	})

	// 4. Valuation discipline (15)
	derived.FCFYield = ratio(p.FreeCashFlow, p.MarketCap)
	if derived.FCFYield != nil {
		rate := s.riskFreeRate
		if p.RiskFreeRate != nil {
			rate = *p.RiskFreeRate
		}
		derived.EquityBondSpread = contracts.Float(*derived.FCFYield - rate)
	}
	valuationDiscipline := scoreOrNeutral(derived.EquityBondSpread, 15, func(v float64) int {
		return tier(v, []float64{0.05, 0.03, 0.01, 0}, []int{15, 12, 8, 5}, 2)
	})

	breakdown := contracts.ScoreBreakdown{
		CapitalEfficiency:   capitalEfficiency,
		BusinessQuality:     businessQuality,
		FinancialStrength:   financialStrength,
		ValuationDiscipline: valuationDiscipline,
	}

	return contracts.Score{
		Total:     clamp(breakdown.Sum(), 0, contracts.MaxScore),
		Breakdown: breakdown,
		Derived:   derived,
	}
}

func scoreOrNeutral(v *float64, max int, score func(float64) int) int {
	if v == nil || math.IsNaN(*v) {
		return neutral(max)
	}
	return score(*v)
}

// marginStability needs at least three samples; tighter spread scores higher
func marginStability(margins []float64) int {
	if len(margins) < 3 {
		return neutral(7)
	}
	lo, hi := margins[0], margins[0]
	for _, m := range margins[1:] {
		lo = math.Min(lo, m)
		hi = math.Max(hi, m)
	}
	switch spread := hi - lo; {
	case spread < 0.04:
		return 7
	case spread < 0.08:
		return 5
	default:
		return 2
	}
}

// earningsConsistency uses five years of history, then growth, then neutral
func earningsConsistency(history []float64, growth *float64) int {
	if len(history) >= 5 {
		allPositive, growing := true, true
		for i, e := range history {
			if e <= 0 {
				allPositive = false
			}
			if i > 0 && e < history[i-1] {
				growing = false
			}
		}
		switch {
		case allPositive && growing:
			return 12
		case allPositive:
			return 8
		default:
			return 3
		}
	}
	if growth != nil && !math.IsNaN(*growth) {
		return tier(*growth, []float64{0.15, 0.07}, []int{8, 5}, 3)
	}
	return neutral(12)
}

// ratio returns num/den when both are present and den is non-zero
func ratio(num, den *float64) *float64 {
	if num == nil || den == nil || *den == 0 {
		return nil
	}
	return contracts.Float(*num / *den)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

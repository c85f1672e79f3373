package fundamentals

import (
	"math"

	"github.com/wonny/greenblatt/internal/contracts"
)

// Statement field names as reported by the annual time series
const (
	FieldEBIT               = "EBIT"
	FieldEBITDA             = "EBITDA"
	FieldOperatingIncome    = "operatingIncome"
	FieldDepreciation       = "reconciledDepreciation"
	FieldInterestExpense    = "interestExpense"
	FieldNetPPE             = "netPPE"
	FieldCurrentAssets      = "currentAssets"
	FieldCurrentLiabilities = "currentLiabilities"
	FieldTotalDebt          = "totalDebt"
	FieldCash               = "cashAndCashEquivalents"
	FieldNetIncome          = "netIncome"
	FieldGrossProfit        = "grossProfit"
	FieldTotalRevenue       = "totalRevenue"
)

// Latest scans series newest-first and returns the first non-zero value of field, else 0
func Latest(series []contracts.StatementEntry, field string) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if v, ok := series[i].Fields[field]; ok && v != 0 && !math.IsNaN(v) {
			return v
		}
	}
	return 0
}

// Extractor normalizes raw snapshots into profiles
// ⭐ SSOT: fallback chains for missing upstream fields live here only
type Extractor struct {
	riskFreeRate float64
}

// NewExtractor creates an extractor stamping riskFreeRate onto every profile
func NewExtractor(riskFreeRate float64) *Extractor {
	return &Extractor{riskFreeRate: riskFreeRate}
}

// Extract builds a profile from snap; it never fails
func (e *Extractor) Extract(snap *contracts.Snapshot) contracts.FinancialProfile {
	series := snap.Series
	fd := snap.Summary.FinancialData
	if fd == nil {
		fd = &contracts.FinancialData{}
	}
	ks := snap.Summary.KeyStatistics
	if ks == nil {
		ks = &contracts.KeyStatistics{}
	}
	sd := snap.Summary.SummaryDetail
	if sd == nil {
		sd = &contracts.SummaryDetail{}
	}

	p := contracts.FinancialProfile{
		Symbol: snap.Symbol,

		ReturnOnEquity:          fd.ReturnOnEquity,
		ReturnOnInvestedCapital: fd.ReturnOnInvestedCapital,
		GrossMargin:             fd.GrossMargins,
		OperatingMargin:         fd.OperatingMargins,
		DebtToEquity:            fd.DebtToEquity,
		RevenueGrowth:           fd.RevenueGrowth,
		EarningsGrowth:          fd.EarningsGrowth,
		PriceToEarnings:         sd.TrailingPE,
		FreeCashFlow:            fd.FreeCashflow,
		Revenue:                 fd.TotalRevenue,
		CurrentRatio:            fd.CurrentRatio,

		HistoricalEarnings:     historicalEarnings(series),
		HistoricalGrossMargins: historicalGrossMargins(series),

		RiskFreeRate: contracts.Float(e.riskFreeRate),
	}

	p.EBIT = resolveEBIT(fd, series)

	p.NetFixedAssets = contracts.Float(Latest(series, FieldNetPPE))
	p.NetWorkingCapital = contracts.Float(Latest(series, FieldCurrentAssets) - Latest(series, FieldCurrentLiabilities))

	var quoteCap *float64
	if snap.Quote != nil {
		quoteCap = snap.Quote.MarketCap
	}
	marketCap := firstNonZero(value(quoteCap), value(fd.MarketCap), value(ks.MarketCap))
	debt := firstNonZero(value(fd.TotalDebt), Latest(series, FieldTotalDebt))
	cash := firstNonZero(value(fd.TotalCash), Latest(series, FieldCash))

	p.MarketCap = contracts.Float(marketCap)
	p.Debt = contracts.Float(debt)
	p.Cash = contracts.Float(cash)

	if ks.EnterpriseValue != nil {
		p.EnterpriseValue = contracts.Float(*ks.EnterpriseValue)
	} else {
		p.EnterpriseValue = contracts.Float(marketCap + debt - cash)
	}

	p.InterestCoverage = interestCoverage(p.EBIT, resolveInterestExpense(fd, snap.Summary.Cashflows, series))

	return p
}

// resolveEBIT walks ebit → series EBIT → operating income → EBITDA minus depreciation
func resolveEBIT(fd *contracts.FinancialData, series []contracts.StatementEntry) *float64 {
	if v := value(fd.EBIT); v != 0 {
		return contracts.Float(v)
	}
	if v := Latest(series, FieldEBIT); v != 0 {
		return contracts.Float(v)
	}
	if v := firstNonZero(value(fd.OperatingIncome), Latest(series, FieldOperatingIncome)); v != 0 {
		return contracts.Float(v)
	}

	ebitda := firstNonZero(value(fd.EBITDA), Latest(series, FieldEBITDA))
	depreciation := firstNonZero(value(fd.Depreciation), Latest(series, FieldDepreciation))
	if ebitda != 0 && depreciation != 0 {
		return contracts.Float(ebitda - depreciation)
	}
	return nil
}

// resolveInterestExpense prefers the newest cash-flow statement over the income statement
func resolveInterestExpense(fd *contracts.FinancialData, cashflows []contracts.CashflowStatement, series []contracts.StatementEntry) *float64 {
	if cf := newestCashflow(cashflows); cf != nil && value(cf.InterestExpense) != 0 {
		return contracts.Float(*cf.InterestExpense)
	}
	if v := firstNonZero(value(fd.InterestExpense), Latest(series, FieldInterestExpense)); v != 0 {
		return contracts.Float(v)
	}
	return nil
}

// newestCashflow returns the statement with the latest end date, or the first when undated
func newestCashflow(cashflows []contracts.CashflowStatement) *contracts.CashflowStatement {
	if len(cashflows) == 0 {
		return nil
	}
	newest := &cashflows[0]
	for i := range cashflows[1:] {
		if cashflows[i+1].EndDate.After(newest.EndDate) {
			newest = &cashflows[i+1]
		}
	}
	return newest
}

func interestCoverage(ebit, interestExpense *float64) *float64 {
	if value(ebit) == 0 || value(interestExpense) == 0 {
		return nil
	}
	return contracts.Float(math.Abs(*ebit / *interestExpense))
}

func historicalEarnings(series []contracts.StatementEntry) []float64 {
	var out []float64
	for _, entry := range series {
		if v, ok := entry.Fields[FieldNetIncome]; ok {
			out = append(out, v)
		}
	}
	return out
}

func historicalGrossMargins(series []contracts.StatementEntry) []float64 {
	var out []float64
	for _, entry := range series {
		gp, okGP := entry.Fields[FieldGrossProfit]
		rev, okRev := entry.Fields[FieldTotalRevenue]
		if okGP && okRev && rev != 0 {
			out = append(out, gp/rev)
		}
	}
	return out
}

func value(p *float64) float64 {
	if p == nil || math.IsNaN(*p) {
		return 0
	}
	return *p
}

func firstNonZero(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

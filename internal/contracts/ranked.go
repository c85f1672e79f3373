package contracts

// RankedEntity is a profile with its Magic Formula factors and ranks
// ⭐ SSOT: ranker output, recomputed per universe and never persisted
type RankedEntity struct {
	FinancialProfile

	EarningYield     float64 `json:"earningYield"`
	ROC              float64 `json:"roc"`
	EarningYieldRank int     `json:"earningYieldRank"` // 1 = highest yield
	ROCRank          int     `json:"rocRank"`          // 1 = highest ROC
	CombinedRank     int     `json:"combinedRank"`     // lower is better
}

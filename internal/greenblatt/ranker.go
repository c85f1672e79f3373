package greenblatt

import (
	"sort"

	"github.com/wonny/greenblatt/internal/contracts"
	"github.com/wonny/greenblatt/pkg/logger"
)

// Ranker orders a universe by the Magic Formula rank sum
// ⭐ SSOT: earnings yield and ROC are computed here only
type Ranker struct {
	logger *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(log *logger.Logger) *Ranker {
	return &Ranker{logger: log.WithComponent("greenblatt")}
}

// EarningYield returns EBIT / EV, 0 when EV is zero or absent
func EarningYield(p contracts.FinancialProfile) float64 {
	ev := contracts.ValueOr(p.EnterpriseValue, 0)
	if ev == 0 {
		return 0
	}
	return contracts.ValueOr(p.EBIT, 0) / ev
}

// ROC returns EBIT / (net fixed assets + net working capital), 0 when the base is zero
func ROC(p contracts.FinancialProfile) float64 {
	capital := contracts.ValueOr(p.NetFixedAssets, 0) + contracts.ValueOr(p.NetWorkingCapital, 0)
	if capital == 0 {
		return 0
	}
	return contracts.ValueOr(p.EBIT, 0) / capital
}

// Entity computes the unranked factors for one profile
func Entity(p contracts.FinancialProfile) contracts.RankedEntity {
	return contracts.RankedEntity{
		FinancialProfile: p,
		EarningYield:     EarningYield(p),
		ROC:              ROC(p),
	}
}

// Indexed is a ranked entity with the position of its profile in the input
type Indexed struct {
	Index int
	contracts.RankedEntity
}

// Rank scores every profile and returns them ascending by combined rank.
// Missing inputs rank as a literal 0 factor. Ties keep input order.
func (r *Ranker) Rank(profiles []contracts.FinancialProfile) []contracts.RankedEntity {
	indexed := r.RankIndexed(profiles)
	out := make([]contracts.RankedEntity, len(indexed))
	for i, e := range indexed {
		out[i] = e.RankedEntity
	}
	return out
}

// RankIndexed is Rank keeping each entity's input position
func (r *Ranker) RankIndexed(profiles []contracts.FinancialProfile) []Indexed {
	entities := make([]Indexed, len(profiles))
	for i, p := range profiles {
		entities[i] = Indexed{Index: i, RankedEntity: Entity(p)}
	}
	if len(entities) == 0 {
		return entities
	}

	// 1. Earnings yield rank
	byYield := indexes(len(entities))
	sort.SliceStable(byYield, func(i, j int) bool {
		return entities[byYield[i]].EarningYield > entities[byYield[j]].EarningYield
	})
	for pos, idx := range byYield {
		entities[idx].EarningYieldRank = pos + 1
	}

	// 2. ROC rank
	byROC := indexes(len(entities))
	sort.SliceStable(byROC, func(i, j int) bool {
		return entities[byROC[i]].ROC > entities[byROC[j]].ROC
	})
	for pos, idx := range byROC {
		entities[idx].ROCRank = pos + 1
	}

	// 3. Combined
	for i := range entities {
		entities[i].CombinedRank = entities[i].EarningYieldRank + entities[i].ROCRank
	}
	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].CombinedRank < entities[j].CombinedRank
	})

	r.logger.WithFields(map[string]interface{}{
		"universe": len(entities),
		"top":      entities[0].Symbol,
		"top_rank": entities[0].CombinedRank,
	}).Debug("Universe ranked")

	return entities
}

func indexes(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

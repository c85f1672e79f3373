package portfolio

import (
	"math"
	"strings"

	"github.com/wonny/greenblatt/internal/contracts"
)

// Normalize uppercases tickers and drops rows without a ticker or with non-positive shares
func Normalize(holdings []contracts.Holding) []contracts.Holding {
	out := make([]contracts.Holding, 0, len(holdings))
	for _, h := range holdings {
		h.Ticker = strings.ToUpper(strings.TrimSpace(h.Ticker))
		if h.Ticker == "" || math.IsNaN(h.Shares) || h.Shares <= 0 {
			continue
		}
		out = append(out, h)
	}
	return out
}

package resolver

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/wonny/greenblatt/internal/contracts"
	"github.com/wonny/greenblatt/pkg/logger"
)

// marketSeparator marks an already-qualified listing such as TCS.NS
const marketSeparator = "."

var symbolPattern = regexp.MustCompile(`^[A-Z0-9.\-]{1,20}$`)

// Normalize trims and uppercases a raw ticker
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidSymbol reports whether s is an acceptable ticker after normalization
func ValidSymbol(s string) bool {
	return symbolPattern.MatchString(Normalize(s))
}

// Resolver picks the listing of a ticker that currently trades
// ⭐ SSOT: symbol disambiguation across market suffixes
type Resolver struct {
	prober   contracts.QuoteProvider
	suffixes []string
	logger   *logger.Logger
}

// New creates a resolver trying the given suffixes, in order, after the bare ticker
func New(prober contracts.QuoteProvider, log *logger.Logger, suffixes ...string) *Resolver {
	return &Resolver{
		prober:   prober,
		suffixes: suffixes,
		logger:   log.WithComponent("resolver"),
	}
}

// Candidates lists the symbols probed for raw, in probe order
func (r *Resolver) Candidates(raw string) []string {
	base := Normalize(raw)
	if base == "" {
		return nil
	}
	if strings.Contains(base, marketSeparator) {
		return []string{base}
	}

	candidates := make([]string, 0, len(r.suffixes)+1)
	candidates = append(candidates, base)
	for _, suffix := range r.suffixes {
		if suffix == "" {
			continue
		}
		candidates = append(candidates, base+suffix)
	}
	return candidates
}

// Resolve returns the first candidate with a positive market price
func (r *Resolver) Resolve(ctx context.Context, raw string) (string, error) {
	candidates := r.Candidates(raw)
	if len(candidates) == 0 {
		return "", fmt.Errorf("empty ticker: %w", contracts.ErrInvalidSymbol)
	}

	for _, candidate := range candidates {
		quote, err := r.prober.Quote(ctx, candidate)
		if err != nil {
			// A cancelled caller should not be reported as an unknown symbol
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			r.logger.WithFields(map[string]interface{}{
				"candidate": candidate,
				"error":     err.Error(),
			}).Debug("Quote probe failed")
			continue
		}
		if quote.HasPrice() {
			r.logger.WithFields(map[string]interface{}{
				"input":    raw,
				"resolved": candidate,
			}).Debug("Symbol resolved")
			return candidate, nil
		}
	}

	r.logger.WithFields(map[string]interface{}{
		"input":      raw,
		"candidates": candidates,
	}).Warn("No candidate listing has a market price")

	return "", fmt.Errorf("%s: %w", Normalize(raw), contracts.ErrSymbolNotFound)
}

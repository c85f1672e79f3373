package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/greenblatt/internal/analysis"
	"github.com/wonny/greenblatt/pkg/logger"
)

// Analyzer produces single-symbol reports; satisfied by *analysis.Service
type Analyzer interface {
	Buffett(ctx context.Context, ticker string) (*analysis.BuffettReport, error)
	Screener(ctx context.Context, ticker string) (*analysis.ScreenerReport, error)
}

// AnalysisHandler handles single-symbol analysis endpoints
type AnalysisHandler struct {
	analyzer Analyzer
	logger   *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analyzer Analyzer, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
		logger:   log,
	}
}

// GetBuffett returns the quality score and narrative of a symbol
// GET /api/buffett/{symbol}
func (h *AnalysisHandler) GetBuffett(w http.ResponseWriter, r *http.Request) {
	report, err := h.analyzer.Buffett(r.Context(), mux.Vars(r)["symbol"])
	if err != nil {
		respondDomainError(w, h.logger, err, "Failed to analyze symbol")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// GetScreener returns the Magic Formula factors and narrative of a symbol
// GET /api/screener/{symbol}
func (h *AnalysisHandler) GetScreener(w http.ResponseWriter, r *http.Request) {
	report, err := h.analyzer.Screener(r.Context(), mux.Vars(r)["symbol"])
	if err != nil {
		respondDomainError(w, h.logger, err, "Failed to screen symbol")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

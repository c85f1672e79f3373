package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/greenblatt/internal/contracts"
	"github.com/wonny/greenblatt/internal/universe"
	"github.com/wonny/greenblatt/pkg/logger"
)

// Universe maintains the stored companies; satisfied by *universe.Service
type Universe interface {
	Refresh(ctx context.Context, symbol string) (*contracts.Company, error)
	Ranked(ctx context.Context) ([]universe.RankedCompany, error)
	Delete(ctx context.Context, symbol string) error
}

// CompanyHandler handles the ranking universe endpoints
type CompanyHandler struct {
	universe Universe
	logger   *logger.Logger
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(u Universe, log *logger.Logger) *CompanyHandler {
	return &CompanyHandler{
		universe: u,
		logger:   log,
	}
}

// ListRanked returns every stored company ranked by the Magic Formula
// GET /api/companies
func (h *CompanyHandler) ListRanked(w http.ResponseWriter, r *http.Request) {
	ranked, err := h.universe.Ranked(r.Context())
	if err != nil {
		respondDomainError(w, h.logger, err, "Failed to rank companies")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"companies": ranked,
		"count":     len(ranked),
	})
}

// Refresh recomputes and stores one company
// POST /api/companies/{symbol}
func (h *CompanyHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	company, err := h.universe.Refresh(r.Context(), mux.Vars(r)["symbol"])
	if err != nil {
		respondDomainError(w, h.logger, err, "Failed to refresh company")
		return
	}
	respondJSON(w, http.StatusOK, company)
}

// Delete removes one company
// DELETE /api/companies/{symbol}
func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.universe.Delete(r.Context(), mux.Vars(r)["symbol"]); err != nil {
		respondDomainError(w, h.logger, err, "Failed to delete company")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

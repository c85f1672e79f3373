package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/wonny/greenblatt/internal/contracts"
	"github.com/wonny/greenblatt/internal/ingest"
	"github.com/wonny/greenblatt/internal/portfolio"
	"github.com/wonny/greenblatt/pkg/logger"
)

// maxUploadSize caps CSV uploads (5 MiB)
const maxUploadSize = 5 << 20

// Aggregator ranks a holding set; satisfied by *portfolio.Aggregator
type Aggregator interface {
	Aggregate(ctx context.Context, holdings []contracts.Holding) (*portfolio.Result, error)
}

// PortfolioHandler handles portfolio and holding endpoints
// ⭐ SSOT: portfolio API handlers live in this struct only
type PortfolioHandler struct {
	store      contracts.HoldingStore
	aggregator Aggregator
	logger     *logger.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(store contracts.HoldingStore, aggregator Aggregator, log *logger.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		store:      store,
		aggregator: aggregator,
		logger:     log,
	}
}

// CreatePortfolioRequest is the body of POST /api/portfolio
type CreatePortfolioRequest struct {
	Name string `json:"name"`
}

// AddHoldingsRequest accepts one holding or a batch
type AddHoldingsRequest struct {
	Ticker   string              `json:"ticker"`
	Shares   float64             `json:"shares"`
	Holdings []contracts.Holding `json:"holdings"`
}

// Create creates a named portfolio
// POST /api/portfolio
func (h *PortfolioHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "Portfolio name required")
		return
	}

	p, err := h.store.CreatePortfolio(r.Context(), req.Name)
	if err != nil {
		respondDomainError(w, h.logger, err, "Failed to create portfolio")
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

// List returns every portfolio
// GET /api/portfolio
func (h *PortfolioHandler) List(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.store.ListPortfolios(r.Context())
	if err != nil {
		respondDomainError(w, h.logger, err, "Failed to fetch portfolios")
		return
	}
	respondJSON(w, http.StatusOK, portfolios)
}

// Get returns a portfolio with its holdings
// GET /api/portfolio/{id}
func (h *PortfolioHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid portfolio id")
		return
	}

	p, err := h.store.GetPortfolio(r.Context(), id)
	if err != nil {
		respondDomainError(w, h.logger, err, "Failed to fetch portfolio")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// AddHoldings inserts one or more holdings
// POST /api/portfolio/{id}/holdings
func (h *PortfolioHandler) AddHoldings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid portfolio id")
		return
	}

	var req AddHoldingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	holdings := req.Holdings
	if req.Ticker != "" {
		holdings = append(holdings, contracts.Holding{Ticker: req.Ticker, Shares: req.Shares})
	}
	h.save(w, r, id, portfolio.Normalize(holdings))
}

// UploadCSV imports holdings from a CSV sent as multipart field "file" or as the raw body
// POST /api/portfolio/{id}/upload-csv
func (h *PortfolioHandler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid portfolio id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			respondError(w, http.StatusBadRequest, "CSV file required in field \"file\"")
			return
		}
		defer file.Close()
		src = file
	}

	holdings, err := ingest.ParseCSV(src)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.save(w, r, id, holdings)
}

// save persists normalized holdings, rejecting an empty set
func (h *PortfolioHandler) save(w http.ResponseWriter, r *http.Request, id int64, holdings []contracts.Holding) {
	if len(holdings) == 0 {
		respondError(w, http.StatusBadRequest, "Ticker and positive shares required")
		return
	}

	saved, err := h.store.AddHoldings(r.Context(), id, holdings)
	if err != nil {
		respondDomainError(w, h.logger, err, "Failed to add holdings")
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"portfolio_id": id,
		"count":        len(saved),
	}).Info("Holdings added")

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"holdings": saved,
	})
}

// DeleteHolding removes one holding
// DELETE /api/portfolio/{id}/holdings/{holdingID}
func (h *PortfolioHandler) DeleteHolding(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	holdingID, okHolding := pathID(r, "holdingID")
	if !ok || !okHolding {
		respondError(w, http.StatusBadRequest, "Invalid portfolio or holding id")
		return
	}

	if err := h.store.DeleteHolding(r.Context(), id, holdingID); err != nil {
		respondDomainError(w, h.logger, err, "Failed to delete holding")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Greenblatt ranks the holdings of a portfolio against each other
// GET /api/portfolio/{id}/greenblatt
func (h *PortfolioHandler) Greenblatt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid portfolio id")
		return
	}

	p, err := h.store.GetPortfolio(r.Context(), id)
	if err != nil {
		respondDomainError(w, h.logger, err, "Failed to fetch portfolio")
		return
	}

	result, err := h.aggregator.Aggregate(r.Context(), p.Holdings)
	if err != nil {
		// unresolvable or unpriced holdings → 422
		status := http.StatusInternalServerError
		if statusFor(err) < http.StatusInternalServerError {
			status = http.StatusUnprocessableEntity
		}
		h.logger.WithError(err).WithField("portfolio_id", id).Error("Portfolio ranking failed")
		respondError(w, status, err.Error())
		return
	}

	p.Holdings = nil
	result.Portfolio = p
	respondJSON(w, http.StatusOK, result)
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/greenblatt/internal/api/handlers"
	"github.com/wonny/greenblatt/pkg/logger"
)

// HealthChecker reports backing store health; *database.DB satisfies it
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handlers groups the endpoint handlers; nil groups are not routed
type Handlers struct {
	Analysis  *handlers.AnalysisHandler
	Companies *handlers.CompanyHandler
	Portfolio *handlers.PortfolioHandler
	Health    HealthChecker
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: routes are registered in this function only
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(h.Health)).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Single-symbol analysis
	if h.Analysis != nil {
		api.HandleFunc("/buffett/{symbol}", h.Analysis.GetBuffett).Methods("GET")
		api.HandleFunc("/screener/{symbol}", h.Analysis.GetScreener).Methods("GET")
	}

	// Ranking universe
	if h.Companies != nil {
		api.HandleFunc("/companies", h.Companies.ListRanked).Methods("GET")
		api.HandleFunc("/companies/{symbol}", h.Companies.Refresh).Methods("POST")
		api.HandleFunc("/companies/{symbol}", h.Companies.Delete).Methods("DELETE")
	}

	// Portfolios
	if h.Portfolio != nil {
		api.HandleFunc("/portfolio", h.Portfolio.Create).Methods("POST")
		api.HandleFunc("/portfolio", h.Portfolio.List).Methods("GET")
		api.HandleFunc("/portfolio/{id:[0-9]+}", h.Portfolio.Get).Methods("GET")
		api.HandleFunc("/portfolio/{id:[0-9]+}/holdings", h.Portfolio.AddHoldings).Methods("POST")
		api.HandleFunc("/portfolio/{id:[0-9]+}/upload-csv", h.Portfolio.UploadCSV).Methods("POST")
		api.HandleFunc("/portfolio/{id:[0-9]+}/holdings/{holdingID:[0-9]+}", h.Portfolio.DeleteHolding).Methods("DELETE")
		api.HandleFunc("/portfolio/{id:[0-9]+}/greenblatt", h.Portfolio.Greenblatt).Methods("GET")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]interface{}{
			"status":  "ok",
			"service": "greenblatt-api",
		}

		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := checker.Ping(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body["database"] = err.Error()
			} else {
				body["database"] = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}

// statusRecorder captures the status written by the next handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start).String(),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

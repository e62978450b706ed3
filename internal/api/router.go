package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/sepa/internal/api/handlers"
	"github.com/wonny/sepa/pkg/logger"
)

// HealthCheck probes one dependency (database, redis)
type HealthCheck func(ctx context.Context) error

// Handlers groups every handler the router mounts
type Handlers struct {
	Analysis        *handlers.AnalysisHandler
	Recommendations *handlers.RecommendationHandler
	Scan            *handlers.ScanHandler
	Checks          map[string]HealthCheck
	Metrics         bool
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(h.Checks)).Methods("GET")

	if h.Metrics {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()

	// Evaluation endpoints
	api.HandleFunc("/analysis/{ticker}", h.Analysis.Analyze).Methods("GET")
	api.HandleFunc("/scan", h.Scan.Scan).Methods("POST")

	// Stored results
	api.HandleFunc("/recommendations", h.Recommendations.List).Methods("GET")
	api.HandleFunc("/recommendations/{ticker}", h.Recommendations.Latest).Methods("GET")

	// Apply middleware
	r.Use(metricsMiddleware)
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status; any failing check yields 503
func healthCheckHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := "ok"
		code := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  status,
			"service": "sepa-api",
			"checks":  results,
		})
	}
}

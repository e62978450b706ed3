package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/sepa/internal/api/handlers"
	"github.com/wonny/sepa/internal/contracts"
	"github.com/wonny/sepa/internal/metrics"
	"github.com/wonny/sepa/pkg/logger"
)

type panicAnalyzer struct{}

func (panicAnalyzer) Analyze(context.Context, string) (*contracts.Recommendation, error) {
	panic("boom")
}

type okAnalyzer struct{}

func (okAnalyzer) Analyze(_ context.Context, ticker string) (*contracts.Recommendation, error) {
	return &contracts.Recommendation{Ticker: ticker}, nil
}

func newTestRouter(a handlers.TickerAnalyzer, checks map[string]HealthCheck) http.Handler {
	log := logger.NewNop()
	return NewRouter(Handlers{
		Analysis:        handlers.NewAnalysisHandler(a, nil, log),
		Recommendations: handlers.NewRecommendationHandler(nil, log),
		Scan:            handlers.NewScanHandler(nil, nil, log),
		Checks:          checks,
		Metrics:         true,
	}, log)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]HealthCheck
		wantStatus int
		wantState  string
	}{
		{"no checks", nil, http.StatusOK, "ok"},
		{"all healthy", map[string]HealthCheck{"database": func(context.Context) error { return nil }}, http.StatusOK, "ok"},
		{"redis down", map[string]HealthCheck{
			"database": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			newTestRouter(okAnalyzer{}, tt.checks).ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))

			assert.Equal(t, tt.wantStatus, rr.Code)

			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.wantState, body.Status)
			assert.Len(t, body.Checks, len(tt.checks))
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(panicAnalyzer{}, nil).ServeHTTP(rr, httptest.NewRequest("GET", "/api/analysis/NVDA", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Internal server error")
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	router := newTestRouter(okAnalyzer{}, nil)
	counter := metrics.HTTPRequests.WithLabelValues("/api/analysis/{ticker}", "GET", "200")
	before := testutil.ToFloat64(counter)

	for _, ticker := range []string{"NVDA", "AAPL", "MSFT"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/analysis/"+ticker, nil))
		require.Equal(t, http.StatusOK, rr.Code)
	}

	assert.Equal(t, before+3, testutil.ToFloat64(counter))
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.Register()
	router := newTestRouter(okAnalyzer{}, nil)

	// 최소 한 건의 요청이 기록되어야 시리즈가 노출됨
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "sepa_api_requests_total")
}

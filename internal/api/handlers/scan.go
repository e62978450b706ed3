package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/wonny/sepa/internal/analyzer"
	"github.com/wonny/sepa/internal/contracts"
	"github.com/wonny/sepa/pkg/logger"
)

// maxScanTickers bounds a synchronous scan request
const maxScanTickers = 200

// BatchRunner evaluates many tickers
type BatchRunner interface {
	Run(ctx context.Context, tickers []string) ([]analyzer.Result, analyzer.RunSummary, error)
}

// ScanHandler runs an on-demand batch evaluation
type ScanHandler struct {
	runner BatchRunner
	repo   contracts.RecommendationRepository // optional
	logger *logger.Logger
}

// NewScanHandler creates a new scan handler; repo may be nil
func NewScanHandler(runner BatchRunner, repo contracts.RecommendationRepository, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		runner: runner,
		repo:   repo,
		logger: log,
	}
}

// ScanRequest is the POST /api/scan body
type ScanRequest struct {
	Tickers []string `json:"tickers"`
	Save    bool     `json:"save"`
}

// ScanItem is one ticker of a scan response
type ScanItem struct {
	Ticker         string                    `json:"ticker"`
	Recommendation *contracts.Recommendation `json:"recommendation,omitempty"`
	Error          string                    `json:"error,omitempty"`
}

// Scan evaluates the posted tickers
// POST /api/scan {"tickers": ["NVDA", "AAPL"], "save": true}
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Tickers) == 0 {
		respondError(w, http.StatusBadRequest, "tickers is required")
		return
	}
	if len(req.Tickers) > maxScanTickers {
		respondError(w, http.StatusBadRequest, "too many tickers")
		return
	}

	results, summary, err := h.runner.Run(r.Context(), req.Tickers)
	if err != nil {
		h.logger.WithError(err).Warn("Scan aborted")
		respondError(w, statusFor(err), err.Error())
		return
	}

	saved := false
	if req.Save && h.repo != nil {
		if err := h.repo.SaveBatch(r.Context(), analyzer.Recommendations(results)); err != nil {
			h.logger.WithError(err).Error("Failed to save scan results")
		} else {
			saved = true
		}
	}

	items := make([]ScanItem, len(results))
	for i, res := range results {
		items[i] = ScanItem{Ticker: res.Ticker, Recommendation: res.Recommendation}
		if res.Error != nil {
			items[i].Error = res.Error.Error()
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"summary": map[string]interface{}{
			"total":       summary.Total,
			"success":     summary.Success,
			"failed":      summary.Failed,
			"buy_ready":   summary.BuyReady,
			"duration_ms": summary.Duration.Milliseconds(),
			"saved":       saved,
		},
		"data": items,
	})
}

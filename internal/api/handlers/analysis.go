package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/sepa/internal/contracts"
	"github.com/wonny/sepa/pkg/logger"
)

// TickerAnalyzer evaluates one ticker on demand
type TickerAnalyzer interface {
	Analyze(ctx context.Context, ticker string) (*contracts.Recommendation, error)
}

// AnalysisHandler handles live single-ticker evaluation
// ⭐ SSOT: 실시간 종목 평가 API 핸들러는 이 구조체에서만
type AnalysisHandler struct {
	analyzer TickerAnalyzer
	repo     contracts.RecommendationRepository // optional
	logger   *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler; repo may be nil
func NewAnalysisHandler(a TickerAnalyzer, repo contracts.RecommendationRepository, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: a,
		repo:     repo,
		logger:   log,
	}
}

// Analyze evaluates a ticker
// GET /api/analysis/{ticker}?save=true
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticker := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["ticker"]))

	if ticker == "" {
		respondError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	rec, err := h.analyzer.Analyze(ctx, ticker)
	if err != nil {
		status := statusFor(err)
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"ticker": ticker,
			"status": status,
		}).Warn("Analysis failed")
		respondError(w, status, err.Error())
		return
	}

	if save, _ := strconv.ParseBool(r.URL.Query().Get("save")); save && h.repo != nil {
		if err := h.repo.Save(ctx, rec); err != nil {
			// 평가는 성공했으므로 결과는 반환
			h.logger.WithError(err).WithTicker(ticker).Error("Failed to save recommendation")
		}
	}

	respondData(w, rec)
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/sepa/internal/contracts"
	"github.com/wonny/sepa/pkg/logger"
)

// RecommendationHandler serves stored evaluations
type RecommendationHandler struct {
	repo   contracts.RecommendationRepository
	logger *logger.Logger
	now    func() time.Time
}

// NewRecommendationHandler creates a new recommendation handler; repo may be nil
func NewRecommendationHandler(repo contracts.RecommendationRepository, log *logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
}

// List returns the stored recommendations of one date
// GET /api/recommendations?date=2024-03-01&buy_ready=true
func (h *RecommendationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		respondError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}

	date := h.now().UTC()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		d, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = d
	}
	buyReadyOnly, _ := strconv.ParseBool(r.URL.Query().Get("buy_ready"))

	recs, err := h.repo.ListByDate(r.Context(), date)
	if err != nil {
		h.logger.WithError(err).WithField("date", date.Format("2006-01-02")).Error("Failed to list recommendations")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve recommendations")
		return
	}

	out := make([]*contracts.Recommendation, 0, len(recs))
	for _, rec := range recs {
		if buyReadyOnly && !rec.BuyReady {
			continue
		}
		out = append(out, rec)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"date":    date.Format("2006-01-02"),
		"count":   len(out),
		"data":    out,
	})
}

// Latest returns the most recent stored recommendation of a ticker
// GET /api/recommendations/{ticker}
func (h *RecommendationHandler) Latest(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		respondError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}

	ticker := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["ticker"]))
	if ticker == "" {
		respondError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	rec, err := h.repo.GetLatest(r.Context(), ticker)
	if errors.Is(err, contracts.ErrNoData) {
		respondError(w, http.StatusNotFound, "no recommendation for "+ticker)
		return
	}
	if err != nil {
		h.logger.WithError(err).WithTicker(ticker).Error("Failed to get recommendation")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve recommendation")
		return
	}

	respondData(w, rec)
}

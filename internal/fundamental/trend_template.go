package fundamental

import (
	"github.com/wonny/sepa/internal/contracts"
	"github.com/wonny/sepa/internal/indicator"
)

// Trend Template criteria keys
const (
	CriterionPriceAboveMA150MA200 = "price_above_ma150_ma200"
	CriterionMA150AboveMA200      = "ma150_above_ma200"
	CriterionMA200Rising          = "ma200_rising"
	CriterionMA50AboveMA150MA200  = "ma50_above_ma150_ma200"
	CriterionPriceAboveMA50       = "price_above_ma50"
	CriterionAbove52WeekLow       = "above_52w_low"
	CriterionNear52WeekHigh       = "near_52w_high"
	CriterionRSRating             = "rs_rating"
)

// trendTemplate runs the 8-criterion stage 2 check.
// A criterion whose inputs are unavailable counts as false.
func (s *Scorer) trendTemplate(snap contracts.FundamentalSnapshot, line contracts.RSLine) contracts.TrendTemplate {
	tt := s.cfg.TrendTemplate
	closes := snap.Series.Closes()

	price := snap.CurrentPrice
	if price <= 0 {
		price = snap.Series.LastClose()
	}

	ma50, err50 := indicator.SMA(closes, 50)
	ma150, err150 := indicator.SMA(closes, 150)
	ma200, err200 := indicator.SMA(closes, 200)
	ma200Prev, errPrev := indicator.SMAAt(closes, 200, tt.SlopeLookback)

	high52, low52 := snap.High52W, snap.Low52W
	if high52 <= 0 || low52 <= 0 {
		if h, l, err := indicator.Range52Week(snap.Series); err == nil {
			if high52 <= 0 {
				high52 = h
			}
			if low52 <= 0 {
				low52 = l
			}
		}
	}

	has50 := err50 == nil
	has150 := err150 == nil
	has200 := err200 == nil

	criteria := map[string]bool{
		CriterionPriceAboveMA150MA200: has150 && has200 && price > ma150 && price > ma200,
		CriterionMA150AboveMA200:      has150 && has200 && ma150 > ma200,
		CriterionMA200Rising:          has200 && errPrev == nil && ma200 > ma200Prev,
		CriterionMA50AboveMA150MA200:  has50 && has150 && has200 && ma50 > ma150 && ma50 > ma200,
		CriterionPriceAboveMA50:       has50 && price > ma50,
		CriterionAbove52WeekLow:       low52 > 0 && price >= low52*tt.MinAboveLowPct,
		CriterionNear52WeekHigh:       high52 > 0 && price >= high52*tt.MinOfHighRatio,
		CriterionRSRating:             line.Available && line.Percentile >= tt.MinRSPercentile,
	}

	score := 0
	for _, ok := range criteria {
		if ok {
			score++
		}
	}

	return contracts.TrendTemplate{
		Score:    score,
		Pass:     score >= tt.PassScore,
		Criteria: criteria,
	}
}

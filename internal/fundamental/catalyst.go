package fundamental

import (
	"strings"

	"github.com/wonny/sepa/internal/contracts"
)

// catalystTiming scores the earnings calendar and analyst stance.
// Short interest is recorded in details without affecting the score.
func (s *Scorer) catalystTiming(snap contracts.FundamentalSnapshot) *contracts.ScoreComponent {
	rec := normalizeRecommendation(snap.RecommendationKey)
	if snap.DaysToEarnings == nil && rec == "" && snap.TargetPrice == nil {
		return nil
	}

	score := contracts.NeutralScore
	details := map[string]float64{}

	if snap.DaysToEarnings != nil {
		days := *snap.DaysToEarnings
		details["days_to_earnings"] = float64(days)
		switch {
		case days >= 30 && days <= 60:
			score += 30
		case days >= 15 && days <= 90:
			score += 15
		}
	}

	switch rec {
	case "strong_buy", "buy":
		score += 10
		details["analyst_recommendation"] = 1
	case "sell", "strong_sell":
		score -= 10
		details["analyst_recommendation"] = -1
	case "":
	default:
		details["analyst_recommendation"] = 0
	}

	if snap.TargetPrice != nil && snap.CurrentPrice > 0 {
		upside := (*snap.TargetPrice - snap.CurrentPrice) / snap.CurrentPrice * 100
		details["target_upside_pct"] = upside
		switch {
		case upside >= 30:
			score += 10
		case upside >= 15:
			score += 5
		case upside < -10:
			score -= 10
		}
	}

	if snap.ShortPercentOfFloat != nil {
		details["short_pct_float"] = *snap.ShortPercentOfFloat * 100
	}
	if snap.ShortRatio != nil {
		details["short_ratio"] = *snap.ShortRatio
	}

	return newComponent(score, details)
}

// normalizeRecommendation: "Strong Buy" / "strong-buy" / "strong_buy" -> "strong_buy"
func normalizeRecommendation(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	return key
}

package fundamental

import "github.com/wonny/sepa/internal/contracts"

// financialHealth scores ROE, leverage, liquidity and operating margin.
// nil when none of the ratios are published.
func (s *Scorer) financialHealth(snap contracts.FundamentalSnapshot) *contracts.ScoreComponent {
	if snap.ROE == nil && snap.DebtToEquity == nil && snap.CurrentRatio == nil && snap.OperatingMargin == nil {
		return nil
	}

	score := contracts.NeutralScore
	details := map[string]float64{}

	if snap.ROE != nil {
		roe := *snap.ROE * 100
		details["roe_pct"] = roe
		switch {
		case roe >= 25:
			score += 15
		case roe >= 17:
			score += 10
		case roe >= 10:
			score += 5
		case roe < 0:
			score -= 10
		}
	}

	// 부채비율 (%)
	if snap.DebtToEquity != nil {
		de := *snap.DebtToEquity
		details["debt_to_equity"] = de
		switch {
		case de < 30:
			score += 15
		case de < 50:
			score += 10
		case de < 100:
			score += 5
		case de > 200:
			score -= 15
		}
	}

	if snap.CurrentRatio != nil {
		cr := *snap.CurrentRatio
		details["current_ratio"] = cr
		switch {
		case cr >= 1.5 && cr <= 3.0:
			score += 10
		case cr >= 1.0:
			score += 5
		default:
			score -= 10
		}
	}

	if snap.OperatingMargin != nil {
		om := *snap.OperatingMargin * 100
		details["operating_margin_pct"] = om
		switch {
		case om >= 20:
			score += 10
		case om >= 10:
			score += 5
		}
	}

	return newComponent(score, details)
}

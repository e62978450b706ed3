package fundamental

import "github.com/wonny/sepa/internal/contracts"

// earningsQuality scores EPS growth, consistency and acceleration
func (s *Scorer) earningsQuality(snap contracts.FundamentalSnapshot, accel contracts.Acceleration) *contracts.ScoreComponent {
	eps := snap.QuarterlyEPS
	if len(eps) < s.cfg.MinQuarters {
		return nil
	}

	score := contracts.NeutralScore
	details := map[string]float64{}

	if yoy, ok := yoyGrowth(eps); ok {
		details["eps_yoy_pct"] = yoy
		switch {
		case yoy >= 50:
			score += 30
		case yoy >= 25:
			score += 20
		case yoy >= 10:
			score += 10
		case yoy < 0:
			score -= 20
		}
	}

	positive := 0
	for _, q := range eps[:4] {
		if q > 0 {
			positive++
		}
	}
	details["positive_quarters"] = float64(positive)
	switch {
	case positive == 4:
		score += 15
	case positive >= 3:
		score += 8
	}

	details["eps_accel_quarters"] = float64(accel.Quarters)
	score += accelerationBonus(accel)

	if snap.ProfitMargin != nil {
		margin := *snap.ProfitMargin * 100
		details["profit_margin_pct"] = margin
		switch {
		case margin >= 20:
			score += 10
		case margin >= 10:
			score += 5
		}
	}

	return newComponent(score, details)
}

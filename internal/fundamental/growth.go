package fundamental

import "github.com/wonny/sepa/internal/contracts"

// growthAcceleration scores revenue growth and its acceleration chain
func (s *Scorer) growthAcceleration(snap contracts.FundamentalSnapshot, accel contracts.Acceleration) *contracts.ScoreComponent {
	revenue := snap.QuarterlyRevenue
	if len(revenue) < s.cfg.MinQuarters {
		return nil
	}

	score := contracts.NeutralScore
	details := map[string]float64{}

	if yoy, ok := yoyGrowth(revenue); ok {
		details["revenue_yoy_pct"] = yoy
		switch {
		case yoy >= 30:
			score += 30
		case yoy >= 20:
			score += 20
		case yoy >= 10:
			score += 10
		case yoy < 0:
			score -= 20
		}
	}

	details["revenue_accel_quarters"] = float64(accel.Quarters)
	score += accelerationBonus(accel)

	return newComponent(score, details)
}

package fundamental

import (
	"github.com/wonny/sepa/internal/contracts"
	"github.com/wonny/sepa/internal/strategyconfig"
	"github.com/wonny/sepa/pkg/logger"
)

// Scorer computes the five weighted sub-scores and auxiliary flags of one ticker
// ⭐ SSOT: 펀더멘털 점수 계산은 여기서만
//
// Score never fails. A sub-score without data is left nil and counted as
// contracts.NeutralScore by contracts.NewFundamentalScore.
type Scorer struct {
	cfg    strategyconfig.Fundamental
	logger *logger.Logger
}

// NewScorer creates a new fundamental scorer
func NewScorer(cfg strategyconfig.Fundamental, log *logger.Logger) *Scorer {
	return &Scorer{
		cfg:    cfg,
		logger: log,
	}
}

// Score evaluates the snapshot
func (s *Scorer) Score(snap contracts.FundamentalSnapshot) contracts.FundamentalScore {
	epsAccel := detectAcceleration(snap.QuarterlyEPS)
	revAccel := detectAcceleration(snap.QuarterlyRevenue)
	rsLine := s.rsLine(snap.Series, snap.Benchmark)

	parts := contracts.ScoreParts{
		Ticker:              snap.Ticker,
		Earnings:            s.earningsQuality(snap, epsAccel),
		Growth:              s.growthAcceleration(snap, revAccel),
		RelativeStrength:    s.relativeStrength(snap, rsLine),
		Health:              s.financialHealth(snap),
		Catalyst:            s.catalystTiming(snap),
		TrendTemplate:       s.trendTemplate(snap, rsLine),
		RSLine:              rsLine,
		EPSAcceleration:     epsAccel,
		RevenueAcceleration: revAccel,
		PERatio:             snap.TrailingPE,
	}

	w := s.cfg.Weights
	score := contracts.NewFundamentalScore(parts, contracts.ComponentWeights{
		Earnings:         w.Earnings,
		Growth:           w.Growth,
		RelativeStrength: w.RelativeStrength,
		Health:           w.Health,
		Catalyst:         w.Catalyst,
	})

	s.logger.WithFields(map[string]interface{}{
		"ticker":         snap.Ticker,
		"total":          score.TotalScore,
		"tier":           score.Tier,
		"trend_template": score.TrendTemplate.Score,
		"rs_trend":       score.RSLine.Trend,
		"missing":        score.MissingComponents(),
	}).Debug("Calculated fundamental score")

	return score
}

// newComponent clamps the raw score and keeps it in details
func newComponent(raw float64, details map[string]float64) *contracts.ScoreComponent {
	details["raw_score"] = raw
	return &contracts.ScoreComponent{
		Score:   contracts.Clamp(raw, 0, 100),
		Details: details,
	}
}

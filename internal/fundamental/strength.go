package fundamental

import (
	"fmt"

	"github.com/wonny/sepa/internal/contracts"
	"github.com/wonny/sepa/internal/indicator"
)

// relativeStrength blends window momentum vs the benchmark with the RS line score.
// Either side may be missing; when both are, the component is nil.
func (s *Scorer) relativeStrength(snap contracts.FundamentalSnapshot, line contracts.RSLine) *contracts.ScoreComponent {
	details := map[string]float64{}
	rs := s.cfg.RelStrength

	momentum, hasMomentum := s.windowMomentum(snap.Series, snap.Benchmark, details)

	var lineScore float64
	if line.Available {
		lineScore = rsLineScore(line)
		details["rs_line_score"] = lineScore
		details["rs_percentile"] = line.Percentile
	}

	var raw float64
	switch {
	case hasMomentum && line.Available:
		raw = rs.MomentumBlend*momentum + rs.LineBlend*lineScore
	case hasMomentum:
		raw = momentum
	case line.Available:
		raw = lineScore
	default:
		return nil
	}

	return newComponent(raw, details)
}

// windowMomentum: 구간별 (종목 수익률 - 벤치마크 수익률)에 가중 보너스
// Both returns are measured over the same dates (RS line alignment).
func (s *Scorer) windowMomentum(stock, bench contracts.PriceSeries, details map[string]float64) (float64, bool) {
	rs := s.cfg.RelStrength
	stockCloses, benchCloses := alignedCloses(stock, bench)

	score := contracts.NeutralScore
	used := 0
	for i, window := range rs.WindowsDays {
		stockRet, err := indicator.PercentChange(stockCloses, window)
		if err != nil {
			continue
		}
		benchRet, err := indicator.PercentChange(benchCloses, window)
		if err != nil {
			continue
		}

		rel := stockRet - benchRet
		details[fmt.Sprintf("rel_return_%dd", window)] = rel
		score += windowBonus(rel, rs.WindowPoints[i])
		used++
	}

	if used == 0 {
		return 0, false
	}
	score = contracts.Clamp(score, 0, 100)
	details["momentum_score"] = score
	return score, true
}

// windowBonus scales the window weight by how far rel clears 0/10/20
func windowBonus(rel, weight float64) float64 {
	switch {
	case rel > 20:
		return weight
	case rel > 10:
		return weight * 2 / 3
	case rel > 0:
		return weight / 3
	case rel < -20:
		return -weight
	default:
		return 0
	}
}

// rsLineScore maps the RS line percentile to a bucketed score
func rsLineScore(line contracts.RSLine) float64 {
	var score float64
	switch p := line.Percentile; {
	case p >= 90:
		score = 95
	case p >= 75:
		score = 80
	case p >= 50:
		score = 60
	case p >= 25:
		score = 35
	default:
		score = 15
	}
	if line.AtNewHigh {
		score += 10
	}
	return contracts.Clamp(score, 0, 100)
}

package pattern

import (
	"github.com/wonny/sepa/internal/contracts"
	"github.com/wonny/sepa/internal/indicator"
	"github.com/wonny/sepa/internal/strategyconfig"
	"github.com/wonny/sepa/pkg/logger"
)

// Detector finds volatility contraction patterns in daily bars
// ⭐ SSOT: VCP 탐지는 여기서만
type Detector struct {
	cfg    strategyconfig.Pattern
	logger *logger.Logger
}

// NewDetector creates a new VCP detector
func NewDetector(cfg strategyconfig.Pattern, log *logger.Logger) *Detector {
	return &Detector{
		cfg:    cfg,
		logger: log,
	}
}

// Detect returns the VCP analysis of the series, or nil when no valid
// pattern exists. Insufficient data is not an error.
func (d *Detector) Detect(series contracts.PriceSeries) *contracts.VCPAnalysis {
	highIdx := indicator.PivotHighs(series.Highs(), d.cfg.PivotWidth)
	lowIdx := indicator.PivotLows(series.Lows(), d.cfg.PivotWidth)

	if len(highIdx) < d.cfg.MinPivots || len(lowIdx) < d.cfg.MinPivots {
		d.logger.WithFields(map[string]interface{}{
			"bars":        series.Len(),
			"pivot_highs": len(highIdx),
			"pivot_lows":  len(lowIdx),
		}).Debug("Not enough pivots for VCP")
		return nil
	}

	contractions, ok := contractionSequence(series, highIdx, lowIdx)
	if !ok || !strictlyDecreasing(contractions) {
		d.logger.WithField("contractions", contractions).Debug("Contractions not monotonically decreasing")
		return nil
	}

	last := contractions[len(contractions)-1]
	volumeContracting := d.volumeContracting(series)
	nearResistance := d.nearResistance(series)
	uptrend := d.uptrend(series)
	strength := contracts.Clamp(100-last, 0, 100)

	analysis := &contracts.VCPAnalysis{
		Contractions:      contractions,
		NumContractions:   len(contractions),
		LastContraction:   last,
		VolumeContracting: volumeContracting,
		NearResistance:    nearResistance,
		PatternStrength:   strength,
		Uptrend:           uptrend,
		ReadyToBuy:        nearResistance && volumeContracting && strength > d.cfg.ReadyMinStrength && uptrend,
	}

	d.logger.WithFields(map[string]interface{}{
		"contractions": contractions,
		"strength":     strength,
		"volume":       volumeContracting,
		"resistance":   nearResistance,
		"uptrend":      uptrend,
		"ready":        analysis.ReadyToBuy,
	}).Debug("Detected VCP")

	return analysis
}

// contractionSequence pairs pivot high i-1 with pivot low i:
// depth = (high - low) / high * 100
func contractionSequence(series contracts.PriceSeries, highIdx, lowIdx []int) ([]float64, bool) {
	n := len(highIdx)
	if len(lowIdx) < n {
		n = len(lowIdx)
	}

	out := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		high := series[highIdx[i-1]].High
		low := series[lowIdx[i]].Low
		if high <= 0 {
			return nil, false
		}
		out = append(out, (high-low)/high*100)
	}
	return out, len(out) > 0
}

func strictlyDecreasing(values []float64) bool {
	for i := 1; i < len(values); i++ {
		if values[i] >= values[i-1] {
			return false
		}
	}
	return true
}

// volumeContracting: 최근 단기 평균 거래량 < 장기 평균 × ratio
func (d *Detector) volumeContracting(series contracts.PriceSeries) bool {
	short := indicator.Mean(series.Tail(d.cfg.VolumeShortWindow).Volumes())
	long := indicator.Mean(series.Tail(d.cfg.VolumeLongWindow).Volumes())
	if long <= 0 {
		return false
	}
	return short < long*d.cfg.VolumeContractionRatio
}

// nearResistance: 종가가 N봉 고점의 98% 이상
func (d *Detector) nearResistance(series contracts.PriceSeries) bool {
	high, err := indicator.RollingHigh(series, d.cfg.ResistanceWindow)
	if err != nil {
		return false
	}
	return series.LastClose() >= high*d.cfg.NearResistanceRatio
}

// uptrend: 데이터가 충분하면 MA50 > MA200, 아니면 true
func (d *Detector) uptrend(series contracts.PriceSeries) bool {
	if series.Len() < d.cfg.TrendSlowMA {
		return true
	}
	closes := series.Closes()
	fast, err := indicator.SMA(closes, d.cfg.TrendFastMA)
	if err != nil {
		return true
	}
	slow, err := indicator.SMA(closes, d.cfg.TrendSlowMA)
	if err != nil {
		return true
	}
	return fast > slow
}

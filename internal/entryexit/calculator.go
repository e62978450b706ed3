package entryexit

import (
	"math"

	"github.com/wonny/sepa/internal/contracts"
	"github.com/wonny/sepa/internal/indicator"
	"github.com/wonny/sepa/internal/strategyconfig"
	"github.com/wonny/sepa/pkg/logger"
)

// Calculator turns pattern and score results into price levels
// ⭐ SSOT: 진입/손절/목표가 계산은 여기서만
type Calculator struct {
	cfg    strategyconfig.EntryExit
	logger *logger.Logger
}

// NewCalculator creates a new entry/exit calculator
func NewCalculator(cfg strategyconfig.EntryExit, log *logger.Logger) *Calculator {
	return &Calculator{
		cfg:    cfg,
		logger: log,
	}
}

// Calculate builds the plan for one ticker.
// vcp is nil when no pattern was detected; athDistancePct is nil when unknown.
func (c *Calculator) Calculate(
	ticker string,
	current float64,
	series contracts.PriceSeries,
	vcp *contracts.VCPAnalysis,
	fundamentals contracts.FundamentalScore,
	athDistancePct *float64,
) contracts.EntryExitPlan {
	if current <= 0 {
		current = series.LastClose()
	}
	if current <= 0 {
		// 가격 없음: 실행 불가 계획
		return contracts.EntryExitPlan{Ticker: ticker, EntryTiming: contracts.TimingWait}
	}

	entry := c.entryPrice(current, series, vcp, athDistancePct)
	stop := c.stopLoss(entry, series)
	exit := c.exitPrice(current, fundamentals.PERatio, athDistancePct)
	rr := c.evaluateRiskReward(entry, stop, exit)

	plan := contracts.EntryExitPlan{
		Ticker:          ticker,
		EntryPrice:      entry,
		EntryRangeLow:   entry * 0.99,
		EntryRangeHigh:  entry * 1.03,
		StopLoss:        stop,
		ExitPrice:       exit,
		ExitRangeLow:    exit * 0.95,
		ExitRangeHigh:   exit * 1.05,
		RiskRewardRatio: rr.ratio,
		RiskPct:         rr.riskPct,
		RewardPct:       rr.rewardPct,
		EntryTiming:     c.entryTiming(entry, current),
		MeetsCriteria:   rr.meets,
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker":  ticker,
		"current": current,
		"entry":   entry,
		"stop":    stop,
		"exit":    exit,
		"rr":      rr.ratio,
		"timing":  plan.EntryTiming,
	}).Debug("Calculated entry/exit plan")

	return plan
}

// entryPrice: VCP 피벗 돌파 / 눌림목, 패턴 없으면 지지선 기준, ATH 거리로 보정
func (c *Calculator) entryPrice(current float64, series contracts.PriceSeries, vcp *contracts.VCPAnalysis, athDistancePct *float64) float64 {
	var entry float64

	if vcp != nil {
		pivot, err := indicator.RollingHigh(series, c.cfg.PivotWindow)
		switch {
		case err != nil:
			entry = current * c.cfg.PullbackCap
		case current >= pivot*c.cfg.BreakoutProximity:
			entry = pivot * c.cfg.BreakoutPremium
		default:
			entry = current * c.cfg.PullbackCap
			if ma, err := indicator.SMA(series.Closes(), c.cfg.PullbackMA); err == nil {
				entry = math.Min(ma, entry)
			}
		}
	} else {
		entry = current * c.cfg.NoPatternDiscount
		if low, err := indicator.RollingLow(series, c.cfg.PivotWindow); err == nil {
			entry = math.Max(low*c.cfg.NoPatternLowPremium, entry)
		}
	}

	if athDistancePct != nil {
		switch {
		case *athDistancePct <= c.cfg.ATHNearPct:
			entry = current * c.cfg.ATHConfirmPremium
		case *athDistancePct > c.cfg.ATHFarPct:
			entry = math.Min(entry, current)
		}
	}

	return math.Max(entry, current*c.cfg.EntryFloor)
}

// stopLoss: 구조적 손절(20봉 저가 × 0.98)과 최대 손실 8% 중 높은 값
func (c *Calculator) stopLoss(entry float64, series contracts.PriceSeries) float64 {
	capStop := entry * (1 - c.cfg.MaxLossPct)

	stop := capStop
	if low, err := indicator.RollingLow(series, c.cfg.PivotWindow); err == nil {
		stop = math.Max(low*c.cfg.StopLowBuffer, capStop)
	}

	if (entry-stop)/entry > c.cfg.MaxLossPct || stop >= entry {
		stop = capStop
	}
	return stop
}

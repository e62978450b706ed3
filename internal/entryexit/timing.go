package entryexit

import (
	"math"

	"github.com/wonny/sepa/internal/contracts"
)

type riskReward struct {
	ratio     float64
	riskPct   float64
	rewardPct float64
	meets     bool
}

// evaluateRiskReward: ratio = (exit - entry) / (entry - stop), 0 when risk <= 0
func (c *Calculator) evaluateRiskReward(entry, stop, exit float64) riskReward {
	reward := exit - entry
	risk := entry - stop

	var rr riskReward
	if risk > 0 {
		rr.ratio = reward / risk
	}
	if entry > 0 {
		rr.riskPct = risk / entry * 100
		rr.rewardPct = reward / entry * 100
	}
	rr.meets = rr.ratio >= c.cfg.MinRiskReward
	return rr
}

// entryTiming maps the entry premium over the current price to a label
//
//	|diff| <= 2%  BUY NOW
//	diff > 5%     WAIT
//	2% < diff     BUY ON BREAKOUT
//	-5% <= diff   BUY ON PULLBACK
//	otherwise     CAUTION
func (c *Calculator) entryTiming(entry, current float64) contracts.EntryTiming {
	diff := (entry - current) / current * 100

	switch {
	case math.Abs(diff) <= c.cfg.TimingNowPct:
		return contracts.TimingBuyNow
	case diff > c.cfg.TimingWaitPct:
		return contracts.TimingWait
	case diff > c.cfg.TimingNowPct:
		return contracts.TimingBuyOnBreakout
	case diff >= -c.cfg.TimingWaitPct:
		return contracts.TimingBuyOnPullback
	default:
		return contracts.TimingCaution
	}
}

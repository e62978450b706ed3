package entryexit

import "math"

// exitPrice blends technical, fundamental and analyst targets, floored at current × 1.20
func (c *Calculator) exitPrice(current float64, pe *float64, athDistancePct *float64) float64 {
	technical := c.technicalTarget(current, athDistancePct)
	fundamental := c.fundamentalTarget(current, pe)
	analyst := current * c.cfg.AnalystPremium

	exit := c.cfg.TechnicalWeight*technical +
		c.cfg.FundamentalWeight*fundamental +
		c.cfg.AnalystWeight*analyst

	return math.Max(exit, current*c.cfg.ExitFloor)
}

// technicalTarget: ATH × 1.10 (ATH는 현재가와 ATH 거리로 역산)
func (c *Calculator) technicalTarget(current float64, athDistancePct *float64) float64 {
	if athDistancePct == nil || *athDistancePct < 0 || *athDistancePct >= 100 {
		return current * c.cfg.NoATHTargetPremium
	}
	ath := current / (1 - *athDistancePct/100)
	return ath * c.cfg.ATHTargetPremium
}

// fundamentalTarget: PE 25 기준 재평가, 상승폭은 2배로 제한
func (c *Calculator) fundamentalTarget(current float64, pe *float64) float64 {
	if pe == nil || *pe <= 0 {
		return current * c.cfg.UnknownPEPremium
	}
	if *pe < c.cfg.FairPE {
		return current * math.Min(c.cfg.FairPE / *pe, c.cfg.PEUpsideCap)
	}
	return current * c.cfg.HighPEPremium
}

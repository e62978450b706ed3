package contracts

import "time"

// Recommendation is the per-ticker evaluation merged by batch callers
// ⭐ SSOT: 종목별 최종 평가 결과
type Recommendation struct {
	Ticker       string    `json:"ticker"`
	AsOf         time.Time `json:"as_of"`
	CurrentPrice float64   `json:"current_price"`

	// ATHDistancePct is how far (%) the current price sits below the series high
	ATHDistancePct *float64 `json:"ath_distance_pct,omitempty"`

	VCP          *VCPAnalysis     `json:"vcp,omitempty"`
	Fundamentals FundamentalScore `json:"fundamentals"`
	Plan         EntryExitPlan    `json:"plan"`

	BuyReady bool `json:"buy_ready"`
}

// HasPattern reports whether a VCP was detected
func (r *Recommendation) HasPattern() bool {
	return r.VCP != nil
}

// IsBuyCandidate: 패턴 준비 + 트렌드 템플릿 통과 + 손익비 충족
func (r *Recommendation) IsBuyCandidate() bool {
	return r.VCP != nil && r.VCP.ReadyToBuy &&
		r.Fundamentals.TrendTemplate.Pass &&
		r.Plan.MeetsCriteria
}

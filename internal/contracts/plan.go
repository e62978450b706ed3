package contracts

// EntryTiming is the discrete timing recommendation of a plan
type EntryTiming string

const (
	TimingBuyNow        EntryTiming = "BUY NOW"
	TimingWait          EntryTiming = "WAIT"
	TimingBuyOnBreakout EntryTiming = "BUY ON BREAKOUT"
	TimingBuyOnPullback EntryTiming = "BUY ON PULLBACK"
	TimingCaution       EntryTiming = "CAUTION"
)

// EntryExitPlan holds the actionable price levels of one ticker
// ⭐ SSOT: 진입/청산 계획 타입은 여기서만
//
// StopLoss is always below EntryPrice. MeetsCriteria is true only when the
// reward is at least the configured multiple of the risk.
type EntryExitPlan struct {
	Ticker string `json:"ticker"`

	EntryPrice     float64 `json:"entry_price"`
	EntryRangeLow  float64 `json:"entry_range_low"`
	EntryRangeHigh float64 `json:"entry_range_high"`

	StopLoss float64 `json:"stop_loss"`

	ExitPrice     float64 `json:"exit_price"`
	ExitRangeLow  float64 `json:"exit_range_low"`
	ExitRangeHigh float64 `json:"exit_range_high"`

	RiskRewardRatio float64 `json:"risk_reward_ratio"`
	RiskPct         float64 `json:"risk_pct"`   // (entry - stop) / entry * 100
	RewardPct       float64 `json:"reward_pct"` // (exit - entry) / entry * 100

	EntryTiming   EntryTiming `json:"entry_timing"`
	MeetsCriteria bool        `json:"meets_criteria"`
}

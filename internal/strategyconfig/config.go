package strategyconfig

import "github.com/creasty/defaults"

// Config는 SEPA 평가 엔진의 튜닝 상수 전체
// ⭐ SSOT: 임계값/가중치는 여기서만 정의
//
// default 태그 값이 기준값이다. YAML은 이 위에 덮어쓴다.
type Config struct {
	Meta        Meta        `yaml:"meta" json:"meta"`
	Pattern     Pattern     `yaml:"pattern" json:"pattern"`
	Fundamental Fundamental `yaml:"fundamental" json:"fundamental"`
	EntryExit   EntryExit   `yaml:"entry_exit" json:"entry_exit"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id" default:"sepa_minervini" validate:"required"`
	Version    string `yaml:"version" json:"version" default:"1"`
}

// Pattern VCP 탐지
type Pattern struct {
	PivotWidth             int     `yaml:"pivot_width" json:"pivot_width" default:"2" validate:"min=1"`
	MinPivots              int     `yaml:"min_pivots" json:"min_pivots" default:"3" validate:"min=2"`
	VolumeShortWindow      int     `yaml:"volume_short_window" json:"volume_short_window" default:"10" validate:"min=1"`
	VolumeLongWindow       int     `yaml:"volume_long_window" json:"volume_long_window" default:"50" validate:"gtfield=VolumeShortWindow"`
	VolumeContractionRatio float64 `yaml:"volume_contraction_ratio" json:"volume_contraction_ratio" default:"0.70" validate:"gt=0,lte=1"`
	ResistanceWindow       int     `yaml:"resistance_window" json:"resistance_window" default:"20" validate:"min=1"`
	NearResistanceRatio    float64 `yaml:"near_resistance_ratio" json:"near_resistance_ratio" default:"0.98" validate:"gt=0,lte=1"`
	TrendFastMA            int     `yaml:"trend_fast_ma" json:"trend_fast_ma" default:"50" validate:"min=1"`
	TrendSlowMA            int     `yaml:"trend_slow_ma" json:"trend_slow_ma" default:"200" validate:"gtfield=TrendFastMA"`
	ReadyMinStrength       float64 `yaml:"ready_min_strength" json:"ready_min_strength" default:"70" validate:"gte=0,lte=100"`
}

// Fundamental 5개 서브 스코어 + 트렌드 템플릿
type Fundamental struct {
	Weights       Weights       `yaml:"weights" json:"weights"`
	RelStrength   RelStrength   `yaml:"relative_strength" json:"relative_strength"`
	TrendTemplate TrendTemplate `yaml:"trend_template" json:"trend_template"`
	MinQuarters   int           `yaml:"min_quarters" json:"min_quarters" default:"4" validate:"min=4"`
}

// Weights 서브 스코어 가중치 (합 = 1.0)
type Weights struct {
	Earnings         float64 `yaml:"earnings" json:"earnings" default:"0.30" validate:"gte=0,lte=1"`
	Growth           float64 `yaml:"growth" json:"growth" default:"0.25" validate:"gte=0,lte=1"`
	RelativeStrength float64 `yaml:"relative_strength" json:"relative_strength" default:"0.20" validate:"gte=0,lte=1"`
	Health           float64 `yaml:"health" json:"health" default:"0.15" validate:"gte=0,lte=1"`
	Catalyst         float64 `yaml:"catalyst" json:"catalyst" default:"0.10" validate:"gte=0,lte=1"`
}

// Sum returns the total of all weights
func (w Weights) Sum() float64 {
	return w.Earnings + w.Growth + w.RelativeStrength + w.Health + w.Catalyst
}

// RelStrength 상대강도 + RS Line
type RelStrength struct {
	WindowsDays      []int     `yaml:"windows_days" json:"windows_days" default:"[63,126,252]" validate:"min=1,dive,min=1"`
	WindowPoints     []float64 `yaml:"window_points" json:"window_points" default:"[15,20,15]" validate:"min=1,dive,gt=0"`
	LineLookback     int       `yaml:"line_lookback" json:"line_lookback" default:"252" validate:"min=20"`
	NewHighRatio     float64   `yaml:"new_high_ratio" json:"new_high_ratio" default:"0.98" validate:"gt=0,lte=1"`
	SlopeBars        int       `yaml:"slope_bars" json:"slope_bars" default:"50" validate:"min=2"`
	SlopeThreshold   float64   `yaml:"slope_threshold_pct" json:"slope_threshold_pct" default:"2.0" validate:"gte=0"`
	MomentumBlend    float64   `yaml:"momentum_blend" json:"momentum_blend" default:"0.60" validate:"gte=0,lte=1"`
	LineBlend        float64   `yaml:"line_blend" json:"line_blend" default:"0.40" validate:"gte=0,lte=1"`
	MinAlignedPoints int       `yaml:"min_aligned_points" json:"min_aligned_points" default:"20" validate:"min=2"`
}

// TrendTemplate Stage 2 체크
type TrendTemplate struct {
	PassScore       int     `yaml:"pass_score" json:"pass_score" default:"7" validate:"min=1,max=8"`
	MinAboveLowPct  float64 `yaml:"min_above_low_ratio" json:"min_above_low_ratio" default:"1.30" validate:"gte=1"`
	MinOfHighRatio  float64 `yaml:"min_of_high_ratio" json:"min_of_high_ratio" default:"0.75" validate:"gt=0,lte=1"`
	MinRSPercentile float64 `yaml:"min_rs_percentile" json:"min_rs_percentile" default:"70" validate:"gte=0,lte=100"`
	SlopeLookback   int     `yaml:"ma200_slope_lookback" json:"ma200_slope_lookback" default:"20" validate:"min=1"`
}

// EntryExit 진입/손절/목표가
type EntryExit struct {
	PivotWindow         int     `yaml:"pivot_window" json:"pivot_window" default:"20" validate:"min=1"`
	BreakoutProximity   float64 `yaml:"breakout_proximity" json:"breakout_proximity" default:"0.95" validate:"gt=0,lte=1"`
	BreakoutPremium     float64 `yaml:"breakout_premium" json:"breakout_premium" default:"1.01" validate:"gte=1"`
	PullbackMA          int     `yaml:"pullback_ma" json:"pullback_ma" default:"10" validate:"min=1"`
	PullbackCap         float64 `yaml:"pullback_cap" json:"pullback_cap" default:"1.02" validate:"gte=1"`
	NoPatternLowPremium float64 `yaml:"no_pattern_low_premium" json:"no_pattern_low_premium" default:"1.02" validate:"gte=1"`
	NoPatternDiscount   float64 `yaml:"no_pattern_discount" json:"no_pattern_discount" default:"0.98" validate:"gt=0,lte=1"`
	ATHNearPct          float64 `yaml:"ath_near_pct" json:"ath_near_pct" default:"5" validate:"gte=0"`
	ATHFarPct           float64 `yaml:"ath_far_pct" json:"ath_far_pct" default:"15" validate:"gtefield=ATHNearPct"`
	ATHConfirmPremium   float64 `yaml:"ath_confirm_premium" json:"ath_confirm_premium" default:"1.01" validate:"gte=1"`
	EntryFloor          float64 `yaml:"entry_floor" json:"entry_floor" default:"0.95" validate:"gt=0,lte=1"`

	StopLowBuffer float64 `yaml:"stop_low_buffer" json:"stop_low_buffer" default:"0.98" validate:"gt=0,lte=1"`
	MaxLossPct    float64 `yaml:"max_loss_pct" json:"max_loss_pct" default:"0.08" validate:"gt=0,lt=1"`

	TechnicalWeight    float64 `yaml:"technical_weight" json:"technical_weight" default:"0.40" validate:"gte=0,lte=1"`
	FundamentalWeight  float64 `yaml:"fundamental_weight" json:"fundamental_weight" default:"0.40" validate:"gte=0,lte=1"`
	AnalystWeight      float64 `yaml:"analyst_weight" json:"analyst_weight" default:"0.20" validate:"gte=0,lte=1"`
	ATHTargetPremium   float64 `yaml:"ath_target_premium" json:"ath_target_premium" default:"1.10" validate:"gte=1"`
	NoATHTargetPremium float64 `yaml:"no_ath_target_premium" json:"no_ath_target_premium" default:"1.30" validate:"gte=1"`
	FairPE             float64 `yaml:"fair_pe" json:"fair_pe" default:"25" validate:"gt=0"`
	PEUpsideCap        float64 `yaml:"pe_upside_cap" json:"pe_upside_cap" default:"2.0" validate:"gte=1"`
	HighPEPremium      float64 `yaml:"high_pe_premium" json:"high_pe_premium" default:"1.20" validate:"gte=1"`
	UnknownPEPremium   float64 `yaml:"unknown_pe_premium" json:"unknown_pe_premium" default:"1.25" validate:"gte=1"`
	AnalystPremium     float64 `yaml:"analyst_premium" json:"analyst_premium" default:"1.30" validate:"gte=1"`
	ExitFloor          float64 `yaml:"exit_floor" json:"exit_floor" default:"1.20" validate:"gte=1"`

	MinRiskReward float64 `yaml:"min_risk_reward" json:"min_risk_reward" default:"3.0" validate:"gt=0"`

	// 타이밍 라벨 경계 (%)
	TimingNowPct  float64 `yaml:"timing_now_pct" json:"timing_now_pct" default:"2" validate:"gte=0"`
	TimingWaitPct float64 `yaml:"timing_wait_pct" json:"timing_wait_pct" default:"5" validate:"gtefield=TimingNowPct"`
}

// ExitWeightSum returns the total of the three target weights
func (e EntryExit) ExitWeightSum() float64 {
	return e.TechnicalWeight + e.FundamentalWeight + e.AnalystWeight
}

// Default returns the built-in tuned configuration
func Default() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		// default 태그가 잘못된 경우에만 발생
		panic("strategyconfig: invalid default tags: " + err.Error())
	}
	return cfg
}

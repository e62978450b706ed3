package contracts

import "time"

// NeutralScore is the baseline every sub-score starts from and the value a
// missing sub-score contributes to the weighted total.
const NeutralScore = 50.0

// Tier labels derived from the weighted total
const (
	TierElite     = "ELITE"
	TierExcellent = "EXCELLENT"
	TierGood      = "GOOD"
	TierAverage   = "AVERAGE"
	TierWeak      = "WEAK"
)

// Quality labels (coarse)
const (
	QualityHigh   = "HIGH"
	QualityMedium = "MEDIUM"
	QualityLow    = "LOW"
)

// RS line trend directions
const (
	TrendUp   = "up"
	TrendDown = "down"
	TrendFlat = "flat"
)

// Fundamentals is what a fundamentals provider returns for one ticker.
// Pointer fields are nil when the source does not publish the value.
type Fundamentals struct {
	Ticker string `json:"ticker"`
	Source string `json:"source"`

	// 분기 실적 (최근 분기가 먼저)
	QuarterlyEPS     []float64 `json:"quarterly_eps"`
	QuarterlyRevenue []float64 `json:"quarterly_revenue"`

	// Ratios
	ROE             *float64 `json:"roe,omitempty"`              // fraction, 0.25 = 25%
	DebtToEquity    *float64 `json:"debt_to_equity,omitempty"`   // percent, 45 = 0.45x
	CurrentRatio    *float64 `json:"current_ratio,omitempty"`    // x
	OperatingMargin *float64 `json:"operating_margin,omitempty"` // fraction
	ProfitMargin    *float64 `json:"profit_margin,omitempty"`    // fraction
	TrailingPE      *float64 `json:"trailing_pe,omitempty"`

	// Short interest
	ShortPercentOfFloat *float64 `json:"short_percent_of_float,omitempty"` // fraction
	ShortRatio          *float64 `json:"short_ratio,omitempty"`            // days to cover

	// Catalysts
	NextEarningsDate  *time.Time `json:"next_earnings_date,omitempty"`
	TargetMeanPrice   *float64   `json:"target_mean_price,omitempty"`
	RecommendationKey string     `json:"recommendation_key,omitempty"` // strong_buy, buy, hold, sell, strong_sell
}

// FundamentalSnapshot is the complete, already-fetched input of the scorer
// ⭐ SSOT: 스코어러 입력은 이 구조체 하나
type FundamentalSnapshot struct {
	Ticker       string
	CurrentPrice float64

	QuarterlyEPS     []float64
	QuarterlyRevenue []float64

	ROE             *float64
	DebtToEquity    *float64
	CurrentRatio    *float64
	OperatingMargin *float64
	ProfitMargin    *float64
	TrailingPE      *float64

	ShortPercentOfFloat *float64
	ShortRatio          *float64

	DaysToEarnings    *int
	TargetPrice       *float64
	RecommendationKey string

	// Series is the stock's own history; Benchmark is shared read-only across tickers
	Series    PriceSeries
	Benchmark PriceSeries

	// 52주 고가/저가 (0 = unknown)
	High52W float64
	Low52W  float64
}

// NewSnapshot assembles a scorer input from provider outputs.
// fund may be nil, in which case only the price-derived parts can score.
func NewSnapshot(ticker string, fund *Fundamentals, quote *Quote, series, benchmark PriceSeries, asOf time.Time) FundamentalSnapshot {
	snap := FundamentalSnapshot{
		Ticker:       ticker,
		CurrentPrice: series.LastClose(),
		Series:       series,
		Benchmark:    benchmark,
	}

	if quote != nil {
		if quote.Price > 0 {
			snap.CurrentPrice = quote.Price
		}
		snap.High52W = quote.High52W
		snap.Low52W = quote.Low52W
	}

	if fund == nil {
		return snap
	}

	snap.QuarterlyEPS = fund.QuarterlyEPS
	snap.QuarterlyRevenue = fund.QuarterlyRevenue
	snap.ROE = fund.ROE
	snap.DebtToEquity = fund.DebtToEquity
	snap.CurrentRatio = fund.CurrentRatio
	snap.OperatingMargin = fund.OperatingMargin
	snap.ProfitMargin = fund.ProfitMargin
	snap.TrailingPE = fund.TrailingPE
	snap.ShortPercentOfFloat = fund.ShortPercentOfFloat
	snap.ShortRatio = fund.ShortRatio
	snap.TargetPrice = fund.TargetMeanPrice
	snap.RecommendationKey = fund.RecommendationKey

	if fund.NextEarningsDate != nil {
		days := DaysUntil(asOf, *fund.NextEarningsDate)
		snap.DaysToEarnings = &days
	}

	return snap
}

// DaysUntil counts calendar days from -> to, truncated to dates
func DaysUntil(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// ScoreComponent is one weighted sub-score
type ScoreComponent struct {
	Score   float64            `json:"score"` // 0 ~ 100
	Details map[string]float64 `json:"details"`
}

// TrendTemplate is the 8-criterion stage-2 check
type TrendTemplate struct {
	Score    int             `json:"score"` // 0 ~ 8
	Pass     bool            `json:"pass"`
	Criteria map[string]bool `json:"criteria"`
}

// RSLine describes the stock/benchmark ratio line
type RSLine struct {
	Available  bool    `json:"available"`
	Percentile float64 `json:"percentile"` // 0 ~ 100, 1년 구간 내 위치
	AtNewHigh  bool    `json:"at_new_high"`
	Trend      string  `json:"trend"` // up, down, flat
	SlopePct   float64 `json:"slope_pct"`
}

// Acceleration is the CANSLIM "A" chain for EPS or revenue
type Acceleration struct {
	Accelerating bool `json:"accelerating"`
	Quarters     int  `json:"quarters"` // 연속 가속 구간 수
}

// ComponentWeights are the weights of the five sub-scores (sum 1.0)
type ComponentWeights struct {
	Earnings         float64 `json:"earnings"`
	Growth           float64 `json:"growth"`
	RelativeStrength float64 `json:"relative_strength"`
	Health           float64 `json:"health"`
	Catalyst         float64 `json:"catalyst"`
}

// ScoreParts carries the independently computed pieces of a FundamentalScore.
// A nil component means its data was missing.
type ScoreParts struct {
	Ticker string

	Earnings         *ScoreComponent
	Growth           *ScoreComponent
	RelativeStrength *ScoreComponent
	Health           *ScoreComponent
	Catalyst         *ScoreComponent

	TrendTemplate       TrendTemplate
	RSLine              RSLine
	EPSAcceleration     Acceleration
	RevenueAcceleration Acceleration

	PERatio *float64
}

// FundamentalScore is the weighted combination of the five sub-scores plus flags
// ⭐ SSOT: 펀더멘털 점수 타입은 여기서만
type FundamentalScore struct {
	Ticker     string  `json:"ticker"`
	TotalScore float64 `json:"total_score"` // 0 ~ 100
	Tier       string  `json:"tier"`
	Quality    string  `json:"quality"`

	Earnings         *ScoreComponent `json:"earnings_quality"`
	Growth           *ScoreComponent `json:"growth_acceleration"`
	RelativeStrength *ScoreComponent `json:"relative_strength"`
	Health           *ScoreComponent `json:"financial_health"`
	Catalyst         *ScoreComponent `json:"catalyst_timing"`

	TrendTemplate       TrendTemplate `json:"trend_template"`
	RSLine              RSLine        `json:"rs_line"`
	EPSAcceleration     Acceleration  `json:"eps_acceleration"`
	RevenueAcceleration Acceleration  `json:"revenue_acceleration"`

	PERatio *float64 `json:"pe_ratio,omitempty"`
}

// NewFundamentalScore combines the parts into the final score.
// Missing components count as NeutralScore.
func NewFundamentalScore(p ScoreParts, w ComponentWeights) FundamentalScore {
	total := w.Earnings*componentOrNeutral(p.Earnings) +
		w.Growth*componentOrNeutral(p.Growth) +
		w.RelativeStrength*componentOrNeutral(p.RelativeStrength) +
		w.Health*componentOrNeutral(p.Health) +
		w.Catalyst*componentOrNeutral(p.Catalyst)
	total = Clamp(total, 0, 100)

	return FundamentalScore{
		Ticker:              p.Ticker,
		TotalScore:          total,
		Tier:                TierFor(total),
		Quality:             QualityFor(total),
		Earnings:            p.Earnings,
		Growth:              p.Growth,
		RelativeStrength:    p.RelativeStrength,
		Health:              p.Health,
		Catalyst:            p.Catalyst,
		TrendTemplate:       p.TrendTemplate,
		RSLine:              p.RSLine,
		EPSAcceleration:     p.EPSAcceleration,
		RevenueAcceleration: p.RevenueAcceleration,
		PERatio:             p.PERatio,
	}
}

// MissingComponents lists sub-scores that fell back to the neutral baseline
func (f FundamentalScore) MissingComponents() []string {
	var missing []string
	if f.Earnings == nil {
		missing = append(missing, "earnings_quality")
	}
	if f.Growth == nil {
		missing = append(missing, "growth_acceleration")
	}
	if f.RelativeStrength == nil {
		missing = append(missing, "relative_strength")
	}
	if f.Health == nil {
		missing = append(missing, "financial_health")
	}
	if f.Catalyst == nil {
		missing = append(missing, "catalyst_timing")
	}
	return missing
}

func componentOrNeutral(c *ScoreComponent) float64 {
	if c == nil {
		return NeutralScore
	}
	return c.Score
}

// TierFor maps a total score to its tier label
func TierFor(score float64) string {
	switch {
	case score >= 80:
		return TierElite
	case score >= 70:
		return TierExcellent
	case score >= 60:
		return TierGood
	case score >= 50:
		return TierAverage
	default:
		return TierWeak
	}
}

// QualityFor maps a total score to the coarse quality label
func QualityFor(score float64) string {
	switch {
	case score >= 70:
		return QualityHigh
	case score >= 50:
		return QualityMedium
	default:
		return QualityLow
	}
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

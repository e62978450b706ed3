package entryexit

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/sepa/internal/contracts"
	"github.com/wonny/sepa/internal/strategyconfig"
	"github.com/wonny/sepa/pkg/logger"
)

func f64(v float64) *float64 { return &v }

// flatSeries builds n bars with constant close/high/low
func flatSeries(n int, close, high, low float64) contracts.PriceSeries {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	series := make(contracts.PriceSeries, n)
	for i := range series {
		series[i] = contracts.PriceBar{
			Date:   start.AddDate(0, 0, i),
			Open:   close,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: 1_000_000,
		}
	}
	return series
}

func newTestCalculator() *Calculator {
	return NewCalculator(strategyconfig.Default().EntryExit, logger.NewNop())
}

var somePattern = &contracts.VCPAnalysis{Contractions: []float64{20, 10}, NumContractions: 2, LastContraction: 10, PatternStrength: 90}

func TestEvaluateRiskReward_BelowThreshold(t *testing.T) {
	rr := newTestCalculator().evaluateRiskReward(100, 96, 110)

	assert.InDelta(t, 2.5, rr.ratio, 1e-9)
	assert.False(t, rr.meets)
	assert.InDelta(t, 4.0, rr.riskPct, 1e-9)
	assert.InDelta(t, 10.0, rr.rewardPct, 1e-9)
}

func TestEvaluateRiskReward(t *testing.T) {
	tests := []struct {
		name              string
		entry, stop, exit float64
		ratio             float64
		meets             bool
	}{
		{"exactly three", 100, 96, 112, 3.0, true},
		{"generous", 100, 95, 130, 6.0, true},
		{"no risk", 100, 100, 130, 0, false},
		{"exit below entry", 100, 95, 90, -2.0, false},
	}

	c := newTestCalculator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := c.evaluateRiskReward(tt.entry, tt.stop, tt.exit)
			assert.InDelta(t, tt.ratio, rr.ratio, 1e-9)
			assert.Equal(t, tt.meets, rr.meets)
		})
	}
}

func TestCalculate_BreakoutEntry(t *testing.T) {
	series := flatSeries(30, 98, 100, 96)

	plan := newTestCalculator().Calculate("BRK", 98, series, somePattern, contracts.FundamentalScore{}, nil)

	assert.InDelta(t, 101.0, plan.EntryPrice, 1e-9)
	assert.InDelta(t, 96*0.98, plan.StopLoss, 1e-9)
	// 0.4 × 98×1.30 + 0.4 × 98×1.25 + 0.2 × 98×1.30
	assert.InDelta(t, 125.44, plan.ExitPrice, 1e-9)
	assert.InDelta(t, (125.44-101)/(101-94.08), plan.RiskRewardRatio, 1e-9)
	assert.True(t, plan.MeetsCriteria)
	assert.Equal(t, contracts.TimingBuyOnBreakout, plan.EntryTiming)

	assert.InDelta(t, 101*0.99, plan.EntryRangeLow, 1e-9)
	assert.InDelta(t, 101*1.03, plan.EntryRangeHigh, 1e-9)
	assert.InDelta(t, 125.44*0.95, plan.ExitRangeLow, 1e-9)
	assert.InDelta(t, 125.44*1.05, plan.ExitRangeHigh, 1e-9)
}

func TestCalculate_ATHProximityOverridesPattern(t *testing.T) {
	series := flatSeries(30, 98, 100, 96)

	plan := newTestCalculator().Calculate("ATH", 98, series, somePattern, contracts.FundamentalScore{}, f64(3))

	assert.InDelta(t, 98*1.01, plan.EntryPrice, 1e-9)
	assert.Equal(t, contracts.TimingBuyNow, plan.EntryTiming)
}

func TestCalculate_PullbackEntry(t *testing.T) {
	series := flatSeries(30, 85, 86, 84)
	series[25].High = 100

	plan := newTestCalculator().Calculate("PUL", 85, series, somePattern, contracts.FundamentalScore{}, nil)

	assert.InDelta(t, 85.0, plan.EntryPrice, 1e-9)
	assert.Equal(t, contracts.TimingBuyNow, plan.EntryTiming)
}

func TestCalculate_EntryFloor(t *testing.T) {
	series := flatSeries(30, 60, 61, 59)
	series[29].High = 120

	plan := newTestCalculator().Calculate("FLR", 100, series, somePattern, contracts.FundamentalScore{}, nil)

	assert.InDelta(t, 95.0, plan.EntryPrice, 1e-9)
	assert.Equal(t, contracts.TimingBuyOnPullback, plan.EntryTiming)
}

func TestCalculate_NoPatternEntry(t *testing.T) {
	tests := []struct {
		name  string
		low   float64
		ath   *float64
		entry float64
	}{
		{"support far below", 90, nil, 98},
		{"support close", 99, nil, 100.98},
		{"far from ath caps at current", 99, f64(20), 100},
		{"between 5 and 15 keeps entry", 99, f64(10), 100.98},
	}

	c := newTestCalculator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := flatSeries(30, 100, 101, tt.low)
			plan := c.Calculate("NOP", 100, series, nil, contracts.FundamentalScore{}, tt.ath)
			assert.InDelta(t, tt.entry, plan.EntryPrice, 1e-9)
		})
	}
}

func TestStopLoss(t *testing.T) {
	tests := []struct {
		name  string
		entry float64
		low   float64
		want  float64
	}{
		{"structural stop", 100, 95, 95 * 0.98},
		{"capped at 8%", 100, 50, 92},
		{"structural above entry falls back to cap", 100, 110, 92},
	}

	c := newTestCalculator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := flatSeries(30, tt.low+1, tt.low+2, tt.low)
			stop := c.stopLoss(tt.entry, series)
			assert.InDelta(t, tt.want, stop, 1e-9)
			assert.Less(t, stop, tt.entry)
		})
	}
}

func TestExitPrice(t *testing.T) {
	tests := []struct {
		name string
		pe   *float64
		ath  *float64
		want float64
	}{
		{"unknown pe and ath", nil, nil, 0.4*130 + 0.4*125 + 0.2*130},
		{"cheap pe", f64(20), nil, 0.4*130 + 0.4*125 + 0.2*130},
		{"very cheap pe capped", f64(5), nil, 0.4*130 + 0.4*200 + 0.2*130},
		{"expensive pe", f64(50), nil, 0.4*130 + 0.4*120 + 0.2*130},
		{"negative pe treated as unknown", f64(-8), nil, 0.4*130 + 0.4*125 + 0.2*130},
		{"ath known", f64(50), f64(10), 0.4*(100/0.9*1.10) + 0.4*120 + 0.2*130},
		{"floored", f64(50), f64(0), 0.4*110 + 0.4*120 + 0.2*130},
	}

	c := newTestCalculator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.exitPrice(100, tt.pe, tt.ath)
			want := tt.want
			if want < 120 {
				want = 120
			}
			assert.InDelta(t, want, got, 1e-9)
		})
	}
}

func TestEntryTiming(t *testing.T) {
	tests := []struct {
		entry float64
		want  contracts.EntryTiming
	}{
		{100, contracts.TimingBuyNow},
		{102, contracts.TimingBuyNow},
		{98, contracts.TimingBuyNow},
		{104, contracts.TimingBuyOnBreakout},
		{105, contracts.TimingBuyOnBreakout},
		{106, contracts.TimingWait},
		{97, contracts.TimingBuyOnPullback},
		{95, contracts.TimingBuyOnPullback},
		{94, contracts.TimingCaution},
	}

	c := newTestCalculator()
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.entryTiming(tt.entry, 100), "entry=%v", tt.entry)
	}
}

func TestCalculate_NoPrice(t *testing.T) {
	plan := newTestCalculator().Calculate("NIL", 0, nil, nil, contracts.FundamentalScore{}, nil)

	assert.Equal(t, "NIL", plan.Ticker)
	assert.False(t, plan.MeetsCriteria)
	assert.Equal(t, contracts.TimingWait, plan.EntryTiming)
}

func TestCalculate_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	c := newTestCalculator()
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 500; i++ {
		n := 5 + rng.Intn(60)
		series := make(contracts.PriceSeries, n)
		price := 20 + rng.Float64()*200
		for j := range series {
			price *= 1 + (rng.Float64()-0.5)*0.08
			series[j] = contracts.PriceBar{
				Date:  start.AddDate(0, 0, j),
				Open:  price,
				High:  price * (1 + rng.Float64()*0.03),
				Low:   price * (1 - rng.Float64()*0.03),
				Close: price,
			}
		}

		var vcp *contracts.VCPAnalysis
		if rng.Intn(2) == 0 {
			vcp = somePattern
		}
		var ath *float64
		if rng.Intn(3) > 0 {
			ath = f64(rng.Float64() * 60)
		}
		var pe *float64
		if rng.Intn(3) > 0 {
			pe = f64(rng.Float64()*80 - 10)
		}
		current := series.LastClose() * (0.9 + rng.Float64()*0.2)
		fund := contracts.FundamentalScore{PERatio: pe}

		plan := c.Calculate("RND", current, series, vcp, fund, ath)

		require.Less(t, plan.StopLoss, plan.EntryPrice)
		want := (plan.ExitPrice - plan.EntryPrice) / (plan.EntryPrice - plan.StopLoss)
		require.InDelta(t, want, plan.RiskRewardRatio, 1e-9)
		require.Equal(t, plan.RiskRewardRatio >= 3.0, plan.MeetsCriteria)
		require.GreaterOrEqual(t, plan.EntryPrice, current*0.95-1e-9)
		require.GreaterOrEqual(t, plan.ExitPrice, current*1.20-1e-9)

		// 동일 입력 → 동일 결과
		require.Equal(t, plan, c.Calculate("RND", current, series, vcp, fund, ath))
	}
}

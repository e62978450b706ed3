package analyzer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/sepa/internal/contracts"
	"github.com/wonny/sepa/internal/strategyconfig"
	"github.com/wonny/sepa/pkg/logger"
)

func f64(v float64) *float64 { return &v }

func trendSeries(n int, from, to float64) contracts.PriceSeries {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	series := make(contracts.PriceSeries, n)
	for i := range series {
		c := from + (to-from)*float64(i)/float64(n-1)
		series[i] = contracts.PriceBar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1_000_000,
		}
	}
	return series
}

type fakeMarket struct {
	mu          sync.Mutex
	series      map[string]contracts.PriceSeries
	quotes      map[string]*contracts.Quote
	aths        map[string]float64
	seriesCalls map[string]int
}

func newFakeMarket() *fakeMarket {
	return &fakeMarket{
		series:      map[string]contracts.PriceSeries{},
		quotes:      map[string]*contracts.Quote{},
		aths:        map[string]float64{},
		seriesCalls: map[string]int{},
	}
}

func (f *fakeMarket) GetPriceSeries(ctx context.Context, ticker string, lookbackDays int) (contracts.PriceSeries, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seriesCalls[ticker]++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, ok := f.series[ticker]
	if !ok {
		return nil, contracts.ErrTickerNotFound
	}
	return s, nil
}

func (f *fakeMarket) GetQuote(ctx context.Context, ticker string) (*contracts.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quotes[ticker]
	if !ok {
		return nil, contracts.ErrNoData
	}
	return q, nil
}

func (f *fakeMarket) GetAllTimeHigh(ctx context.Context, ticker string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	high, ok := f.aths[ticker]
	if !ok {
		return 0, contracts.ErrNoData
	}
	return high, nil
}

func (f *fakeMarket) calls(ticker string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seriesCalls[ticker]
}

type fakeFundamentals map[string]*contracts.Fundamentals

func (f fakeFundamentals) GetFundamentals(ctx context.Context, ticker string) (*contracts.Fundamentals, error) {
	fund, ok := f[ticker]
	if !ok {
		return nil, contracts.ErrNoData
	}
	return fund, nil
}

func newTestAnalyzer(market *fakeMarket, fund contracts.FundamentalsProvider) *Analyzer {
	log := logger.NewNop()
	engine := NewEngine(strategyconfig.Default(), log)
	a := New(market, fund, engine, Config{BenchmarkTicker: "SPY", LookbackDays: 400}, log)
	a.now = func() time.Time { return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC) }
	return a
}

func seededMarket() *fakeMarket {
	m := newFakeMarket()
	m.series["SPY"] = trendSeries(300, 400, 420)
	m.series["NVDA"] = trendSeries(300, 50, 150)
	m.series["INTC"] = trendSeries(300, 60, 30)
	m.quotes["NVDA"] = &contracts.Quote{Ticker: "NVDA", Price: 150, High52W: 151.5, Low52W: 60}
	return m
}

func TestEngine_Evaluate(t *testing.T) {
	engine := NewEngine(strategyconfig.Default(), logger.NewNop())
	in := Input{
		Ticker:    "NVDA",
		AsOf:      time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Series:    trendSeries(300, 50, 150),
		Benchmark: trendSeries(300, 400, 420),
		Fundamentals: &contracts.Fundamentals{
			QuarterlyEPS: []float64{1.60, 1.15, 1.05, 1.00},
			ProfitMargin: f64(0.22),
		},
	}

	rec := engine.Evaluate(in)

	assert.Equal(t, "NVDA", rec.Ticker)
	assert.Equal(t, 150.0, rec.CurrentPrice)
	require.NotNil(t, rec.ATHDistancePct)
	assert.InDelta(t, (151.5-150)/151.5*100, *rec.ATHDistancePct, 1e-9)
	require.NotNil(t, rec.Fundamentals.Earnings)
	assert.Equal(t, 100.0, rec.Fundamentals.Earnings.Score)
	assert.True(t, rec.Fundamentals.TrendTemplate.Pass)
	assert.Less(t, rec.Plan.StopLoss, rec.Plan.EntryPrice)
	// 선형 상승 시계열에는 VCP가 없음
	assert.Nil(t, rec.VCP)
	assert.False(t, rec.BuyReady)

	// 동일 입력 → 동일 결과
	assert.Equal(t, rec, engine.Evaluate(in))
}

func TestAnalyzer_Analyze(t *testing.T) {
	market := seededMarket()
	fund := fakeFundamentals{
		"NVDA": {Ticker: "NVDA", QuarterlyEPS: []float64{1.60, 1.15, 1.05, 1.00}},
	}
	a := newTestAnalyzer(market, fund)

	rec, err := a.Analyze(context.Background(), " nvda ")
	require.NoError(t, err)

	assert.Equal(t, "NVDA", rec.Ticker)
	assert.Equal(t, 150.0, rec.CurrentPrice)
	assert.NotNil(t, rec.Fundamentals.Earnings)
	assert.True(t, rec.Fundamentals.RSLine.Available)
	assert.Equal(t, 1, market.calls("SPY"))
}

func TestAnalyzer_DegradesWithoutQuoteAndFundamentals(t *testing.T) {
	a := newTestAnalyzer(seededMarket(), fakeFundamentals{})

	rec, err := a.Analyze(context.Background(), "INTC")
	require.NoError(t, err)

	assert.Equal(t, 30.0, rec.CurrentPrice)
	assert.Nil(t, rec.Fundamentals.Earnings)
	assert.Nil(t, rec.Fundamentals.Health)
}

func TestAnalyzer_AllTimeHighBeyondLookback(t *testing.T) {
	market := seededMarket()
	market.aths["INTC"] = 75.8 // 조회 구간(최고 60.6) 이전의 고점
	a := newTestAnalyzer(market, nil)

	rec, err := a.Analyze(context.Background(), "INTC")
	require.NoError(t, err)
	require.NotNil(t, rec.ATHDistancePct)
	assert.InDelta(t, (75.8-30)/75.8*100, *rec.ATHDistancePct, 1e-9)

	// 고점 조회 실패 시 구간 최고가로 대체
	delete(market.aths, "INTC")
	rec, err = a.Analyze(context.Background(), "INTC")
	require.NoError(t, err)
	require.NotNil(t, rec.ATHDistancePct)
	assert.InDelta(t, (60.6-30)/60.6*100, *rec.ATHDistancePct, 1e-9)
}

func TestEngine_Evaluate_KnownAllTimeHigh(t *testing.T) {
	engine := NewEngine(strategyconfig.Default(), logger.NewNop())
	in := Input{
		Ticker:      "NVDA",
		AsOf:        time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Series:      trendSeries(300, 50, 150),
		AllTimeHigh: 300,
	}

	rec := engine.Evaluate(in)
	require.NotNil(t, rec.ATHDistancePct)
	assert.InDelta(t, 50.0, *rec.ATHDistancePct, 1e-9)
	// 고점 대비 15% 이상 하락: 현재가 이하에서 진입 허용
	assert.LessOrEqual(t, rec.Plan.EntryPrice, rec.CurrentPrice)
}

func TestAnalyzer_UnknownTicker(t *testing.T) {
	a := newTestAnalyzer(seededMarket(), nil)

	_, err := a.Analyze(context.Background(), "ZZZZ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrTickerNotFound))

	_, err = a.Analyze(context.Background(), "  ")
	assert.Error(t, err)
}

func TestAnalyzer_MissingBenchmark(t *testing.T) {
	market := seededMarket()
	delete(market.series, "SPY")
	a := newTestAnalyzer(market, nil)

	rec, err := a.Analyze(context.Background(), "NVDA")
	require.NoError(t, err)
	assert.Nil(t, rec.Fundamentals.RelativeStrength)
	assert.False(t, rec.Fundamentals.RSLine.Available)
}

func TestRunner_Run(t *testing.T) {
	market := seededMarket()
	a := newTestAnalyzer(market, fakeFundamentals{})
	runner := NewRunner(a, 4, logger.NewNop())

	results, summary, err := runner.Run(context.Background(), []string{"INTC", "NVDA", "ZZZZ", "nvda"})
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Success)
	assert.Equal(t, 1, summary.Failed)

	// 벤치마크는 한 번만 조회
	assert.Equal(t, 1, market.calls("SPY"))

	// 성공 → 점수 순, 실패는 뒤로
	assert.Equal(t, "NVDA", results[0].Ticker)
	assert.Equal(t, "INTC", results[1].Ticker)
	assert.Equal(t, "ZZZZ", results[2].Ticker)
	assert.Error(t, results[2].Error)

	recs := Recommendations(results)
	assert.Len(t, recs, 2)
}

func TestRunner_Cancelled(t *testing.T) {
	a := newTestAnalyzer(seededMarket(), nil)
	runner := NewRunner(a, 2, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := runner.Run(ctx, []string{"NVDA", "INTC"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "MSFT"}, dedupe([]string{"aapl", " AAPL", "", "MSFT"}))
}

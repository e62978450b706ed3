package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/sepa/internal/contracts"
	"github.com/wonny/sepa/pkg/config"
	"github.com/wonny/sepa/pkg/logger"
	"github.com/wonny/sepa/pkg/redis"
)

func f(v float64) *float64 { return &v }

// memStore is an in-memory Store with JSON round-tripping like redis.Cache
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (m *memStore) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = b
	m.ttls[key] = ttl
	return nil
}

type stubMarket struct {
	mu          sync.Mutex
	seriesCalls int
	quoteCalls  int
	athCalls    int
	series      contracts.PriceSeries
	err         error
}

func (s *stubMarket) GetPriceSeries(_ context.Context, _ string, _ int) (contracts.PriceSeries, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seriesCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.series, nil
}

func (s *stubMarket) GetQuote(_ context.Context, ticker string) (*contracts.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quoteCalls++
	if s.err != nil {
		return nil, s.err
	}
	return &contracts.Quote{Ticker: ticker, Price: 101.5}, nil
}

func (s *stubMarket) GetAllTimeHigh(_ context.Context, _ string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.athCalls++
	if s.err != nil {
		return 0, s.err
	}
	return 250, nil
}

type stubFundamentals struct {
	mu    sync.Mutex
	calls int
	fund  *contracts.Fundamentals
	err   error
}

func (s *stubFundamentals) GetFundamentals(_ context.Context, _ string) (*contracts.Fundamentals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.fund, s.err
}

// slowFundamentals answers after delay unless its context is cancelled first
type slowFundamentals struct {
	delay time.Duration
	fund  *contracts.Fundamentals
}

func (s *slowFundamentals) GetFundamentals(ctx context.Context, _ string) (*contracts.Fundamentals, error) {
	select {
	case <-time.After(s.delay):
		return s.fund, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestComposite_SecondaryFailureDoesNotCancelPrimary(t *testing.T) {
	primary := &slowFundamentals{delay: 50 * time.Millisecond, fund: &contracts.Fundamentals{Source: "yahoo"}}
	secondary := &stubFundamentals{err: errors.New("blocked")}

	c := NewComposite(primary, secondary, logger.NewNop())
	got, err := c.GetFundamentals(context.Background(), "NVDA")

	require.NoError(t, err)
	assert.Equal(t, "yahoo", got.Source)
}

func TestMerge(t *testing.T) {
	earnings := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	primary := &contracts.Fundamentals{
		Ticker:       "NVDA",
		Source:       "yahoo",
		QuarterlyEPS: []float64{5.16, 4.02, 2.70, 0.82},
		ROE:          f(0.91),
		TrailingPE:   f(72.4),
	}
	secondary := &contracts.Fundamentals{
		Ticker:            "NVDA",
		Source:            "finviz",
		ROE:               f(0.50),
		DebtToEquity:      f(25),
		ShortRatio:        f(0.9),
		NextEarningsDate:  &earnings,
		RecommendationKey: "strong_buy",
	}

	merged := Merge(primary, secondary)

	assert.Equal(t, "yahoo+finviz", merged.Source)
	assert.Equal(t, []float64{5.16, 4.02, 2.70, 0.82}, merged.QuarterlyEPS)
	assert.Equal(t, 0.91, *merged.ROE, "primary wins")
	assert.Equal(t, 25.0, *merged.DebtToEquity, "secondary fills")
	assert.Equal(t, 0.9, *merged.ShortRatio)
	assert.Equal(t, &earnings, merged.NextEarningsDate)
	assert.Equal(t, "strong_buy", merged.RecommendationKey)

	// inputs untouched
	assert.Nil(t, primary.DebtToEquity)
	assert.Equal(t, "yahoo", primary.Source)
}

func TestMerge_Edges(t *testing.T) {
	only := &contracts.Fundamentals{Source: "yahoo", ROE: f(0.2)}

	assert.Equal(t, "yahoo", Merge(only, nil).Source)
	assert.Same(t, only, Merge(nil, only))
	assert.Equal(t, "yahoo", Merge(only, &contracts.Fundamentals{Source: "finviz"}).Source, "nothing filled")
}

func TestComposite(t *testing.T) {
	log := logger.NewNop()
	yahooFund := &contracts.Fundamentals{Source: "yahoo", QuarterlyEPS: []float64{1, 2}}
	finvizFund := &contracts.Fundamentals{Source: "finviz", ROE: f(0.3)}
	boom := errors.New("boom")

	tests := []struct {
		name       string
		primary    *stubFundamentals
		secondary  *stubFundamentals
		wantSource string
		wantErr    bool
	}{
		{"both ok", &stubFundamentals{fund: yahooFund}, &stubFundamentals{fund: finvizFund}, "yahoo+finviz", false},
		{"primary fails", &stubFundamentals{err: boom}, &stubFundamentals{fund: finvizFund}, "finviz", false},
		{"secondary fails", &stubFundamentals{fund: yahooFund}, &stubFundamentals{err: boom}, "yahoo", false},
		{"both fail", &stubFundamentals{err: boom}, &stubFundamentals{err: boom}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewComposite(tt.primary, tt.secondary, log)
			got, err := c.GetFundamentals(context.Background(), "NVDA")

			assert.Equal(t, 1, tt.primary.calls)
			assert.Equal(t, 1, tt.secondary.calls)

			if tt.wantErr {
				assert.ErrorIs(t, err, boom)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSource, got.Source)
		})
	}
}

func TestCachedMarketData(t *testing.T) {
	series := contracts.PriceSeries{
		{Date: time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), Open: 1, High: 2, Low: 1, Close: 2, Volume: 100},
		{Date: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), Open: 2, High: 3, Low: 2, Close: 3, Volume: 200},
	}
	next := &stubMarket{series: series}
	mem := newMemStore()
	ttl := DefaultTTLs()

	c := NewCachedMarketData(next, mem, ttl, logger.NewNop())
	c.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	first, err := c.GetPriceSeries(ctx, "NVDA", 400)
	require.NoError(t, err)
	second, err := c.GetPriceSeries(ctx, "NVDA", 400)
	require.NoError(t, err)

	assert.Equal(t, 1, next.seriesCalls)
	assert.Equal(t, len(first), len(second))
	assert.True(t, first[1].Date.Equal(second[1].Date))
	assert.Equal(t, ttl.Prices, mem.ttls[redis.SeriesKey("NVDA", 400, "2024-03-01")])

	// 날짜가 바뀌면 새로 조회
	c.now = func() time.Time { return time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC) }
	_, err = c.GetPriceSeries(ctx, "NVDA", 400)
	require.NoError(t, err)
	assert.Equal(t, 2, next.seriesCalls)

	for i := 0; i < 3; i++ {
		q, err := c.GetQuote(ctx, "NVDA")
		require.NoError(t, err)
		assert.Equal(t, 101.5, q.Price)
	}
	assert.Equal(t, 1, next.quoteCalls)
}

func TestCachedMarketData_AllTimeHigh(t *testing.T) {
	next := &stubMarket{}
	mem := newMemStore()
	ttl := DefaultTTLs()

	c := NewCachedMarketData(next, mem, ttl, logger.NewNop())
	c.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	for i := 0; i < 2; i++ {
		high, err := c.GetAllTimeHigh(context.Background(), "nvda")
		require.NoError(t, err)
		assert.Equal(t, 250.0, high)
	}
	assert.Equal(t, 1, next.athCalls)
	assert.Equal(t, ttl.Prices, mem.ttls[redis.ATHKey("NVDA", "2024-03-01")])
}

func TestCachedMarketData_ErrorsNotCached(t *testing.T) {
	next := &stubMarket{err: contracts.ErrTickerNotFound}
	mem := newMemStore()
	c := NewCachedMarketData(next, mem, DefaultTTLs(), logger.NewNop())

	_, err := c.GetPriceSeries(context.Background(), "ZZZZ", 400)
	assert.ErrorIs(t, err, contracts.ErrTickerNotFound)
	_, err = c.GetPriceSeries(context.Background(), "ZZZZ", 400)
	assert.ErrorIs(t, err, contracts.ErrTickerNotFound)

	assert.Equal(t, 2, next.seriesCalls)
	assert.Empty(t, mem.data)
}

func TestCachedFundamentals_StoreFailureFallsThrough(t *testing.T) {
	next := &stubFundamentals{fund: &contracts.Fundamentals{Source: "yahoo", ROE: f(0.4)}}
	mem := newMemStore()
	mem.err = errors.New("connection refused")

	c := NewCachedFundamentals(next, "yahoo", mem, time.Hour, logger.NewNop())

	for i := 0; i < 2; i++ {
		fund, err := c.GetFundamentals(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.Equal(t, 0.4, *fund.ROE)
	}
	assert.Equal(t, 2, next.calls)
}

func TestCachedFundamentals_Hit(t *testing.T) {
	next := &stubFundamentals{fund: &contracts.Fundamentals{Source: "composite", QuarterlyEPS: []float64{1.2, 1.0}}}
	mem := newMemStore()
	c := NewCachedFundamentals(next, "composite", mem, time.Hour, logger.NewNop())

	for i := 0; i < 3; i++ {
		fund, err := c.GetFundamentals(context.Background(), "aapl")
		require.NoError(t, err)
		assert.Equal(t, []float64{1.2, 1.0}, fund.QuarterlyEPS)
	}
	assert.Equal(t, 1, next.calls)
	assert.Contains(t, mem.data, redis.FundamentalsKey("composite", "AAPL"))
}

func TestNewProviders(t *testing.T) {
	tests := []struct {
		source  string
		wantErr bool
	}{
		{"yahoo", false},
		{"finviz", false},
		{"composite", false},
		{"bloomberg", true},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			cfg := &config.Config{MarketData: config.MarketDataConfig{FundamentalsSource: tt.source}}
			p, err := NewProviders(cfg, redis.NewDisabled(), logger.NewNop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, p.Market)
			assert.NotNil(t, p.Fundamentals)
		})
	}
}

package datasource

import (
	"context"
	"time"

	"github.com/wonny/sepa/internal/contracts"
	"github.com/wonny/sepa/internal/metrics"
	"github.com/wonny/sepa/pkg/logger"
	"github.com/wonny/sepa/pkg/redis"
)

// Store is the subset of redis.Cache the wrappers need
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// TTLs for the cached providers
type TTLs struct {
	Prices       time.Duration
	Quote        time.Duration
	Fundamentals time.Duration
}

// DefaultTTLs mirrors the redis package presets
func DefaultTTLs() TTLs {
	return TTLs{
		Prices:       redis.TTLPrices,
		Quote:        redis.TTLQuote,
		Fundamentals: redis.TTLFundamentals,
	}
}

// lookup reads key into dest and records the outcome.
// Cache errors are logged and treated as a miss.
func lookup(ctx context.Context, s Store, log *logger.Logger, kind, key string, dest interface{}) bool {
	found, err := s.Get(ctx, key, dest)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues(kind, "error").Inc()
		log.WithError(err).WithField("key", key).Warn("Cache read failed")
		return false
	case found:
		metrics.CacheLookups.WithLabelValues(kind, "hit").Inc()
		return true
	default:
		metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()
		return false
	}
}

func save(ctx context.Context, s Store, log *logger.Logger, key string, value interface{}, ttl time.Duration) {
	if err := s.Set(ctx, key, value, ttl); err != nil {
		log.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}

// CachedMarketData caches series and quotes in front of a provider
type CachedMarketData struct {
	next   contracts.MarketDataProvider
	store  Store
	ttl    TTLs
	logger *logger.Logger
	now    func() time.Time
}

// NewCachedMarketData wraps next with a cache
func NewCachedMarketData(next contracts.MarketDataProvider, s Store, ttl TTLs, log *logger.Logger) *CachedMarketData {
	return &CachedMarketData{
		next:   next,
		store:  s,
		ttl:    ttl,
		logger: log,
		now:    time.Now,
	}
}

// GetPriceSeries returns the cached series for today's key or fetches it
func (c *CachedMarketData) GetPriceSeries(ctx context.Context, ticker string, lookbackDays int) (contracts.PriceSeries, error) {
	key := redis.SeriesKey(ticker, lookbackDays, c.now().UTC().Format("2006-01-02"))

	var cached contracts.PriceSeries
	if lookup(ctx, c.store, c.logger, "series", key, &cached) && len(cached) > 0 {
		return cached, nil
	}

	series, err := c.next.GetPriceSeries(ctx, ticker, lookbackDays)
	if err != nil {
		return nil, err
	}

	save(ctx, c.store, c.logger, key, series, c.ttl.Prices)
	return series, nil
}

// GetQuote returns a cached quote or fetches it
func (c *CachedMarketData) GetQuote(ctx context.Context, ticker string) (*contracts.Quote, error) {
	key := redis.QuoteKey(ticker)

	var cached contracts.Quote
	if lookup(ctx, c.store, c.logger, "quote", key, &cached) && cached.Price > 0 {
		return &cached, nil
	}

	quote, err := c.next.GetQuote(ctx, ticker)
	if err != nil {
		return nil, err
	}

	save(ctx, c.store, c.logger, key, quote, c.ttl.Quote)
	return quote, nil
}

// GetAllTimeHigh returns today's cached all-time high or fetches it
func (c *CachedMarketData) GetAllTimeHigh(ctx context.Context, ticker string) (float64, error) {
	key := redis.ATHKey(ticker, c.now().UTC().Format("2006-01-02"))

	var cached float64
	if lookup(ctx, c.store, c.logger, "ath", key, &cached) && cached > 0 {
		return cached, nil
	}

	high, err := c.next.GetAllTimeHigh(ctx, ticker)
	if err != nil {
		return 0, err
	}

	save(ctx, c.store, c.logger, key, high, c.ttl.Prices)
	return high, nil
}

// CachedFundamentals caches a fundamentals provider under a source name
type CachedFundamentals struct {
	next   contracts.FundamentalsProvider
	source string
	store  Store
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedFundamentals wraps next with a cache; source namespaces the key
func NewCachedFundamentals(next contracts.FundamentalsProvider, source string, s Store, ttl time.Duration, log *logger.Logger) *CachedFundamentals {
	return &CachedFundamentals{
		next:   next,
		source: source,
		store:  s,
		ttl:    ttl,
		logger: log,
	}
}

// GetFundamentals returns cached fundamentals or fetches them
func (c *CachedFundamentals) GetFundamentals(ctx context.Context, ticker string) (*contracts.Fundamentals, error) {
	key := redis.FundamentalsKey(c.source, ticker)

	var cached contracts.Fundamentals
	if lookup(ctx, c.store, c.logger, "fundamentals", key, &cached) {
		return &cached, nil
	}

	fund, err := c.next.GetFundamentals(ctx, ticker)
	if err != nil {
		return nil, err
	}

	save(ctx, c.store, c.logger, key, fund, c.ttl)
	return fund, nil
}

package datasource

import (
	"fmt"

	"github.com/wonny/sepa/internal/contracts"
	"github.com/wonny/sepa/internal/external/finviz"
	"github.com/wonny/sepa/internal/external/yahoo"
	"github.com/wonny/sepa/pkg/config"
	"github.com/wonny/sepa/pkg/httputil"
	"github.com/wonny/sepa/pkg/logger"
	"github.com/wonny/sepa/pkg/redis"
)

// Providers is the wired data layer handed to the analyzer
type Providers struct {
	Market       contracts.MarketDataProvider
	Fundamentals contracts.FundamentalsProvider
}

// NewProviders builds the configured providers.
// With Redis enabled, rate limits are shared across processes and responses are cached.
// ⭐ SSOT: 데이터 소스 조립은 여기서만
func NewProviders(cfg *config.Config, rc *redis.Client, log *logger.Logger) (*Providers, error) {
	md := cfg.MarketData

	yahooHTTP := httputil.New(cfg, log)
	finvizHTTP := httputil.New(cfg, log)
	if rc.Enabled() {
		rl := redis.NewRateLimiter(rc, "sepa")
		yahooHTTP.WithLimiter(rl.Limiter(redis.YahooRateLimit))
		finvizHTTP.WithLimiter(rl.Limiter(redis.FinvizRateLimit))
	}

	yc := yahoo.NewClient(yahooHTTP, md, log)
	fc := finviz.NewClient(finvizHTTP, md, log)

	var fundamentals contracts.FundamentalsProvider
	switch md.FundamentalsSource {
	case yahoo.SourceName:
		fundamentals = yc
	case finviz.SourceName:
		fundamentals = fc
	case "composite":
		fundamentals = NewComposite(yc, fc, log)
	default:
		return nil, fmt.Errorf("unknown fundamentals source %q", md.FundamentalsSource)
	}

	p := &Providers{
		Market:       yc,
		Fundamentals: fundamentals,
	}

	if rc.Enabled() {
		cache := redis.NewCache(rc, "sepa")
		ttl := DefaultTTLs()
		if md.PriceCacheTTL > 0 {
			ttl.Prices = md.PriceCacheTTL
		}
		if md.FundamentalCacheTTL > 0 {
			ttl.Fundamentals = md.FundamentalCacheTTL
		}
		p.Market = NewCachedMarketData(p.Market, cache, ttl, log)
		p.Fundamentals = NewCachedFundamentals(p.Fundamentals, md.FundamentalsSource, cache, ttl.Fundamentals, log)
	}

	log.WithFields(map[string]interface{}{
		"fundamentals": md.FundamentalsSource,
		"cache":        rc.Enabled(),
	}).Info("Data providers ready")

	return p, nil
}

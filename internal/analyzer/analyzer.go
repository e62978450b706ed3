package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/sepa/internal/contracts"
	"github.com/wonny/sepa/internal/metrics"
	"github.com/wonny/sepa/pkg/logger"
)

// Config holds analyzer configuration
type Config struct {
	BenchmarkTicker string
	LookbackDays    int
}

// Analyzer fetches inputs for a ticker and evaluates it
type Analyzer struct {
	market       contracts.MarketDataProvider
	fundamentals contracts.FundamentalsProvider
	engine       *Engine
	cfg          Config
	logger       *logger.Logger
	now          func() time.Time
}

// New creates a new Analyzer
func New(
	market contracts.MarketDataProvider,
	fundamentals contracts.FundamentalsProvider,
	engine *Engine,
	cfg Config,
	log *logger.Logger,
) *Analyzer {
	return &Analyzer{
		market:       market,
		fundamentals: fundamentals,
		engine:       engine,
		cfg:          cfg,
		logger:       log.WithField("module", "analyzer"),
		now:          time.Now,
	}
}

// Benchmark fetches the benchmark series shared by every evaluation of a run
func (a *Analyzer) Benchmark(ctx context.Context) (contracts.PriceSeries, error) {
	series, err := a.market.GetPriceSeries(ctx, a.cfg.BenchmarkTicker, a.cfg.LookbackDays)
	if err != nil {
		return nil, fmt.Errorf("fetch benchmark %s: %w", a.cfg.BenchmarkTicker, err)
	}
	return series, nil
}

// Analyze evaluates a single ticker, fetching the benchmark itself
func (a *Analyzer) Analyze(ctx context.Context, ticker string) (*contracts.Recommendation, error) {
	bench, err := a.Benchmark(ctx)
	if err != nil {
		// 벤치마크 없이도 상대강도 외 항목은 평가 가능
		a.logger.WithError(err).Warn("Benchmark unavailable, relative strength will be neutral")
		bench = nil
	}
	return a.AnalyzeWithBenchmark(ctx, ticker, bench)
}

// AnalyzeWithBenchmark evaluates a ticker against an already fetched benchmark
func (a *Analyzer) AnalyzeWithBenchmark(ctx context.Context, ticker string, bench contracts.PriceSeries) (*contracts.Recommendation, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, errors.New("empty ticker")
	}

	start := time.Now()
	in, err := a.fetch(ctx, ticker)
	metrics.StageLatency.WithLabelValues("fetch").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EvaluationsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	in.Benchmark = bench

	start = time.Now()
	rec := a.engine.Evaluate(in)
	metrics.StageLatency.WithLabelValues("evaluate").Observe(time.Since(start).Seconds())

	metrics.EvaluationsTotal.WithLabelValues("ok").Inc()
	if rec.BuyReady {
		metrics.EvaluationsTotal.WithLabelValues("buy_ready").Inc()
	}

	a.logger.WithFields(map[string]interface{}{
		"ticker":    ticker,
		"score":     rec.Fundamentals.TotalScore,
		"tier":      rec.Fundamentals.Tier,
		"vcp":       rec.VCP != nil,
		"rr":        rec.Plan.RiskRewardRatio,
		"buy_ready": rec.BuyReady,
	}).Debug("Analyzed ticker")

	return &rec, nil
}

// fetch loads series, quote, all-time high and fundamentals concurrently.
// Only the price series is mandatory; the others degrade to nil or zero.
func (a *Analyzer) fetch(ctx context.Context, ticker string) (Input, error) {
	in := Input{Ticker: ticker, AsOf: a.now()}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		series, err := a.market.GetPriceSeries(gctx, ticker, a.cfg.LookbackDays)
		if err != nil {
			return fmt.Errorf("fetch prices %s: %w", ticker, err)
		}
		if series.Len() == 0 {
			return fmt.Errorf("fetch prices %s: %w", ticker, contracts.ErrNoData)
		}
		in.Series = series
		return nil
	})

	g.Go(func() error {
		quote, err := a.market.GetQuote(gctx, ticker)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.logger.WithError(err).WithField("ticker", ticker).Warn("Quote unavailable")
			return nil
		}
		in.Quote = quote
		return nil
	})

	g.Go(func() error {
		high, err := a.market.GetAllTimeHigh(gctx, ticker)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// 조회 구간 최고가로 대체
			a.logger.WithError(err).WithField("ticker", ticker).Debug("All-time high unavailable")
			return nil
		}
		in.AllTimeHigh = high
		return nil
	})

	if a.fundamentals != nil {
		g.Go(func() error {
			fund, err := a.fundamentals.GetFundamentals(gctx, ticker)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				a.logger.WithError(err).WithField("ticker", ticker).Warn("Fundamentals unavailable")
				return nil
			}
			in.Fundamentals = fund
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Input{}, err
	}
	return in, nil
}

package analyzer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wonny/sepa/internal/contracts"
	"github.com/wonny/sepa/internal/metrics"
	"github.com/wonny/sepa/pkg/logger"
)

// Result is the outcome of one ticker in a batch run
type Result struct {
	Ticker         string
	Recommendation *contracts.Recommendation
	Error          error
}

// RunSummary aggregates a batch run
type RunSummary struct {
	Total    int
	Success  int
	Failed   int
	BuyReady int
	Duration time.Duration
}

// Runner fans evaluations out across a fixed worker pool
// ⭐ SSOT: 다종목 배치 평가는 여기서만
type Runner struct {
	analyzer *Analyzer
	workers  int
	logger   *logger.Logger
}

// NewRunner creates a batch runner
func NewRunner(a *Analyzer, workers int, log *logger.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{
		analyzer: a,
		workers:  workers,
		logger:   log.WithField("module", "runner"),
	}
}

// Run evaluates all tickers. The benchmark is fetched once and shared
// read-only by every worker. Failed tickers are logged and reported in
// their Result; Run itself only fails when the context is cancelled.
func (r *Runner) Run(ctx context.Context, tickers []string) ([]Result, RunSummary, error) {
	start := time.Now()
	tickers = dedupe(tickers)

	r.logger.WithFields(map[string]interface{}{
		"ticker_count": len(tickers),
		"workers":      r.workers,
	}).Info("Starting batch evaluation")

	bench, err := r.analyzer.Benchmark(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, RunSummary{}, ctx.Err()
		}
		r.logger.WithError(err).Warn("Benchmark unavailable, relative strength will be neutral")
	}

	// Create worker pool
	results := make([]Result, 0, len(tickers))
	resultCh := make(chan Result, len(tickers))
	tickerCh := make(chan string, len(tickers))

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			r.worker(ctx, workerID, bench, tickerCh, resultCh)
		}(i)
	}

	for _, t := range tickers {
		tickerCh <- t
	}
	close(tickerCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	summary := RunSummary{Total: len(tickers)}
	for result := range resultCh {
		results = append(results, result)
		switch {
		case result.Error != nil:
			summary.Failed++
		default:
			summary.Success++
			if result.Recommendation.BuyReady {
				summary.BuyReady++
			}
		}
	}

	sortResults(results)
	summary.Duration = time.Since(start)
	metrics.ScanDuration.Set(summary.Duration.Seconds())

	r.logger.WithFields(map[string]interface{}{
		"success":   summary.Success,
		"failed":    summary.Failed,
		"buy_ready": summary.BuyReady,
		"duration":  summary.Duration.String(),
	}).Info("Batch evaluation completed")

	if err := ctx.Err(); err != nil {
		return results, summary, fmt.Errorf("batch interrupted: %w", err)
	}
	return results, summary, nil
}

// worker evaluates tickers until the channel is drained
func (r *Runner) worker(ctx context.Context, workerID int, bench contracts.PriceSeries, tickerCh <-chan string, resultCh chan<- Result) {
	for ticker := range tickerCh {
		select {
		case <-ctx.Done():
			resultCh <- Result{Ticker: ticker, Error: ctx.Err()}
			continue
		default:
		}

		rec, err := r.analyzer.AnalyzeWithBenchmark(ctx, ticker, bench)
		if err != nil {
			r.logger.WithError(err).WithFields(map[string]interface{}{
				"worker": workerID,
				"ticker": ticker,
			}).Error("Failed to evaluate ticker")
			resultCh <- Result{Ticker: ticker, Error: err}
			continue
		}

		resultCh <- Result{Ticker: ticker, Recommendation: rec}
	}
}

// Recommendations returns successful recommendations, best score first
func Recommendations(results []Result) []*contracts.Recommendation {
	recs := make([]*contracts.Recommendation, 0, len(results))
	for _, r := range results {
		if r.Error == nil && r.Recommendation != nil {
			recs = append(recs, r.Recommendation)
		}
	}
	return recs
}

// sortResults: 매수 준비 → 점수 내림차순 → 티커, 실패는 뒤로
func sortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if (a.Error == nil) != (b.Error == nil) {
			return a.Error == nil
		}
		if a.Error != nil {
			return a.Ticker < b.Ticker
		}
		if a.Recommendation.BuyReady != b.Recommendation.BuyReady {
			return a.Recommendation.BuyReady
		}
		if a.Recommendation.Fundamentals.TotalScore != b.Recommendation.Fundamentals.TotalScore {
			return a.Recommendation.Fundamentals.TotalScore > b.Recommendation.Fundamentals.TotalScore
		}
		return a.Ticker < b.Ticker
	})
}

func dedupe(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

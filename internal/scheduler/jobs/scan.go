package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/sepa/internal/analyzer"
	"github.com/wonny/sepa/internal/contracts"
	"github.com/wonny/sepa/pkg/logger"
)

// ErrAllFailed is returned when no ticker of a scan could be evaluated
var ErrAllFailed = errors.New("every ticker failed")

// BatchRunner evaluates many tickers
type BatchRunner interface {
	Run(ctx context.Context, tickers []string) ([]analyzer.Result, analyzer.RunSummary, error)
}

// ScanJob evaluates the watchlist after the close and stores the results
// ⭐ SSOT: 장 마감 후 정기 스캔 작업
type ScanJob struct {
	runner    BatchRunner
	repo      contracts.RecommendationRepository // optional
	watchlist func() ([]string, error)
	schedule  string
	logger    *logger.Logger
}

// NewScanJob creates a scan job. watchlist is re-read on every run so
// edits to the file apply without a restart.
func NewScanJob(
	runner BatchRunner,
	repo contracts.RecommendationRepository,
	watchlist func() ([]string, error),
	schedule string,
	log *logger.Logger,
) *ScanJob {
	return &ScanJob{
		runner:    runner,
		repo:      repo,
		watchlist: watchlist,
		schedule:  schedule,
		logger:    log.WithField("job", "sepa_scan"),
	}
}

// Name returns the job name
func (j *ScanJob) Name() string {
	return "sepa_scan"
}

// Schedule returns the cron schedule
func (j *ScanJob) Schedule() string {
	return j.schedule
}

// Run executes the scan
func (j *ScanJob) Run(ctx context.Context) error {
	tickers, err := j.watchlist()
	if err != nil {
		return fmt.Errorf("load watchlist: %w", err)
	}
	if len(tickers) == 0 {
		j.logger.Warn("Watchlist is empty, nothing to scan")
		return nil
	}

	results, summary, err := j.runner.Run(ctx, tickers)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	if summary.Success == 0 {
		return fmt.Errorf("scan of %d tickers: %w", summary.Total, ErrAllFailed)
	}

	if j.repo != nil {
		if err := j.repo.SaveBatch(ctx, analyzer.Recommendations(results)); err != nil {
			return fmt.Errorf("save scan results: %w", err)
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"total":     summary.Total,
		"success":   summary.Success,
		"failed":    summary.Failed,
		"buy_ready": summary.BuyReady,
		"duration":  summary.Duration,
		"saved":     j.repo != nil,
	}).Info("Scan completed")

	return nil
}

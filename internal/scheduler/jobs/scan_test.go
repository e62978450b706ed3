package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/sepa/internal/analyzer"
	"github.com/wonny/sepa/internal/contracts"
	"github.com/wonny/sepa/pkg/logger"
)

type stubRunner struct {
	results []analyzer.Result
	err     error
	calls   int
}

func (s *stubRunner) Run(_ context.Context, tickers []string) ([]analyzer.Result, analyzer.RunSummary, error) {
	s.calls++
	if s.err != nil {
		return nil, analyzer.RunSummary{}, s.err
	}
	sum := analyzer.RunSummary{Total: len(s.results)}
	for _, r := range s.results {
		if r.Error != nil {
			sum.Failed++
		} else {
			sum.Success++
		}
	}
	return s.results, sum, nil
}

type stubRepo struct {
	contracts.RecommendationRepository
	saved []*contracts.Recommendation
	err   error
}

func (s *stubRepo) SaveBatch(_ context.Context, recs []*contracts.Recommendation) error {
	s.saved = append(s.saved, recs...)
	return s.err
}

func list(tickers ...string) func() ([]string, error) {
	return func() ([]string, error) { return tickers, nil }
}

func TestScanJob(t *testing.T) {
	ok := analyzer.Result{Ticker: "NVDA", Recommendation: &contracts.Recommendation{Ticker: "NVDA"}}
	bad := analyzer.Result{Ticker: "ZZZZ", Error: contracts.ErrTickerNotFound}

	tests := []struct {
		name      string
		runner    *stubRunner
		repo      *stubRepo
		watchlist func() ([]string, error)
		wantErr   error
		wantSaved int
	}{
		{"saves successes", &stubRunner{results: []analyzer.Result{ok, bad}}, &stubRepo{}, list("NVDA", "ZZZZ"), nil, 1},
		{"no repo", &stubRunner{results: []analyzer.Result{ok}}, nil, list("NVDA"), nil, 0},
		{"all failed", &stubRunner{results: []analyzer.Result{bad}}, &stubRepo{}, list("ZZZZ"), ErrAllFailed, 0},
		{"runner cancelled", &stubRunner{err: context.Canceled}, &stubRepo{}, list("NVDA"), context.Canceled, 0},
		{"save failure", &stubRunner{results: []analyzer.Result{ok}}, &stubRepo{err: errors.New("db down")}, list("NVDA"), nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var repo contracts.RecommendationRepository
			if tt.repo != nil {
				repo = tt.repo
			}
			job := NewScanJob(tt.runner, repo, tt.watchlist, "0 30 16 * * 1-5", logger.NewNop())

			err := job.Run(context.Background())

			switch {
			case tt.name == "save failure":
				assert.Error(t, err)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
			}
			if tt.repo != nil {
				assert.Len(t, tt.repo.saved, tt.wantSaved)
			}
		})
	}
}

func TestScanJob_Watchlist(t *testing.T) {
	runner := &stubRunner{}

	empty := NewScanJob(runner, nil, list(), "@daily", logger.NewNop())
	assert.NoError(t, empty.Run(context.Background()))
	assert.Equal(t, 0, runner.calls)

	broken := NewScanJob(runner, nil, func() ([]string, error) { return nil, errors.New("no such file") }, "@daily", logger.NewNop())
	assert.Error(t, broken.Run(context.Background()))

	assert.Equal(t, "sepa_scan", empty.Name())
	assert.Equal(t, "@daily", empty.Schedule())
}

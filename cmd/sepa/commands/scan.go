package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/sepa/internal/analyzer"
	"github.com/wonny/sepa/internal/watchlist"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "워치리스트 배치 스캔",
	Long: `워치리스트 전체를 병렬로 평가하고 요약 테이블을 출력합니다.

워치리스트 우선순위:
  1. --watchlist 파일
  2. SCAN_WATCHLIST 환경변수

Example:
  go run ./cmd/sepa scan --watchlist watchlist.txt
  go run ./cmd/sepa scan --workers 8 --save
  go run ./cmd/sepa scan --ready-only`,
	RunE: runScan,
}

var (
	scanWatchlist string
	scanWorkers   int
	scanSave      bool
	scanJSON      bool
	scanReadyOnly bool
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanWatchlist, "watchlist", "", "워치리스트 파일 (한 줄에 하나, # 주석)")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "동시 평가 수 (default: SCAN_WORKERS)")
	scanCmd.Flags().BoolVar(&scanSave, "save", false, "결과를 DB에 저장")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "JSON 출력")
	scanCmd.Flags().BoolVar(&scanReadyOnly, "ready-only", false, "매수 준비 종목만 출력")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	a, err := bootstrap(ctx, bootstrapOptions{requireDB: scanSave, workers: scanWorkers})
	if err != nil {
		return err
	}
	defer a.close()

	tickers, err := watchlist.Resolve(scanWatchlist, a.cfg.Scan.Watchlist)
	if err != nil {
		return err
	}
	if len(tickers) == 0 {
		return fmt.Errorf("watchlist is empty: pass --watchlist or set SCAN_WATCHLIST")
	}

	results, summary, err := a.runner.Run(ctx, tickers)
	if err != nil {
		return err
	}

	if scanSave {
		recs := analyzer.Recommendations(results)
		if err := a.repo.SaveBatch(ctx, recs); err != nil {
			return fmt.Errorf("save recommendations: %w", err)
		}
		a.log.WithField("count", len(recs)).Info("Recommendations saved")
	}

	if scanReadyOnly {
		results = readyOnly(results)
	}

	out := cmd.OutOrStdout()
	if scanJSON {
		return PrintResultsJSON(out, results)
	}

	fmt.Fprintln(out)
	PrintDoubleSeparator(out)
	fmt.Fprintf(out, "  SEPA Scan (%d tickers)\n", len(tickers))
	PrintDoubleSeparator(out)
	if err := PrintResultTable(out, results); err != nil {
		return err
	}
	PrintSummary(out, summary)

	if summary.Success == 0 {
		return fmt.Errorf("all %d tickers failed", summary.Total)
	}
	return nil
}

// readyOnly keeps successful buy-ready results
func readyOnly(results []analyzer.Result) []analyzer.Result {
	out := make([]analyzer.Result, 0, len(results))
	for _, res := range results {
		if res.Error == nil && res.Recommendation.BuyReady {
			out = append(out, res)
		}
	}
	return out
}

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/sepa/internal/analyzer"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [ticker...]",
	Short: "종목 평가 (VCP + 펀더멘털 + 진입/청산)",
	Long: `하나 이상의 종목을 평가하고 상세 리포트를 출력합니다.

벤치마크(기본 SPY)는 한 번만 조회하여 모든 종목의 RS 계산에 공유합니다.

Example:
  go run ./cmd/sepa analyze NVDA
  go run ./cmd/sepa analyze NVDA AAPL MSFT --json
  go run ./cmd/sepa analyze NVDA --save`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeJSON bool
	analyzeSave bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "JSON 출력")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "결과를 DB에 저장")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	a, err := bootstrap(ctx, bootstrapOptions{requireDB: analyzeSave})
	if err != nil {
		return err
	}
	defer a.close()

	results, summary, err := a.runner.Run(ctx, args)
	if err != nil {
		return err
	}

	if analyzeSave {
		if err := a.repo.SaveBatch(ctx, analyzer.Recommendations(results)); err != nil {
			return fmt.Errorf("save recommendations: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if analyzeJSON {
		return PrintResultsJSON(out, results)
	}

	for _, res := range results {
		if res.Error != nil {
			fmt.Fprintf(out, "\n❌ %s: %v\n", res.Ticker, res.Error)
			continue
		}
		PrintRecommendation(out, res.Recommendation)
	}
	PrintSummary(out, summary)

	if summary.Success == 0 {
		return fmt.Errorf("all %d tickers failed", summary.Total)
	}
	return nil
}

package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sepa",
	Short: "SEPA - Minervini 트렌드/VCP 종목 평가기",
	Long: `SEPA Unified CLI

종목별로 VCP 패턴, 펀더멘털 점수, 진입/청산 계획을 계산합니다.

Usage:
  go run ./cmd/sepa [command]

Examples:
  go run ./cmd/sepa analyze NVDA AAPL
  go run ./cmd/sepa scan --watchlist watchlist.txt --save
  go run ./cmd/sepa api
  go run ./cmd/sepa scheduler start
  go run ./cmd/sepa strategy show`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML (default: STRATEGY_FILE or built-in defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

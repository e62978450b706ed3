package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonny/sepa/internal/strategyconfig"
)

// strategyCmd represents the strategy command
var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "전략 설정 확인",
	Long: `전략 YAML을 검증하거나 적용될 값을 출력합니다.

Example:
  go run ./cmd/sepa strategy show
  go run ./cmd/sepa strategy validate --strategy config/strategy.yaml`,
}

var (
	strategyShowCmd = &cobra.Command{
		Use:   "show",
		Short: "적용될 전략 값 출력 (기본값 포함)",
		RunE:  showStrategy,
	}

	strategyValidateCmd = &cobra.Command{
		Use:   "validate",
		Short: "전략 YAML 검증",
		RunE:  validateStrategy,
	}
)

func init() {
	rootCmd.AddCommand(strategyCmd)
	strategyCmd.AddCommand(strategyShowCmd)
	strategyCmd.AddCommand(strategyValidateCmd)
}

func showStrategy(cmd *cobra.Command, args []string) error {
	cfg, err := strategyconfig.LoadOrDefault(strategyFile)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal strategy: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprint(w, string(out))
	return printStrategyChecks(cmd, cfg)
}

func validateStrategy(cmd *cobra.Command, args []string) error {
	if strategyFile == "" {
		return fmt.Errorf("--strategy is required")
	}

	cfg, _, err := strategyconfig.Load(strategyFile)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ %s is valid\n", strategyFile)
	return printStrategyChecks(cmd, cfg)
}

func printStrategyChecks(cmd *cobra.Command, cfg *strategyconfig.Config) error {
	w := cmd.OutOrStdout()

	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return err
	}

	PrintSeparator(w)
	fmt.Fprintf(w, "  Hash: %s\n", hash)
	for _, warn := range strategyconfig.Warn(cfg) {
		fmt.Fprintf(w, "  ⚠️  %s: %s\n", warn.Code, warn.Message)
	}
	return nil
}

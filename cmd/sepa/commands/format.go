package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/wonny/sepa/internal/analyzer"
	"github.com/wonny/sepa/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	doubleSeparator = "═══════════════════════════════════════════════════════════"
	separator       = "───────────────────────────────────────────────────────────"
)

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, separator)
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator(w io.Writer) {
	fmt.Fprintln(w, doubleSeparator)
}

// PrintJSON writes v as indented JSON
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// jsonResult is the --json shape of one ticker
type jsonResult struct {
	Ticker         string                    `json:"ticker"`
	Recommendation *contracts.Recommendation `json:"recommendation,omitempty"`
	Error          string                    `json:"error,omitempty"`
}

// PrintResultsJSON writes results with errors flattened to strings
func PrintResultsJSON(w io.Writer, results []analyzer.Result) error {
	out := make([]jsonResult, len(results))
	for i, res := range results {
		out[i] = jsonResult{Ticker: res.Ticker, Recommendation: res.Recommendation}
		if res.Error != nil {
			out[i].Error = res.Error.Error()
		}
	}
	return PrintJSON(w, out)
}

// PrintRecommendation prints the full report of one ticker
func PrintRecommendation(w io.Writer, rec *contracts.Recommendation) {
	fs := rec.Fundamentals
	plan := rec.Plan

	fmt.Fprintln(w)
	PrintDoubleSeparator(w)
	fmt.Fprintf(w, "  %s  $%.2f  %s\n", rec.Ticker, rec.CurrentPrice, readyLabel(rec.BuyReady))
	PrintSeparator(w)

	// Pattern
	if rec.VCP == nil {
		fmt.Fprintln(w, "  VCP        : no pattern")
	} else {
		fmt.Fprintf(w, "  VCP        : %d contractions %s (strength %.0f)\n",
			rec.VCP.NumContractions, formatContractions(rec.VCP.Contractions), rec.VCP.PatternStrength)
		fmt.Fprintf(w, "               volume %s, resistance %s, ready %s\n",
			yesNo(rec.VCP.VolumeContracting), yesNo(rec.VCP.NearResistance), yesNo(rec.VCP.ReadyToBuy))
	}
	if rec.ATHDistancePct != nil {
		fmt.Fprintf(w, "  From high  : -%.1f%%\n", *rec.ATHDistancePct)
	}

	// Fundamentals
	fmt.Fprintf(w, "  Score      : %.1f  %s / %s\n", fs.TotalScore, fs.Tier, fs.Quality)
	fmt.Fprintf(w, "  Components : EQ %s  GA %s  RS %s  FH %s  CT %s\n",
		formatComponent(fs.Earnings), formatComponent(fs.Growth), formatComponent(fs.RelativeStrength),
		formatComponent(fs.Health), formatComponent(fs.Catalyst))
	fmt.Fprintf(w, "  Trend      : %d/8 %s\n", fs.TrendTemplate.Score, passFail(fs.TrendTemplate.Pass))
	if fs.RSLine.Available {
		fmt.Fprintf(w, "  RS line    : p%.0f %s%s\n", fs.RSLine.Percentile, fs.RSLine.Trend, newHighLabel(fs.RSLine.AtNewHigh))
	}

	// Plan
	PrintSeparator(w)
	fmt.Fprintf(w, "  Entry      : %.2f (%.2f ~ %.2f)\n", plan.EntryPrice, plan.EntryRangeLow, plan.EntryRangeHigh)
	fmt.Fprintf(w, "  Stop       : %.2f (-%.1f%%)\n", plan.StopLoss, plan.RiskPct)
	fmt.Fprintf(w, "  Target     : %.2f (+%.1f%%)\n", plan.ExitPrice, plan.RewardPct)
	fmt.Fprintf(w, "  R/R        : %.2f %s\n", plan.RiskRewardRatio, passFail(plan.MeetsCriteria))
	fmt.Fprintf(w, "  Timing     : %s\n", plan.EntryTiming)
	PrintDoubleSeparator(w)
}

// PrintResultTable prints one line per ticker, errors included
func PrintResultTable(w io.Writer, results []analyzer.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKER\tPRICE\tSCORE\tTIER\tTT\tVCP\tR/R\tTIMING\tREADY")

	for _, res := range results {
		if res.Error != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\t-\tERROR\t%s\n", res.Ticker, truncate(res.Error.Error(), 40))
			continue
		}
		rec := res.Recommendation
		vcp := "-"
		if rec.VCP != nil {
			vcp = fmt.Sprintf("%d/%.0f", rec.VCP.NumContractions, rec.VCP.PatternStrength)
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%.1f\t%s\t%d/8\t%s\t%.2f\t%s\t%s\n",
			rec.Ticker,
			rec.CurrentPrice,
			rec.Fundamentals.TotalScore,
			rec.Fundamentals.Tier,
			rec.Fundamentals.TrendTemplate.Score,
			vcp,
			rec.Plan.RiskRewardRatio,
			rec.Plan.EntryTiming,
			yesNo(rec.BuyReady),
		)
	}
	return tw.Flush()
}

// PrintSummary prints the batch totals
func PrintSummary(w io.Writer, s analyzer.RunSummary) {
	PrintSeparator(w)
	fmt.Fprintf(w, "  Total %d | Success %d | Failed %d | Buy-ready %d | %.2fs\n",
		s.Total, s.Success, s.Failed, s.BuyReady, s.Duration.Seconds())
}

// === Helper Functions ===

func formatContractions(c []float64) string {
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = fmt.Sprintf("%.1f%%", v)
	}
	return "[" + strings.Join(parts, " > ") + "]"
}

func formatComponent(c *contracts.ScoreComponent) string {
	if c == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.0f", c.Score)
}

func readyLabel(ready bool) string {
	if ready {
		return "✅ BUY READY"
	}
	return "⏳ WATCH"
}

func newHighLabel(b bool) string {
	if b {
		return " (new high)"
	}
	return ""
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func passFail(b bool) string {
	if b {
		return "PASS"
	}
	return "FAIL"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

package analyzer

import (
	"time"

	"github.com/wonny/sepa/internal/contracts"
	"github.com/wonny/sepa/internal/entryexit"
	"github.com/wonny/sepa/internal/fundamental"
	"github.com/wonny/sepa/internal/indicator"
	"github.com/wonny/sepa/internal/pattern"
	"github.com/wonny/sepa/internal/strategyconfig"
	"github.com/wonny/sepa/pkg/logger"
)

// Input is everything one evaluation needs, already fetched
type Input struct {
	Ticker       string
	AsOf         time.Time
	Series       contracts.PriceSeries
	Benchmark    contracts.PriceSeries // shared, read-only
	Quote        *contracts.Quote
	Fundamentals *contracts.Fundamentals
	AllTimeHigh  float64 // 0 = unknown, series max high is used
}

// Engine runs pattern detection, scoring and plan calculation for one ticker
// ⭐ SSOT: 종목 평가 파이프라인 (I/O 없음)
//
// Engine holds no mutable state and is safe for concurrent use.
type Engine struct {
	detector   *pattern.Detector
	scorer     *fundamental.Scorer
	calculator *entryexit.Calculator
}

// NewEngine creates an engine from the strategy configuration
func NewEngine(cfg *strategyconfig.Config, log *logger.Logger) *Engine {
	return &Engine{
		detector:   pattern.NewDetector(cfg.Pattern, log),
		scorer:     fundamental.NewScorer(cfg.Fundamental, log),
		calculator: entryexit.NewCalculator(cfg.EntryExit, log),
	}
}

// Evaluate combines the three stages into a recommendation
func (e *Engine) Evaluate(in Input) contracts.Recommendation {
	snap := contracts.NewSnapshot(in.Ticker, in.Fundamentals, in.Quote, in.Series, in.Benchmark, in.AsOf)

	var athDistance *float64
	if d, err := indicator.ATHDistance(in.Series, in.AllTimeHigh, snap.CurrentPrice); err == nil {
		athDistance = &d
	}

	// 패턴 탐지와 점수 계산은 서로 독립
	vcp := e.detector.Detect(in.Series)
	score := e.scorer.Score(snap)
	plan := e.calculator.Calculate(in.Ticker, snap.CurrentPrice, in.Series, vcp, score, athDistance)

	rec := contracts.Recommendation{
		Ticker:         in.Ticker,
		AsOf:           in.AsOf,
		CurrentPrice:   snap.CurrentPrice,
		ATHDistancePct: athDistance,
		VCP:            vcp,
		Fundamentals:   score,
		Plan:           plan,
	}
	rec.BuyReady = rec.IsBuyCandidate()

	return rec
}

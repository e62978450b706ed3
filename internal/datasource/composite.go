package datasource

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/sepa/internal/contracts"
	"github.com/wonny/sepa/pkg/logger"
)

// Composite merges two fundamentals providers: primary wins, secondary fills gaps
// ⭐ SSOT: 펀더멘털 소스 병합 규칙은 여기서만
type Composite struct {
	primary   contracts.FundamentalsProvider
	secondary contracts.FundamentalsProvider
	logger    *logger.Logger
}

// NewComposite creates a composite provider
func NewComposite(primary, secondary contracts.FundamentalsProvider, log *logger.Logger) *Composite {
	return &Composite{
		primary:   primary,
		secondary: secondary,
		logger:    log,
	}
}

// GetFundamentals queries both providers concurrently and merges field by field.
// An error is returned only when both fail.
func (c *Composite) GetFundamentals(ctx context.Context, ticker string) (*contracts.Fundamentals, error) {
	var (
		first, second       *contracts.Fundamentals
		firstErr, secondErr error
	)

	// 한쪽 실패가 다른 쪽을 취소하지 않음
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		first, firstErr = c.primary.GetFundamentals(ctx, ticker)
	}()
	go func() {
		defer wg.Done()
		second, secondErr = c.secondary.GetFundamentals(ctx, ticker)
	}()
	wg.Wait()

	switch {
	case firstErr != nil && secondErr != nil:
		return nil, fmt.Errorf("all fundamentals sources failed: %w", firstErr)
	case firstErr != nil:
		c.logger.WithTicker(ticker).WithError(firstErr).Warn("Primary fundamentals failed, using secondary only")
		return second, nil
	case secondErr != nil:
		c.logger.WithTicker(ticker).WithError(secondErr).Debug("Secondary fundamentals failed")
		return first, nil
	}

	return Merge(first, second), nil
}

// Merge returns a copy of primary with every missing field taken from secondary
func Merge(primary, secondary *contracts.Fundamentals) *contracts.Fundamentals {
	if primary == nil {
		return secondary
	}
	merged := *primary
	if secondary == nil {
		return &merged
	}

	filled := false
	fill := func(dst **float64, src *float64) {
		if *dst == nil && src != nil {
			*dst = src
			filled = true
		}
	}

	if len(merged.QuarterlyEPS) == 0 && len(secondary.QuarterlyEPS) > 0 {
		merged.QuarterlyEPS = secondary.QuarterlyEPS
		filled = true
	}
	if len(merged.QuarterlyRevenue) == 0 && len(secondary.QuarterlyRevenue) > 0 {
		merged.QuarterlyRevenue = secondary.QuarterlyRevenue
		filled = true
	}

	fill(&merged.ROE, secondary.ROE)
	fill(&merged.DebtToEquity, secondary.DebtToEquity)
	fill(&merged.CurrentRatio, secondary.CurrentRatio)
	fill(&merged.OperatingMargin, secondary.OperatingMargin)
	fill(&merged.ProfitMargin, secondary.ProfitMargin)
	fill(&merged.TrailingPE, secondary.TrailingPE)
	fill(&merged.ShortPercentOfFloat, secondary.ShortPercentOfFloat)
	fill(&merged.ShortRatio, secondary.ShortRatio)
	fill(&merged.TargetMeanPrice, secondary.TargetMeanPrice)

	if merged.NextEarningsDate == nil && secondary.NextEarningsDate != nil {
		merged.NextEarningsDate = secondary.NextEarningsDate
		filled = true
	}
	if merged.RecommendationKey == "" && secondary.RecommendationKey != "" {
		merged.RecommendationKey = secondary.RecommendationKey
		filled = true
	}

	if filled && secondary.Source != "" {
		merged.Source = primary.Source + "+" + secondary.Source
	}
	return &merged
}

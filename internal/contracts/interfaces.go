package contracts

import (
	"context"
	"errors"
)

// Provider errors, checked with errors.Is
var (
	ErrNoData         = errors.New("no data")
	ErrTickerNotFound = errors.New("ticker not found")
)

// MarketDataProvider supplies price history and quotes
// ⭐ SSOT: 시세 데이터 제공자 인터페이스
type MarketDataProvider interface {
	GetPriceSeries(ctx context.Context, ticker string, lookbackDays int) (PriceSeries, error)
	GetQuote(ctx context.Context, ticker string) (*Quote, error)
	// GetAllTimeHigh returns the highest high over the full listing history
	GetAllTimeHigh(ctx context.Context, ticker string) (float64, error)
}

// FundamentalsProvider supplies quarterly results, ratios and catalysts
// ⭐ SSOT: 펀더멘털 데이터 제공자 인터페이스
type FundamentalsProvider interface {
	GetFundamentals(ctx context.Context, ticker string) (*Fundamentals, error)
}

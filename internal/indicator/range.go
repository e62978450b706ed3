package indicator

import (
	"errors"
	"math"

	"github.com/wonny/sepa/internal/contracts"
)

// TradingDaysPerYear is the bar count of a 52-week window
const TradingDaysPerYear = 252

// RollingHigh returns the highest high of the last n bars
func RollingHigh(series contracts.PriceSeries, n int) (float64, error) {
	window := series.Tail(n)
	if window.Len() == 0 {
		return 0, ErrInsufficientData
	}
	high := math.Inf(-1)
	for _, b := range window {
		if b.High > high {
			high = b.High
		}
	}
	return high, nil
}

// RollingLow returns the lowest low of the last n bars
func RollingLow(series contracts.PriceSeries, n int) (float64, error) {
	window := series.Tail(n)
	if window.Len() == 0 {
		return 0, ErrInsufficientData
	}
	low := math.Inf(1)
	for _, b := range window {
		if b.Low < low {
			low = b.Low
		}
	}
	return low, nil
}

// Range52Week scans the most recent 252 bars and returns the high and low
func Range52Week(series contracts.PriceSeries) (high, low float64, err error) {
	if series.Len() == 0 {
		return 0, 0, errors.New("no daily bars provided")
	}
	high, _ = RollingHigh(series, TradingDaysPerYear)
	low, _ = RollingLow(series, TradingDaysPerYear)
	return high, low, nil
}

// ATHDistance returns how far (%) price sits below the all-time high.
// knownHigh is the provider's all-time high (<= 0 = unknown); the series max
// high is used when it is higher or knownHigh is unknown. price <= 0 means the last close.
func ATHDistance(series contracts.PriceSeries, knownHigh, price float64) (float64, error) {
	ath, err := RollingHigh(series, series.Len())
	if err != nil {
		return 0, err
	}
	if knownHigh > ath {
		ath = knownHigh
	}
	if ath <= 0 {
		return 0, errors.New("non-positive all-time high")
	}
	if price <= 0 {
		price = series.LastClose()
	}
	dist := (ath - price) / ath * 100
	if dist < 0 {
		dist = 0
	}
	return dist, nil
}

// PercentRank returns the share (%) of values less than or equal to v
func PercentRank(values []float64, v float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, x := range values {
		if x <= v {
			count++
		}
	}
	return float64(count) / float64(len(values)) * 100
}

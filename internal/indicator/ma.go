package indicator

import "errors"

// ErrInsufficientData is returned when a window is longer than the input
var ErrInsufficientData = errors.New("not enough data")

// SMA computes the simple moving average of the last period values
func SMA(values []float64, period int) (float64, error) {
	return SMAAt(values, period, 0)
}

// SMAAt computes the simple moving average ending offset bars before the last value.
// SMAAt(v, 200, 20) is the 200-bar average as it stood 20 bars ago.
func SMAAt(values []float64, period, offset int) (float64, error) {
	if period <= 0 || offset < 0 {
		return 0, errors.New("period must be positive")
	}
	end := len(values) - offset
	if end < period {
		return 0, ErrInsufficientData
	}
	sum := 0.0
	for i := end - period; i < end; i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// Mean returns the arithmetic mean, 0 for an empty slice
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// PercentChange returns the % change over the last window bars
func PercentChange(values []float64, window int) (float64, error) {
	if window <= 0 {
		return 0, errors.New("window must be positive")
	}
	if len(values) <= window {
		return 0, ErrInsufficientData
	}
	base := values[len(values)-1-window]
	if base == 0 {
		return 0, errors.New("zero base value")
	}
	return (values[len(values)-1] - base) / base * 100, nil
}

package contracts

import "time"

// PriceBar is one daily OHLCV bar
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries is the daily history of one ticker, ascending by date.
// ⭐ SSOT: 가격 시계열 타입은 여기서만
//
// A series is built once by a market-data provider and never mutated by the
// scoring code. Sub-windows are plain re-slices and must be treated as read-only.
type PriceSeries []PriceBar

// Len returns the number of bars
func (s PriceSeries) Len() int {
	return len(s)
}

// Last returns the most recent bar; ok is false for an empty series
func (s PriceSeries) Last() (PriceBar, bool) {
	if len(s) == 0 {
		return PriceBar{}, false
	}
	return s[len(s)-1], true
}

// LastClose returns the most recent close, 0 for an empty series
func (s PriceSeries) LastClose() float64 {
	bar, ok := s.Last()
	if !ok {
		return 0
	}
	return bar.Close
}

// Tail returns the last n bars (the whole series when n >= Len)
func (s PriceSeries) Tail(n int) PriceSeries {
	if n <= 0 {
		return PriceSeries{}
	}
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// Closes extracts closing prices
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Highs extracts daily highs
func (s PriceSeries) Highs() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.High
	}
	return out
}

// Lows extracts daily lows
func (s PriceSeries) Lows() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Low
	}
	return out
}

// Volumes extracts daily volumes
func (s PriceSeries) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Volume
	}
	return out
}

// IsAscending reports whether dates are strictly increasing
func (s PriceSeries) IsAscending() bool {
	for i := 1; i < len(s); i++ {
		if !s[i].Date.After(s[i-1].Date) {
			return false
		}
	}
	return true
}

// Quote is the current trading snapshot of a ticker
type Quote struct {
	Ticker    string    `json:"ticker"`
	Price     float64   `json:"price"`
	High52W   float64   `json:"high_52w"`
	Low52W    float64   `json:"low_52w"`
	Currency  string    `json:"currency,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

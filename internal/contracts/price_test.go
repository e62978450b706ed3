package contracts

import (
	"testing"
	"time"
)

func makeSeries(closes ...float64) PriceSeries {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	series := make(PriceSeries, len(closes))
	for i, c := range closes {
		series[i] = PriceBar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return series
}

func TestPriceSeries_Tail(t *testing.T) {
	series := makeSeries(1, 2, 3, 4, 5)

	tests := []struct {
		name string
		n    int
		want int
	}{
		{"zero", 0, 0},
		{"negative", -1, 0},
		{"partial", 3, 3},
		{"exact", 5, 5},
		{"more than length", 10, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := series.Tail(tt.n)
			if got.Len() != tt.want {
				t.Errorf("Tail(%d).Len() = %d, want %d", tt.n, got.Len(), tt.want)
			}
		})
	}

	if last := series.Tail(2).Closes(); last[0] != 4 || last[1] != 5 {
		t.Errorf("Tail(2).Closes() = %v, want [4 5]", last)
	}
}

func TestPriceSeries_Extractors(t *testing.T) {
	series := makeSeries(10, 11)

	if got := series.Highs(); got[0] != 11 || got[1] != 12 {
		t.Errorf("Highs() = %v", got)
	}
	if got := series.Lows(); got[0] != 9 || got[1] != 10 {
		t.Errorf("Lows() = %v", got)
	}
	if got := series.Volumes(); got[0] != 1000 {
		t.Errorf("Volumes() = %v", got)
	}
	if got := series.LastClose(); got != 11 {
		t.Errorf("LastClose() = %v, want 11", got)
	}
}

func TestPriceSeries_Empty(t *testing.T) {
	var series PriceSeries

	if _, ok := series.Last(); ok {
		t.Error("Last() on empty series should return ok=false")
	}
	if series.LastClose() != 0 {
		t.Error("LastClose() on empty series should be 0")
	}
	if !series.IsAscending() {
		t.Error("empty series is trivially ascending")
	}
}

func TestPriceSeries_IsAscending(t *testing.T) {
	series := makeSeries(1, 2, 3)
	if !series.IsAscending() {
		t.Error("expected ascending")
	}

	series[2].Date = series[1].Date
	if series.IsAscending() {
		t.Error("duplicate date should not be ascending")
	}
}

package fundamental

import (
	"github.com/wonny/sepa/internal/contracts"
	"github.com/wonny/sepa/internal/indicator"
)

const dateKey = "2006-01-02"

// alignedCloses pairs stock and benchmark closes on every date present in both
func alignedCloses(stock, bench contracts.PriceSeries) (stockCloses, benchCloses []float64) {
	benchByDate := make(map[string]float64, bench.Len())
	for _, b := range bench {
		benchByDate[b.Date.Format(dateKey)] = b.Close
	}

	stockCloses = make([]float64, 0, stock.Len())
	benchCloses = make([]float64, 0, stock.Len())
	for _, b := range stock {
		bc, ok := benchByDate[b.Date.Format(dateKey)]
		if !ok || bc <= 0 {
			continue
		}
		stockCloses = append(stockCloses, b.Close)
		benchCloses = append(benchCloses, bc)
	}
	return stockCloses, benchCloses
}

// alignedRSLine returns stock close / benchmark close for every date present in both
func alignedRSLine(stock, bench contracts.PriceSeries) []float64 {
	stockCloses, benchCloses := alignedCloses(stock, bench)

	line := make([]float64, len(stockCloses))
	for i := range stockCloses {
		line[i] = stockCloses[i] / benchCloses[i]
	}
	return line
}

// rsLine classifies the RS line over the last year
func (s *Scorer) rsLine(stock, bench contracts.PriceSeries) contracts.RSLine {
	rs := s.cfg.RelStrength
	line := alignedRSLine(stock, bench)
	if len(line) < rs.MinAlignedPoints {
		return contracts.RSLine{Trend: contracts.TrendFlat}
	}

	if len(line) > rs.LineLookback {
		line = line[len(line)-rs.LineLookback:]
	}
	latest := line[len(line)-1]

	high := line[0]
	for _, v := range line {
		if v > high {
			high = v
		}
	}

	baseIdx := len(line) - 1 - rs.SlopeBars
	if baseIdx < 0 {
		baseIdx = 0
	}
	base := line[baseIdx]

	result := contracts.RSLine{
		Available:  true,
		Percentile: indicator.PercentRank(line, latest),
		AtNewHigh:  latest >= high*rs.NewHighRatio,
		Trend:      contracts.TrendFlat,
	}

	if base > 0 {
		result.SlopePct = (latest - base) / base * 100
		switch {
		case result.SlopePct > rs.SlopeThreshold:
			result.Trend = contracts.TrendUp
		case result.SlopePct < -rs.SlopeThreshold:
			result.Trend = contracts.TrendDown
		}
	}

	return result
}

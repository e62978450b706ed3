package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/wonny/sepa/internal/contracts"
)

// chartResponse is the response structure of /v8/finance/chart
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Currency             string   `json:"currency"`
		Symbol               string   `json:"symbol"`
		ExchangeTimezoneName string   `json:"exchangeTimezoneName"`
		RegularMarketPrice   *float64 `json:"regularMarketPrice"`
		RegularMarketTime    int64    `json:"regularMarketTime"`
		FiftyTwoWeekHigh     *float64 `json:"fiftyTwoWeekHigh"`
		FiftyTwoWeekLow      *float64 `json:"fiftyTwoWeekLow"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// fetchChart calls the chart endpoint with the given query
func (c *Client) fetchChart(ctx context.Context, ticker string, params url.Values) (*chartResult, error) {
	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, yahooSymbol(ticker), params.Encode())

	var resp chartResponse
	if err := c.fetchJSON(ctx, ticker, fullURL, &resp); err != nil {
		return nil, err
	}
	if resp.Chart.Error != nil {
		return nil, resp.Chart.Error.err(ticker)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", ticker, contracts.ErrNoData)
	}

	return &resp.Chart.Result[0], nil
}

// GetPriceSeries fetches daily bars covering the last lookbackDays calendar days
// ⭐ SSOT: Yahoo 일봉 조회는 이 함수에서만
func (c *Client) GetPriceSeries(ctx context.Context, ticker string, lookbackDays int) (contracts.PriceSeries, error) {
	end := c.now()
	start := end.AddDate(0, 0, -lookbackDays)

	params := url.Values{}
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(end.Unix(), 10))
	params.Set("interval", "1d")
	params.Set("includePrePost", "false")
	params.Set("events", "div,splits")

	result, err := c.fetchChart(ctx, ticker, params)
	if err != nil {
		return nil, err
	}

	series := parseBars(result)
	if len(series) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", ticker, contracts.ErrNoData)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"bars":   len(series),
	}).Debug("Fetched price series")

	return series, nil
}

// GetQuote fetches the latest price and 52-week range from chart metadata
func (c *Client) GetQuote(ctx context.Context, ticker string) (*contracts.Quote, error) {
	params := url.Values{}
	params.Set("range", "1d")
	params.Set("interval", "1d")

	result, err := c.fetchChart(ctx, ticker, params)
	if err != nil {
		return nil, err
	}

	meta := result.Meta
	if meta.RegularMarketPrice == nil || *meta.RegularMarketPrice <= 0 {
		return nil, fmt.Errorf("yahoo %s quote: %w", ticker, contracts.ErrNoData)
	}

	quote := &contracts.Quote{
		Ticker:    ticker,
		Price:     *meta.RegularMarketPrice,
		Currency:  meta.Currency,
		Timestamp: time.Unix(meta.RegularMarketTime, 0).UTC(),
	}
	if meta.FiftyTwoWeekHigh != nil {
		quote.High52W = *meta.FiftyTwoWeekHigh
	}
	if meta.FiftyTwoWeekLow != nil {
		quote.Low52W = *meta.FiftyTwoWeekLow
	}

	return quote, nil
}

// GetAllTimeHigh scans the monthly bars of the full history for the highest high
func (c *Client) GetAllTimeHigh(ctx context.Context, ticker string) (float64, error) {
	params := url.Values{}
	params.Set("range", "max")
	params.Set("interval", "1mo")

	result, err := c.fetchChart(ctx, ticker, params)
	if err != nil {
		return 0, err
	}

	var high float64
	for _, bar := range parseBars(result) {
		if bar.High > high {
			high = bar.High
		}
	}
	if high <= 0 {
		return 0, fmt.Errorf("yahoo %s all-time high: %w", ticker, contracts.ErrNoData)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"ath":    high,
	}).Debug("Fetched all-time high")

	return high, nil
}

// parseBars converts the column arrays into ascending daily bars.
// Bars without a close (holidays, halts) are skipped.
func parseBars(result *chartResult) contracts.PriceSeries {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	q := result.Indicators.Quote[0]

	loc := time.UTC
	if result.Meta.ExchangeTimezoneName != "" {
		if l, err := time.LoadLocation(result.Meta.ExchangeTimezoneName); err == nil {
			loc = l
		}
	}

	series := make(contracts.PriceSeries, 0, len(result.Timestamp))
	seen := make(map[string]int, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		closePrice := at(q.Close, i)
		if closePrice <= 0 {
			continue
		}

		open := at(q.Open, i)
		high := at(q.High, i)
		low := at(q.Low, i)
		if open <= 0 {
			open = closePrice
		}
		if high < closePrice {
			high = closePrice
		}
		if low <= 0 || low > closePrice {
			low = closePrice
		}

		// 거래소 현지 날짜 기준 (UTC 자정으로 정규화)
		local := time.Unix(ts, 0).In(loc)
		date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)

		bar := contracts.PriceBar{
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: at(q.Volume, i),
		}

		// 장중 호출 시 마지막 봉이 같은 날짜로 중복될 수 있음
		key := date.Format("2006-01-02")
		if idx, ok := seen[key]; ok {
			series[idx] = bar
			continue
		}
		seen[key] = len(series)
		series = append(series, bar)
	}

	sort.SliceStable(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	return series
}

func at(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	return *values[i]
}

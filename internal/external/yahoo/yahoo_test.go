package yahoo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/sepa/internal/contracts"
	"github.com/wonny/sepa/pkg/config"
	"github.com/wonny/sepa/pkg/httputil"
	"github.com/wonny/sepa/pkg/logger"
)

var fixedNow = time.Date(2024, 3, 1, 21, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		MarketData: config.MarketDataConfig{
			YahooBaseURL:    server.URL,
			YahooSummaryURL: server.URL + "/",
			Timeout:         5 * time.Second,
		},
	}
	log := logger.NewNop()

	c := NewClient(httputil.New(cfg, log).DisableRetry(), cfg.MarketData, log)
	c.now = func() time.Time { return fixedNow }
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func ts(day, hour int) int64 {
	return time.Date(2024, 2, day, hour, 30, 0, 0, time.UTC).Unix()
}

func TestGetPriceSeries(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"chart": map[string]interface{}{
				"result": []interface{}{
					map[string]interface{}{
						"meta": map[string]interface{}{
							"symbol":               "BRK-B",
							"exchangeTimezoneName": "America/New_York",
						},
						"timestamp": []int64{ts(26, 14), ts(27, 14), ts(28, 14), ts(28, 19)},
						"indicators": map[string]interface{}{
							"quote": []interface{}{
								map[string]interface{}{
									"open":   []interface{}{99.0, nil, 101.0, 101.0},
									"high":   []interface{}{101.0, nil, 102.5, 103.5},
									"low":    []interface{}{98.0, nil, 100.5, 100.5},
									"close":  []interface{}{100.0, nil, 102.0, 103.0},
									"volume": []interface{}{1000000, nil, 900000, 1100000},
								},
							},
						},
					},
				},
				"error": nil,
			},
		})
	})

	series, err := c.GetPriceSeries(context.Background(), "brk.b", 400)
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/BRK-B", gotPath)
	assert.Equal(t, "1d", gotQuery["interval"][0])
	assert.Equal(t, "1709326800", gotQuery["period2"][0])

	// null bar skipped, same-day bar replaced by the later one
	require.Len(t, series, 2)
	assert.True(t, series.IsAscending())
	assert.Equal(t, "2024-02-26", series[0].Date.Format("2006-01-02"))
	assert.Equal(t, 100.0, series[0].Close)
	assert.Equal(t, "2024-02-28", series[1].Date.Format("2006-01-02"))
	assert.Equal(t, 103.0, series[1].Close)
	assert.Equal(t, 1100000.0, series[1].Volume)
}

func TestGetPriceSeries_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    map[string]interface{}
		wantErr error
	}{
		{
			name:   "http 404",
			status: http.StatusNotFound,
			body: map[string]interface{}{
				"chart": map[string]interface{}{
					"result": nil,
					"error":  map[string]string{"code": "Not Found", "description": "No data found, symbol may be delisted"},
				},
			},
			wantErr: contracts.ErrTickerNotFound,
		},
		{
			name:   "error envelope with 200",
			status: http.StatusOK,
			body: map[string]interface{}{
				"chart": map[string]interface{}{
					"result": nil,
					"error":  map[string]string{"code": "Not Found", "description": "No data found"},
				},
			},
			wantErr: contracts.ErrTickerNotFound,
		},
		{
			name:   "empty result",
			status: http.StatusOK,
			body: map[string]interface{}{
				"chart": map[string]interface{}{"result": []interface{}{}},
			},
			wantErr: contracts.ErrNoData,
		},
		{
			name:   "all bars null",
			status: http.StatusOK,
			body: map[string]interface{}{
				"chart": map[string]interface{}{
					"result": []interface{}{
						map[string]interface{}{
							"timestamp": []int64{ts(26, 14)},
							"indicators": map[string]interface{}{
								"quote": []interface{}{map[string]interface{}{"close": []interface{}{nil}}},
							},
						},
					},
				},
			},
			wantErr: contracts.ErrNoData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, tt.status, tt.body)
			})

			_, err := c.GetPriceSeries(context.Background(), "ZZZZ", 400)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetQuote(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1d", r.URL.Query().Get("range"))
		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"chart": map[string]interface{}{
				"result": []interface{}{
					map[string]interface{}{
						"meta": map[string]interface{}{
							"currency":           "USD",
							"regularMarketPrice": 875.28,
							"regularMarketTime":  ts(29, 21),
							"fiftyTwoWeekHigh":   974.0,
							"fiftyTwoWeekLow":    222.97,
						},
					},
				},
			},
		})
	})

	quote, err := c.GetQuote(context.Background(), "NVDA")
	require.NoError(t, err)

	assert.Equal(t, "NVDA", quote.Ticker)
	assert.Equal(t, 875.28, quote.Price)
	assert.Equal(t, 974.0, quote.High52W)
	assert.Equal(t, 222.97, quote.Low52W)
	assert.Equal(t, "USD", quote.Currency)
}

func TestGetQuote_NoPrice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"chart": map[string]interface{}{
				"result": []interface{}{map[string]interface{}{"meta": map[string]interface{}{}}},
			},
		})
	})

	_, err := c.GetQuote(context.Background(), "NVDA")
	assert.ErrorIs(t, err, contracts.ErrNoData)
}

func raw(v float64) map[string]interface{} {
	return map[string]interface{}{"raw": v, "fmt": "x"}
}

func TestGetAllTimeHigh(t *testing.T) {
	var gotQuery map[string][]string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"chart": map[string]interface{}{
				"result": []interface{}{
					map[string]interface{}{
						"meta": map[string]interface{}{"symbol": "INTC"},
						"timestamp": []int64{
							time.Date(2000, 8, 1, 14, 0, 0, 0, time.UTC).Unix(),
							time.Date(2020, 1, 1, 14, 0, 0, 0, time.UTC).Unix(),
							time.Date(2024, 2, 1, 14, 0, 0, 0, time.UTC).Unix(),
						},
						"indicators": map[string]interface{}{
							"quote": []interface{}{
								map[string]interface{}{
									"open":   []interface{}{70.0, 60.0, 43.0},
									"high":   []interface{}{75.8, 69.3, 45.0},
									"low":    []interface{}{60.0, 57.0, 42.0},
									"close":  []interface{}{65.0, 67.0, 43.5},
									"volume": []interface{}{1e9, 5e8, 6e8},
								},
							},
						},
					},
				},
			},
		})
	})

	high, err := c.GetAllTimeHigh(context.Background(), "INTC")
	require.NoError(t, err)
	assert.InDelta(t, 75.8, high, 1e-9)
	assert.Equal(t, "max", gotQuery["range"][0])
	assert.Equal(t, "1mo", gotQuery["interval"][0])
}

func TestGetAllTimeHigh_NoBars(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"chart": map[string]interface{}{
				"result": []interface{}{
					map[string]interface{}{"meta": map[string]interface{}{"symbol": "NEW"}},
				},
			},
		})
	})

	_, err := c.GetAllTimeHigh(context.Background(), "NEW")
	assert.ErrorIs(t, err, contracts.ErrNoData)
}

func TestGetFundamentals(t *testing.T) {
	past := float64(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).Unix())
	future := float64(time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC).Unix())
	later := float64(time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC).Unix())

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v10/finance/quoteSummary/NVDA", r.URL.Path)
		assert.True(t, strings.Contains(r.URL.Query().Get("modules"), "financialData"))

		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"quoteSummary": map[string]interface{}{
				"result": []interface{}{
					map[string]interface{}{
						"earnings": map[string]interface{}{
							"earningsChart": map[string]interface{}{
								"quarterly": []interface{}{
									map[string]interface{}{"date": "1Q2023", "actual": raw(0.82)},
									map[string]interface{}{"date": "2Q2023", "actual": raw(2.70)},
									map[string]interface{}{"date": "3Q2023", "actual": raw(4.02)},
									map[string]interface{}{"date": "4Q2023", "actual": raw(5.16)},
								},
							},
							"financialsChart": map[string]interface{}{
								"quarterly": []interface{}{
									map[string]interface{}{"date": "1Q2023", "revenue": raw(7.19e9)},
									map[string]interface{}{"date": "2Q2023", "revenue": raw(13.51e9)},
									map[string]interface{}{"date": "3Q2023", "revenue": map[string]interface{}{}},
									map[string]interface{}{"date": "4Q2023", "revenue": raw(22.10e9)},
								},
							},
						},
						"financialData": map[string]interface{}{
							"returnOnEquity":    raw(0.91),
							"debtToEquity":      map[string]interface{}{},
							"currentRatio":      raw(4.17),
							"operatingMargins":  raw(0.54),
							"profitMargins":     raw(0.48),
							"targetMeanPrice":   raw(950.0),
							"recommendationKey": "strong_buy",
						},
						"defaultKeyStatistics": map[string]interface{}{
							"shortPercentOfFloat": raw(0.011),
							"shortRatio":          raw(0.9),
						},
						"summaryDetail": map[string]interface{}{
							"trailingPE": raw(72.4),
						},
						"calendarEvents": map[string]interface{}{
							"earnings": map[string]interface{}{
								"earningsDate": []interface{}{raw(past), raw(later), raw(future)},
							},
						},
					},
				},
				"error": nil,
			},
		})
	})

	fund, err := c.GetFundamentals(context.Background(), "NVDA")
	require.NoError(t, err)

	assert.Equal(t, SourceName, fund.Source)
	assert.Equal(t, []float64{5.16, 4.02, 2.70, 0.82}, fund.QuarterlyEPS)
	assert.Equal(t, []float64{22.10e9, 13.51e9, 7.19e9}, fund.QuarterlyRevenue)

	require.NotNil(t, fund.ROE)
	assert.Equal(t, 0.91, *fund.ROE)
	assert.Nil(t, fund.DebtToEquity)
	require.NotNil(t, fund.TrailingPE)
	assert.Equal(t, 72.4, *fund.TrailingPE)
	require.NotNil(t, fund.ShortPercentOfFloat)
	assert.Equal(t, 0.011, *fund.ShortPercentOfFloat)
	assert.Equal(t, "strong_buy", fund.RecommendationKey)

	require.NotNil(t, fund.NextEarningsDate)
	assert.Equal(t, "2024-03-20", fund.NextEarningsDate.Format("2006-01-02"))
}

func TestGetFundamentals_EmptyModules(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"quoteSummary": map[string]interface{}{
				"result": []interface{}{
					map[string]interface{}{
						"financialData": map[string]interface{}{"recommendationKey": "none"},
					},
				},
			},
		})
	})

	fund, err := c.GetFundamentals(context.Background(), "XYZ")
	require.NoError(t, err)

	assert.Empty(t, fund.QuarterlyEPS)
	assert.Nil(t, fund.ROE)
	assert.Nil(t, fund.NextEarningsDate)
	assert.Empty(t, fund.RecommendationKey)
}

func TestGetFundamentals_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]interface{}{
			"quoteSummary": map[string]interface{}{
				"result": nil,
				"error":  map[string]string{"code": "Not Found", "description": "Quote not found for ticker symbol: ZZZZ"},
			},
		})
	})

	_, err := c.GetFundamentals(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, contracts.ErrTickerNotFound)
}

func TestYahooSymbol(t *testing.T) {
	assert.Equal(t, "BRK-B", yahooSymbol(" brk.b "))
	assert.Equal(t, "%5EGSPC", yahooSymbol("^GSPC"))
}

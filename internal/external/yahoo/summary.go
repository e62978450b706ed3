package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/sepa/internal/contracts"
)

// summaryModules are the quoteSummary modules the scorer needs
var summaryModules = []string{
	"earnings",
	"financialData",
	"defaultKeyStatistics",
	"summaryDetail",
	"calendarEvents",
}

// summaryResponse is the response structure of /v10/finance/quoteSummary
type summaryResponse struct {
	QuoteSummary struct {
		Result []summaryResult `json:"result"`
		Error  *apiError       `json:"error"`
	} `json:"quoteSummary"`
}

type quarterPoint struct {
	Date     string    `json:"date"` // "1Q2024"
	Actual   *rawValue `json:"actual"`
	Revenue  *rawValue `json:"revenue"`
	Earnings *rawValue `json:"earnings"`
}

type summaryResult struct {
	Earnings *struct {
		EarningsChart struct {
			Quarterly []quarterPoint `json:"quarterly"`
		} `json:"earningsChart"`
		FinancialsChart struct {
			Quarterly []quarterPoint `json:"quarterly"`
		} `json:"financialsChart"`
	} `json:"earnings"`

	FinancialData *struct {
		ReturnOnEquity    *rawValue `json:"returnOnEquity"`
		DebtToEquity      *rawValue `json:"debtToEquity"`
		CurrentRatio      *rawValue `json:"currentRatio"`
		OperatingMargins  *rawValue `json:"operatingMargins"`
		ProfitMargins     *rawValue `json:"profitMargins"`
		TargetMeanPrice   *rawValue `json:"targetMeanPrice"`
		RecommendationKey string    `json:"recommendationKey"`
	} `json:"financialData"`

	DefaultKeyStatistics *struct {
		ShortPercentOfFloat *rawValue `json:"shortPercentOfFloat"`
		ShortRatio          *rawValue `json:"shortRatio"`
	} `json:"defaultKeyStatistics"`

	SummaryDetail *struct {
		TrailingPE *rawValue `json:"trailingPE"`
	} `json:"summaryDetail"`

	CalendarEvents *struct {
		Earnings struct {
			EarningsDate []rawValue `json:"earningsDate"`
		} `json:"earnings"`
	} `json:"calendarEvents"`
}

// GetFundamentals fetches quarterly results, ratios and catalysts
// ⭐ SSOT: Yahoo 펀더멘털 조회는 이 함수에서만
func (c *Client) GetFundamentals(ctx context.Context, ticker string) (*contracts.Fundamentals, error) {
	params := url.Values{}
	params.Set("modules", strings.Join(summaryModules, ","))

	fullURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?%s", c.summaryURL, yahooSymbol(ticker), params.Encode())

	var resp summaryResponse
	if err := c.fetchJSON(ctx, ticker, fullURL, &resp); err != nil {
		return nil, err
	}
	if resp.QuoteSummary.Error != nil {
		return nil, resp.QuoteSummary.Error.err(ticker)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("yahoo %s fundamentals: %w", ticker, errEmptyResult)
	}

	fund := parseSummary(ticker, &resp.QuoteSummary.Result[0], c.now())

	c.logger.WithFields(map[string]interface{}{
		"ticker":       ticker,
		"eps_quarters": len(fund.QuarterlyEPS),
		"rev_quarters": len(fund.QuarterlyRevenue),
	}).Debug("Fetched fundamentals")

	return fund, nil
}

// parseSummary maps quoteSummary modules onto Fundamentals.
// Yahoo lists quarters oldest first; Fundamentals wants most recent first.
func parseSummary(ticker string, r *summaryResult, now time.Time) *contracts.Fundamentals {
	fund := &contracts.Fundamentals{
		Ticker: ticker,
		Source: SourceName,
	}

	if r.Earnings != nil {
		for _, q := range r.Earnings.EarningsChart.Quarterly {
			if v := q.Actual.value(); v != nil {
				fund.QuarterlyEPS = append(fund.QuarterlyEPS, *v)
			}
		}
		for _, q := range r.Earnings.FinancialsChart.Quarterly {
			if v := q.Revenue.value(); v != nil {
				fund.QuarterlyRevenue = append(fund.QuarterlyRevenue, *v)
			}
		}
		reverse(fund.QuarterlyEPS)
		reverse(fund.QuarterlyRevenue)
	}

	if fd := r.FinancialData; fd != nil {
		fund.ROE = fd.ReturnOnEquity.value()
		fund.DebtToEquity = fd.DebtToEquity.value()
		fund.CurrentRatio = fd.CurrentRatio.value()
		fund.OperatingMargin = fd.OperatingMargins.value()
		fund.ProfitMargin = fd.ProfitMargins.value()
		fund.TargetMeanPrice = fd.TargetMeanPrice.value()
		if fd.RecommendationKey != "none" {
			fund.RecommendationKey = fd.RecommendationKey
		}
	}

	if ks := r.DefaultKeyStatistics; ks != nil {
		fund.ShortPercentOfFloat = ks.ShortPercentOfFloat.value()
		fund.ShortRatio = ks.ShortRatio.value()
	}

	if sd := r.SummaryDetail; sd != nil {
		fund.TrailingPE = sd.TrailingPE.value()
	}

	if ce := r.CalendarEvents; ce != nil {
		fund.NextEarningsDate = nextEarnings(ce.Earnings.EarningsDate, now)
	}

	return fund
}

// nextEarnings picks the earliest announced date that is not in the past
func nextEarnings(dates []rawValue, now time.Time) *time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var best *time.Time
	for i := range dates {
		v := dates[i].value()
		if v == nil {
			continue
		}
		t := time.Unix(int64(*v), 0).UTC()
		if t.Before(today) {
			continue
		}
		if best == nil || t.Before(*best) {
			tt := t
			best = &tt
		}
	}
	return best
}

func reverse(values []float64) {
	for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
		values[i], values[j] = values[j], values[i]
	}
}

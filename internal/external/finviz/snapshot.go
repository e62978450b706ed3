package finviz

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/sepa/internal/contracts"
)

// snapshot maps snapshot-table labels ("P/E", "ROE", ...) to raw cell text
type snapshot map[string]string

// Table class changed over the years; try the current one first
var snapshotSelectors = []string{
	"table.snapshot-table2",
	"table.js-snapshot-table",
}

// parseSnapshot reads label/value cell pairs from the snapshot table
func parseSnapshot(html string) (snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var table *goquery.Selection
	for _, sel := range snapshotSelectors {
		if found := doc.Find(sel); found.Length() > 0 {
			table = found.First()
			break
		}
	}
	if table == nil {
		return nil, fmt.Errorf("snapshot table: %w", contracts.ErrNoData)
	}

	snap := make(snapshot)
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		// 컬럼: 라벨 | 값 | 라벨 | 값 ...
		for i := 0; i+1 < cells.Length(); i += 2 {
			label := strings.TrimSpace(cells.Eq(i).Text())
			value := strings.TrimSpace(cells.Eq(i + 1).Text())
			if label != "" {
				snap[label] = value
			}
		}
	})

	if len(snap) == 0 {
		return nil, fmt.Errorf("snapshot table empty: %w", contracts.ErrNoData)
	}
	return snap, nil
}

// fundamentals converts Finviz units to the Yahoo conventions used by the scorer
func (s snapshot) fundamentals(ticker string, now time.Time) *contracts.Fundamentals {
	fund := &contracts.Fundamentals{
		Ticker: ticker,
		Source: SourceName,

		ROE:             s.percent("ROE"),
		CurrentRatio:    s.number("Current Ratio"),
		OperatingMargin: s.percent("Oper. Margin"),
		ProfitMargin:    s.percent("Profit Margin"),
		TrailingPE:      s.number("P/E"),

		ShortPercentOfFloat: s.percent("Short Float"),
		ShortRatio:          s.number("Short Ratio"),

		TargetMeanPrice:   s.number("Target Price"),
		RecommendationKey: recommendationKey(s.number("Recom")),
		NextEarningsDate:  earningsDate(s["Earnings"], now),
	}

	// Finviz는 배수(0.45), Yahoo는 퍼센트(45)
	if de := s.number("Debt/Eq"); de != nil {
		v := *de * 100
		fund.DebtToEquity = &v
	}

	return fund
}

// number parses "1,234.5" style cells; "-" and blanks are missing
func (s snapshot) number(label string) *float64 {
	text := strings.ReplaceAll(strings.TrimSpace(s[label]), ",", "")
	if text == "" || text == "-" {
		return nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	return &v
}

// percent parses "12.34%" into the fraction 0.1234
func (s snapshot) percent(label string) *float64 {
	text := strings.ReplaceAll(strings.TrimSpace(s[label]), ",", "")
	if !strings.HasSuffix(text, "%") {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(text, "%"), 64)
	if err != nil {
		return nil
	}
	v /= 100
	return &v
}

// recommendationKey maps the 1 (strong buy) .. 5 (strong sell) mean rating
func recommendationKey(mean *float64) string {
	if mean == nil || *mean <= 0 {
		return ""
	}
	switch m := *mean; {
	case m <= 1.5:
		return "strong_buy"
	case m <= 2.5:
		return "buy"
	case m <= 3.5:
		return "hold"
	case m <= 4.5:
		return "sell"
	default:
		return "strong_sell"
	}
}

// earningsDate resolves "Jan 30 AMC" (no year) to the upcoming date.
// A date already in the past is the last report, not a catalyst.
func earningsDate(text string, now time.Time) *time.Time {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return nil
	}

	md, err := time.Parse("Jan 02", fields[0]+" "+fields[1])
	if err != nil {
		return nil
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	date := time.Date(now.Year(), md.Month(), md.Day(), 0, 0, 0, 0, time.UTC)

	// 12월에 1월 일정이 표시되면 다음 해
	if today.Sub(date) > 180*24*time.Hour {
		date = date.AddDate(1, 0, 0)
	}
	if date.Before(today) {
		return nil
	}
	return &date
}

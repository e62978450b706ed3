package finviz

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/sepa/internal/contracts"
	"github.com/wonny/sepa/internal/metrics"
	"github.com/wonny/sepa/pkg/config"
	"github.com/wonny/sepa/pkg/httputil"
	"github.com/wonny/sepa/pkg/logger"
)

// SourceName identifies this provider in Fundamentals.Source and cache keys
const SourceName = "finviz"

// Client scrapes the Finviz quote page snapshot table
// ⭐ SSOT: Finviz 스크래핑은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	now        func() time.Time
}

// NewClient creates a new Finviz client
func NewClient(httpClient *httputil.Client, cfg config.MarketDataConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(cfg.FinvizBaseURL, "/"),
		now:        time.Now,
	}
}

// GetFundamentals fetches ratios, short interest and catalysts.
// Finviz has no quarterly history, so QuarterlyEPS and QuarterlyRevenue stay empty.
func (c *Client) GetFundamentals(ctx context.Context, ticker string) (*contracts.Fundamentals, error) {
	params := url.Values{}
	params.Set("t", strings.ReplaceAll(strings.ToUpper(ticker), ".", "-"))
	fullURL := fmt.Sprintf("%s/quote.ashx?%s", c.baseURL, params.Encode())

	body, err := c.httpClient.GetBody(ctx, fullURL)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(SourceName, "error").Inc()
		if httputil.IsNotFound(err) {
			return nil, fmt.Errorf("finviz %s: %w", ticker, contracts.ErrTickerNotFound)
		}
		return nil, fmt.Errorf("finviz %s: %w", ticker, err)
	}
	metrics.ProviderRequests.WithLabelValues(SourceName, "ok").Inc()

	snapshot, err := parseSnapshot(string(body))
	if err != nil {
		return nil, fmt.Errorf("finviz %s: %w", ticker, err)
	}

	fund := snapshot.fundamentals(ticker, c.now())

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"fields": len(snapshot),
	}).Debug("Fetched finviz snapshot")

	return fund, nil
}

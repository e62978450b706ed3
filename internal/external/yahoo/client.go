package yahoo

import (
	"context"
	"errors"
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
const SourceName = "yahoo"

// Client handles communication with the Yahoo Finance chart and quoteSummary APIs
// ⭐ SSOT: Yahoo Finance API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	summaryURL string
	now        func() time.Time
}

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, cfg config.MarketDataConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(cfg.YahooBaseURL, "/"),
		summaryURL: strings.TrimRight(cfg.YahooSummaryURL, "/"),
		now:        time.Now,
	}
}

// fetchJSON GETs a Yahoo endpoint and counts the outcome
func (c *Client) fetchJSON(ctx context.Context, ticker, fullURL string, dest interface{}) error {
	err := c.httpClient.GetJSON(ctx, fullURL, dest)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(SourceName, "error").Inc()
		if httputil.IsNotFound(err) {
			return fmt.Errorf("yahoo %s: %w", ticker, contracts.ErrTickerNotFound)
		}
		return fmt.Errorf("yahoo %s: %w", ticker, err)
	}
	metrics.ProviderRequests.WithLabelValues(SourceName, "ok").Inc()
	return nil
}

// yahooSymbol maps class shares (BRK.B) to Yahoo's dash notation (BRK-B)
func yahooSymbol(ticker string) string {
	return url.PathEscape(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(ticker)), ".", "-"))
}

// apiError is the error envelope shared by chart and quoteSummary
type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *apiError) err(ticker string) error {
	if strings.EqualFold(e.Code, "Not Found") {
		return fmt.Errorf("yahoo %s: %s: %w", ticker, e.Description, contracts.ErrTickerNotFound)
	}
	return fmt.Errorf("yahoo %s: %s: %s", ticker, e.Code, e.Description)
}

// rawValue is quoteSummary's {"raw": 1.23, "fmt": "1.23"} wrapper; {} means missing
type rawValue struct {
	Raw *float64 `json:"raw"`
}

func (r *rawValue) value() *float64 {
	if r == nil || r.Raw == nil {
		return nil
	}
	v := *r.Raw
	return &v
}

var errEmptyResult = errors.New("empty result")

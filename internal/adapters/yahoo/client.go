package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"hermes/internal/adapters/config"
	"hermes/internal/services/prices"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// Client fetches daily OHLCV bars from the Yahoo Finance chart API
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a Yahoo Finance client
func NewClient(cfg config.PricesConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.Get().With("component", "yahoo_client"),
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDaily fetches the OHLCV bar for one trading day. A date with no bar
// (weekend, holiday) returns ErrNotFound.
func (c *Client) FetchDaily(ctx context.Context, symbol string, date time.Time) (*prices.Quote, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	q := url.Values{}
	q.Set("period1", strconv.FormatInt(day.Unix(), 10))
	q.Set("period2", strconv.FormatInt(day.AddDate(0, 0, 1).Unix(), 10))
	q.Set("interval", "1d")

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create chart request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; hermes/1.0)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "chart request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.Wrapf(errors.ErrNotFound, "no chart data for %s", symbol)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("chart API returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, "decode chart response")
	}
	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error %s: %s", parsed.Chart.Error.Code, parsed.Chart.Error.Description)
	}

	return quoteFromChart(parsed, day)
}

func quoteFromChart(parsed chartResponse, day time.Time) (*prices.Quote, error) {
	if len(parsed.Chart.Result) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "empty chart result")
	}
	result := parsed.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "no bar for %s", day.Format("2006-01-02"))
	}

	bars := result.Indicators.Quote[0]
	for i, ts := range result.Timestamp {
		barDay := time.Unix(ts, 0).UTC()
		if barDay.Year() != day.Year() || barDay.YearDay() != day.YearDay() {
			continue
		}
		if i >= len(bars.Open) || i >= len(bars.Close) || i >= len(bars.High) || i >= len(bars.Low) || i >= len(bars.Volume) {
			break
		}
		return &prices.Quote{
			Date:   day,
			Open:   decimal.NewFromFloat(bars.Open[i]),
			Close:  decimal.NewFromFloat(bars.Close[i]),
			High:   decimal.NewFromFloat(bars.High[i]),
			Low:    decimal.NewFromFloat(bars.Low[i]),
			Volume: bars.Volume[i],
		}, nil
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "no bar for %s", day.Format("2006-01-02"))
}

var _ prices.PriceSource = (*Client)(nil)

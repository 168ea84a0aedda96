// Package marketdata fetches real daily price bars from Alpha Vantage so a
// demo can be deployed with market prices instead of generated ones.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"flakelab/pkg/errors"
	"flakelab/pkg/models"
)

// DefaultBaseURL is the Alpha Vantage query endpoint
const DefaultBaseURL = "https://www.alphavantage.co/query"

const seriesKey = "Time Series (Daily)"

// Client calls TIME_SERIES_DAILY
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *retryablehttp.Client
	Logger  *zap.Logger
}

// NewClient returns a client with three retries
func NewClient(apiKey string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	hc := retryablehttp.NewClient()
	hc.RetryMax = 3
	hc.HTTPClient.Timeout = 30 * time.Second
	hc.Logger = leveled{log.Sugar()}

	return &Client{
		BaseURL: DefaultBaseURL,
		APIKey:  apiKey,
		HTTP:    hc,
		Logger:  log,
	}
}

type dailyResponse struct {
	ErrorMessage string                       `json:"Error Message"`
	Note         string                       `json:"Note"`
	Information  string                       `json:"Information"`
	Series       map[string]map[string]string `json:"Time Series (Daily)"`
}

// Daily returns the compact daily series for ticker, oldest first
func (c *Client) Daily(ctx context.Context, ticker string) ([]models.StockPrice, error) {
	if c.APIKey == "" {
		return nil, errors.New(errors.ErrCodeCredentialMissing, "Alpha Vantage API key is not set").
			WithSuggestions("Set ALPHA_VANTAGE_API_KEY in the environment or .env file")
	}

	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("symbol", ticker)
	q.Set("outputsize", "compact")
	q.Set("apikey", c.APIKey)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "Failed to build market data request")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeNetworkUnavailable, "Market data request failed").
			WithContext("ticker", ticker)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeNetworkUnavailable, "Failed to read market data response").
			WithContext("ticker", ticker)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.ErrCodeServiceUnavailable,
			fmt.Sprintf("market data service returned %d", resp.StatusCode)).
			WithContext("ticker", ticker)
	}

	var payload dailyResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeResultParsing, "Invalid market data response").
			WithContext("ticker", ticker)
	}
	if msg := payload.apiError(); msg != "" {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, msg).WithContext("ticker", ticker)
	}
	if payload.Series == nil {
		return nil, errors.New(errors.ErrCodeNoResults, "response has no "+seriesKey).
			WithContext("ticker", ticker)
	}

	rows := make([]models.StockPrice, 0, len(payload.Series))
	for day, bar := range payload.Series {
		row, err := parseBar(ticker, day, bar)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].PriceDate < rows[j].PriceDate })

	c.Logger.Debug("fetched daily prices", zap.String("ticker", ticker), zap.Int("rows", len(rows)))
	return rows, nil
}

// DailyRange fetches every ticker and keeps the bars dated inside
// [start, end]. Tickers are fetched one after another.
func (c *Client) DailyRange(ctx context.Context, tickers []string, start, end time.Time) ([]models.StockPrice, error) {
	from, to := start.Format("2006-01-02"), end.Format("2006-01-02")
	var out []models.StockPrice
	for _, t := range tickers {
		rows, err := c.Daily(ctx, t)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			if r.PriceDate >= from && r.PriceDate <= to {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (r dailyResponse) apiError() string {
	switch {
	case r.ErrorMessage != "":
		return r.ErrorMessage
	case r.Note != "":
		return r.Note
	case r.Information != "" && r.Series == nil:
		return r.Information
	}
	return ""
}

func parseBar(ticker, day string, bar map[string]string) (models.StockPrice, error) {
	field := func(key string) (decimal.Decimal, error) {
		v, ok := bar[key]
		if !ok {
			return decimal.Zero, fmt.Errorf("missing %q", key)
		}
		return decimal.NewFromString(strings.TrimSpace(v))
	}

	var vals [5]decimal.Decimal
	for i, key := range []string{"1. open", "2. high", "3. low", "4. close", "5. volume"} {
		d, err := field(key)
		if err != nil {
			return models.StockPrice{}, errors.Wrap(err, errors.ErrCodeResultParsing, "Invalid price bar").
				WithContext("ticker", ticker).
				WithContext("date", day)
		}
		vals[i] = d
	}

	closePrice := vals[3].Round(2).InexactFloat64()
	return models.StockPrice{
		Ticker:        ticker,
		PriceDate:     day,
		OpenPrice:     vals[0].Round(2).InexactFloat64(),
		HighPrice:     vals[1].Round(2).InexactFloat64(),
		LowPrice:      vals[2].Round(2).InexactFloat64(),
		ClosePrice:    closePrice,
		AdjustedClose: closePrice,
		Volume:        vals[4].IntPart(),
	}, nil
}

// leveled adapts zap to retryablehttp's LeveledLogger
type leveled struct {
	s *zap.SugaredLogger
}

func (l leveled) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveled) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
func (l leveled) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveled) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }

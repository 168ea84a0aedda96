package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flakelab/pkg/errors"
)

const dailyPayload = `{
  "Meta Data": {"2. Symbol": "SNOW"},
  "Time Series (Daily)": {
    "2025-11-18": {"1. open": "181.2000", "2. high": "184.9950", "3. low": "179.1000", "4. close": "183.4450", "5. volume": "5230100"},
    "2025-11-14": {"1. open": "176.0000", "2. high": "178.5000", "3. low": "175.2500", "4. close": "177.9000", "5. volume": "4100200"},
    "2025-11-17": {"1. open": "178.0000", "2. high": "181.5000", "3. low": "177.0100", "4. close": "180.5000", "5. volume": "3900000"}
  }
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c := NewClient("demo-key", nil)
	c.BaseURL = srv.URL
	c.HTTP.RetryWaitMin = time.Millisecond
	c.HTTP.RetryWaitMax = 5 * time.Millisecond
	return c
}

func TestDailySortsByDate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TIME_SERIES_DAILY", r.URL.Query().Get("function"))
		assert.Equal(t, "SNOW", r.URL.Query().Get("symbol"))
		assert.Equal(t, "demo-key", r.URL.Query().Get("apikey"))
		w.Write([]byte(dailyPayload))
	})

	rows, err := c.Daily(context.Background(), "SNOW")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "2025-11-14", rows[0].PriceDate)
	assert.Equal(t, "2025-11-18", rows[2].PriceDate)
	assert.Equal(t, 183.45, rows[2].ClosePrice)
	assert.Equal(t, rows[2].ClosePrice, rows[2].AdjustedClose)
	assert.Equal(t, 185.0, rows[2].HighPrice)
	assert.Equal(t, int64(5230100), rows[2].Volume)
	assert.Equal(t, "SNOW", rows[0].Ticker)
}

func TestDailyAPIErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"error message", `{"Error Message": "Invalid API call."}`, "Invalid API call."},
		{"rate limit note", `{"Note": "Thank you for using Alpha Vantage!"}`, "Thank you for using Alpha Vantage!"},
		{"information", `{"Information": "premium endpoint"}`, "premium endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.payload))
			})
			_, err := c.Daily(context.Background(), "SNOW")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, errors.ErrCodeServiceUnavailable, errors.GetErrorCode(err))
		})
	}
}

func TestDailyRetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(dailyPayload))
	})

	rows, err := c.Daily(context.Background(), "SNOW")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDailyClientError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	_, err := c.Daily(context.Background(), "SNOW")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeServiceUnavailable, errors.GetErrorCode(err))
}

func TestDailyBadBar(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Time Series (Daily)": {"2025-11-18": {"1. open": "abc"}}}`))
	})
	_, err := c.Daily(context.Background(), "SNOW")
	assert.Equal(t, errors.ErrCodeResultParsing, errors.GetErrorCode(err))
}

func TestDailyNeedsAPIKey(t *testing.T) {
	c := NewClient("", nil)
	_, err := c.Daily(context.Background(), "SNOW")
	assert.Equal(t, errors.ErrCodeCredentialMissing, errors.GetErrorCode(err))
}

func TestDailyRangeFilters(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(dailyPayload))
	})
	start := time.Date(2025, 11, 17, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 11, 18, 0, 0, 0, 0, time.UTC)

	rows, err := c.DailyRange(context.Background(), []string{"SNOW", "MSFT"}, start, end)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
	assert.Equal(t, "MSFT", rows[3].Ticker)
}

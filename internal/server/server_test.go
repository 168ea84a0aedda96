package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flakelab/internal/settings"
	"flakelab/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type failingChecker struct{}

func (failingChecker) CurrentVersion(ctx context.Context) (string, error) {
	return "", stderrors.New("connection refused")
}

func testSettings() *settings.Settings {
	return &settings.Settings{
		Account:             "xy12345",
		User:                "demo",
		Password:            "hunter2",
		AppName:             "JPMC Markets Intelligence",
		AppVersion:          "1.0.0",
		EmbeddingModel:      "snowflake-arctic-embed-m",
		QueryTimeoutSeconds: 5,
		ServerAddress:       "localhost",
		ServerPort:          8501,
	}
}

func get(t *testing.T, h http.Handler, path string) (int, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestIndex(t *testing.T) {
	srv := New(testSettings(), testutil.NewMockExecutor(), nil)
	code, body := get(t, srv.Handler(), "/")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "JPMC Markets Intelligence", body["app_name"])
	assert.Equal(t, "1.0.0", body["version"])
	assert.Equal(t, "snowflake-arctic-embed-m", body["embedding_model"])
}

func TestHealthOK(t *testing.T) {
	srv := New(testSettings(), testutil.NewMockExecutor(), nil)
	code, body := get(t, srv.Handler(), "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "8.40.1", body["version"])
}

func TestHealthDown(t *testing.T) {
	for name, checker := range map[string]VersionChecker{
		"probe fails":   failingChecker{},
		"no connection": nil,
	} {
		t.Run(name, func(t *testing.T) {
			srv := New(testSettings(), checker, nil)
			code, body := get(t, srv.Handler(), "/health")
			assert.Equal(t, http.StatusServiceUnavailable, code)
			assert.Equal(t, map[string]interface{}{"status": "error"}, body)
		})
	}
}

func TestSettingsHidesSecrets(t *testing.T) {
	srv := New(testSettings(), nil, nil)
	code, body := get(t, srv.Handler(), "/settings")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "xy12345", body["account"])
	assert.NotContains(t, body, "password")
	assert.Equal(t, false, body["market_data_enabled"])
}

func TestRunStopsOnCancel(t *testing.T) {
	s := testSettings()
	s.ServerAddress = "127.0.0.1"
	s.ServerPort = 0
	srv := New(s, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, srv.Run(ctx))
}

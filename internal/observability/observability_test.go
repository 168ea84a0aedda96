package observability

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"DEBUG", zapcore.DebugLevel, false},
		{"WARNING", zapcore.WarnLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"ERROR", zapcore.ErrorLevel, false},
		{"TRACE", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLoggerWritesConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	file := filepath.Join(t.TempDir(), "flakelab.log")

	log, err := NewLogger(LoggerConfig{Level: "INFO", File: file, Console: &console})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("deploying", zap.String("variant", "markets"))
	require.NoError(t, log.Sync())

	assert.Contains(t, console.String(), "deploying")
	assert.NotContains(t, console.String(), "hidden")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"variant":"markets"`)
}

func TestNewLoggerQuiet(t *testing.T) {
	var console bytes.Buffer
	log, err := NewLogger(LoggerConfig{Level: "DEBUG", Console: &console, Quiet: true})
	require.NoError(t, err)

	log.Info("chatty")
	log.Warn("important")

	assert.NotContains(t, console.String(), "chatty")
	assert.Contains(t, console.String(), "important")
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := NewLogger(LoggerConfig{Level: "LOUD"})
	assert.Error(t, err)
}

func TestStepLoggerRun(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	steps := NewStepLogger(zap.New(core))

	_, err := steps.Run("Create tables", func() error { return nil })
	require.NoError(t, err)

	statuses := logs.FilterField(zap.String("step", "Create tables")).All()
	require.NotEmpty(t, statuses)
	assert.True(t, strings.HasSuffix(statuses[0].Message, "START"))

	boom := errors.New("boom")
	_, err = steps.Run("Load data", func() error { return boom })
	assert.Equal(t, boom, err)
	assert.Equal(t, 1, logs.FilterMessage("✗ Load data - FAILED").Len())
}

func TestStepLoggerWarning(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	NewStepLogger(zap.New(core)).Step("Search service", StepWarning)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.Counter("statements_executed").Inc()
	m.Counter("statements_executed").Add(2)
	m.Counter("statements_executed").Add(-5)
	m.Gauge("rows_loaded").Set(1500)

	assert.Equal(t, map[string]float64{"statements_executed": 3, "rows_loaded": 1500}, m.Snapshot())
	assert.Equal(t, []string{"rows_loaded", "statements_executed"}, m.Names())

	core, logs := observer.New(zapcore.InfoLevel)
	NewStepLogger(zap.New(core)).Metrics(m)
	assert.Equal(t, 3, logs.Len())
}

func TestDatabaseHealthCheck(t *testing.T) {
	up := NewDatabaseHealthCheck("snowflake", time.Second, func(ctx context.Context) (string, error) {
		return "8.40.1", nil
	})
	res := up.Check(context.Background())
	assert.Equal(t, HealthStatusUp, res.Status)
	assert.Equal(t, "8.40.1", res.Details["version"])
	assert.Equal(t, "snowflake", up.Name())

	down := NewDatabaseHealthCheck("snowflake", 0, func(ctx context.Context) (string, error) {
		return "", errors.New("network unreachable")
	})
	res = down.Check(context.Background())
	assert.Equal(t, HealthStatusDown, res.Status)
	assert.Equal(t, "DOWN", res.Status.String())
	assert.Contains(t, res.Message, "network unreachable")
}

package lab

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"flakelab/internal/testutil"
)

func TestQualityChecksAllPass(t *testing.T) {
	exec := testutil.NewMockExecutor()
	exec.SetInt("CUSTOMER_ID IS NULL", 0)
	exec.SetInt("HAVING", 0)
	exec.SetInt("REGEXP_LIKE", 0)
	exec.SetInt("LIFETIME_VALUE", 0)
	exec.SetInt("CURATED.CUSTOMERS", 250)

	r := RunQualityChecks(context.Background(), exec, "CUSTOMERS", 0.95, zap.NewNop())
	assert.Equal(t, "DATA_ENG_DEMO.CURATED.CUSTOMERS", r.Table)
	assert.Equal(t, int64(250), r.TotalRows)
	assert.Equal(t, 4, r.ChecksPassed)
	assert.Equal(t, 0, r.ChecksFailed)
	assert.Equal(t, 100.0, r.Score)
	assert.Empty(t, r.Issues)
	assert.True(t, r.Passes(0.95))

	// Count plus four checks
	assert.Len(t, exec.Queries, 5)
}

func TestQualityChecksRecordIssues(t *testing.T) {
	exec := testutil.NewMockExecutor()
	exec.SetInt("COST > UNIT_PRICE", 3)

	core, logs := observer.New(zapcore.WarnLevel)
	r := RunQualityChecks(context.Background(), exec, "PRODUCTS", 0.95, zap.New(core))

	assert.Equal(t, 2, r.ChecksPassed)
	assert.Equal(t, 1, r.ChecksFailed)
	assert.InDelta(t, 66.67, r.Score, 0.01)
	assert.Equal(t, []string{"3 products with cost > price found"}, r.Issues)
	assert.False(t, r.Passes(0.95))
	assert.True(t, r.Passes(0.5))

	assert.Equal(t, 1, logs.FilterMessage("⚠️  Found 1 data quality issues:").Len())
	assert.Equal(t, 1, logs.FilterMessage("⚠️  Quality score below threshold (95%)").Len())
}

func TestQualityCheckQueryFailureCountsAsFailed(t *testing.T) {
	exec := testutil.NewMockExecutor()
	exec.FailOn("p.PRODUCT_ID IS NULL", nil)

	r := RunQualityChecks(context.Background(), exec, "TRANSACTIONS", 0.95, nil)
	assert.Equal(t, 3, r.ChecksPassed)
	assert.Equal(t, 1, r.ChecksFailed)
	assert.Equal(t, 75.0, r.Score)
	require.Len(t, r.Issues, 1)
	assert.Contains(t, r.Issues[0], "could not run")
}

func TestQualityChecksUnknownTable(t *testing.T) {
	exec := testutil.NewMockExecutor()
	r := RunQualityChecks(context.Background(), exec, "STORES", 0.95, nil)
	assert.Equal(t, 0, r.ChecksPassed+r.ChecksFailed)
	assert.Equal(t, 0.0, r.Score)
	assert.False(t, r.Passes(0.95))
}

func TestEmailCheckEscapesRegex(t *testing.T) {
	checks := qualityChecks("CUSTOMERS")
	require.Len(t, checks, 4)
	assert.Contains(t, checks[2].query, `'^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\\.[A-Za-z]{2,}$'`)
}

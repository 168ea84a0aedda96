package lab

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flakelab/internal/datagen"
	"flakelab/internal/testutil"
	"flakelab/pkg/errors"
	"flakelab/pkg/models"
)

func smallConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Customers = 5
	cfg.Products = 4
	cfg.Stores = 2
	cfg.TransactionsPerDay = 3
	cfg.HistoricalDays = 2
	cfg.DataDir = t.TempDir()
	cfg.Now = testutil.ReferenceDate()
	return cfg
}

func newTestLab(t *testing.T, cfg Config) (*Lab, *testutil.MockExecutor) {
	t.Helper()
	exec := testutil.NewMockExecutor()
	l := New(exec, cfg, zap.NewNop())
	l.Gen = datagen.New(42, testutil.ReferenceDate())
	return l, exec
}

func healthyEnvironment(exec *testutil.MockExecutor) {
	exec.SetSum("COPY INTO DATA_ENG_DEMO.RAW_DATA.CUSTOMERS", 5)
	exec.SetSum("COPY INTO DATA_ENG_DEMO.RAW_DATA.PRODUCTS", 4)
	exec.SetSum("COPY INTO DATA_ENG_DEMO.RAW_DATA.STORES", 2)
	exec.SetSum("COPY INTO DATA_ENG_DEMO.RAW_DATA.TRANSACTIONS", 6)
	exec.SetColumn("SHOW GRANTS TO SHARE", "DATA_ENG_DEMO", "DATA_ENG_DEMO.SHARED_DATA", "CUSTOMER_SUMMARY")
	exec.SetCount("SHOW GRANTS TO SHARE", 5)
	exec.SetCount("SHOW DATABASES", 1)
	exec.SetCount("SHOW SCHEMAS", 7)
	exec.SetCount("SHOW TABLES", 4)
	exec.SetCount("SHOW WAREHOUSES", 1)
	exec.SetCount("SHOW SHARES", 1)
}

func TestModeFlag(t *testing.T) {
	var m Mode
	assert.Equal(t, "full", m.String())
	assert.Equal(t, "mode", m.Type())

	require.NoError(t, m.Set("QUICK"))
	assert.Equal(t, ModeQuick, m)
	assert.True(t, m.Setup())

	require.NoError(t, m.Set("cleanup"))
	assert.False(t, m.Setup())

	err := m.Set("partial")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "full|quick|cleanup|validate")
}

func TestConfigDefaultsAndQuick(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1000, cfg.Customers)
	assert.Equal(t, 200, cfg.Products)
	assert.Equal(t, 50, cfg.Stores)
	assert.Equal(t, 500, cfg.TransactionsPerDay)
	assert.Equal(t, 365, cfg.HistoricalDays)
	assert.Equal(t, "1 MINUTE", cfg.DynamicTableLag)
	assert.Equal(t, 0.95, cfg.QualityThreshold)
	require.NoError(t, cfg.Validate())

	quick := cfg.Quick()
	assert.Equal(t, 100, quick.Customers)
	assert.Equal(t, 50, quick.Products)
	assert.Equal(t, 50, quick.TransactionsPerDay)
	assert.Equal(t, 50, quick.Stores)
	assert.Equal(t, 1000, cfg.Customers, "Quick returns a copy")
	assert.Equal(t, QuickMaxTransactions, quick.MaxTransactions)
	assert.Equal(t, QuickMaxTransactions, quick.Volumes().TransactionCount())
	assert.Zero(t, cfg.MaxTransactions)

	small := cfg
	small.MaxTransactions = 500
	assert.Equal(t, 500, small.Quick().MaxTransactions, "a lower cap is kept")
}

func TestConfigWithVolumes(t *testing.T) {
	cfg := DefaultConfig().WithVolumes(models.LabVolumes{Customers: 42, HistoricalDays: 30, MaxTransactions: 1200})
	assert.Equal(t, 42, cfg.Customers)
	assert.Equal(t, 1200, cfg.Volumes().TransactionCount())
	assert.Equal(t, 30, cfg.HistoricalDays)
	assert.Equal(t, 200, cfg.Products)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"too many customers", func(c *Config) { c.Customers = MaxCustomers + 1 }, "customers"},
		{"no products", func(c *Config) { c.Products = 0 }, "products"},
		{"too many stores", func(c *Config) { c.Stores = 101 }, "stores"},
		{"too much history", func(c *Config) { c.HistoricalDays = 731 }, "historical_days"},
		{"no transactions", func(c *Config) { c.TransactionsPerDay = 0 }, "transactions_per_day"},
		{"bad threshold", func(c *Config) { c.QualityThreshold = 1.5 }, "quality_threshold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeValidationFailed, errors.GetErrorCode(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}

	cfg := DefaultConfig()
	cfg.Customers, cfg.Products, cfg.Stores, cfg.HistoricalDays = MaxCustomers, MaxProducts, MaxStores, MaxHistoricalDays
	assert.NoError(t, cfg.Validate())
}

func TestConfigDates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Now = testutil.ReferenceDate()
	cfg.HistoricalDays = 30
	assert.Equal(t, "2025-10-19", cfg.StartDate())
	assert.Equal(t, "2025-11-18", cfg.EndDate())
}

func TestRunFull(t *testing.T) {
	l, exec := newTestLab(t, smallConfig(t))
	healthyEnvironment(exec)

	result, err := l.Run(context.Background(), ModeFull)
	require.NoError(t, err)

	sql := exec.SQL()
	require.NotEmpty(t, sql)
	assert.True(t, strings.HasPrefix(sql[0], "CREATE DATABASE IF NOT EXISTS DATA_ENG_DEMO"))
	assert.Equal(t, 5, exec.Count("CREATE SCHEMA IF NOT EXISTS DATA_ENG_DEMO."))
	assert.Equal(t, 3, exec.Count("CREATE WAREHOUSE IF NOT EXISTS"))
	assert.True(t, exec.Ran("WAREHOUSE_SIZE = 'LARGE'"))
	assert.Equal(t, 3, exec.Count("CREATE STAGE IF NOT EXISTS DATA_ENG_DEMO.RAW_DATA."))
	assert.Equal(t, 3, exec.Count("CREATE OR REPLACE FILE FORMAT"))
	assert.Equal(t, 5, exec.Count("CREATE OR REPLACE TABLE DATA_ENG_DEMO.RAW_DATA."))
	assert.Equal(t, 4, exec.Count("PUT 'file://"))
	assert.Equal(t, 2, exec.Count("CREATE OR REPLACE PIPE"))
	assert.Equal(t, 3, exec.Count("CREATE OR REPLACE TABLE DATA_ENG_DEMO.CURATED."))
	assert.Equal(t, 3, exec.Count("CLUSTER BY"))
	assert.True(t, exec.Ran("CREATE OR REPLACE VIEW DATA_ENG_DEMO.ANALYTICS.DAILY_SALES_SUMMARY"))
	assert.True(t, exec.Ran("CREATE OR REPLACE VIEW DATA_ENG_DEMO.ANALYTICS.CUSTOMER_LTV"))
	assert.True(t, exec.Ran("CREATE OR REPLACE DYNAMIC TABLE DATA_ENG_DEMO.CURATED.CUSTOMER_TRANSACTION_SUMMARY"))
	assert.True(t, exec.Ran("TARGET_LAG = '1 MINUTE'"))
	assert.Equal(t, 3, exec.Count("CREATE OR REPLACE SECURE VIEW DATA_ENG_DEMO.SHARED_DATA."))
	assert.True(t, exec.Ran("CREATE SHARE IF NOT EXISTS DATA_ENG_CUSTOMER_SHARE"))
	assert.Equal(t, 5, exec.Count("TO SHARE DATA_ENG_CUSTOMER_SHARE"))
	assert.True(t, exec.Ran("DATA_ENG_DEMO.ANALYTICS.SHARE_MONITORING"))

	// Ordering between layers
	assert.Less(t, exec.IndexOf("PUT 'file://"), exec.IndexOf("CREATE OR REPLACE PIPE"))
	assert.Less(t, exec.IndexOf("CURATED.CUSTOMERS AS"), exec.IndexOf("CURATED.TRANSACTIONS AS"))
	assert.Less(t, exec.IndexOf("CURATED.TRANSACTIONS AS"), exec.IndexOf("DYNAMIC TABLE"))
	assert.Less(t, exec.IndexOf("SECURE VIEW"), exec.IndexOf("CREATE SHARE"))

	assert.Equal(t, []string{TagLoad, TagTransform}, exec.Tags)

	require.Len(t, result.Loads, 4)
	assert.Equal(t, "DATA_ENG_DEMO.RAW_DATA.CUSTOMERS", result.Loads[0].Table)
	assert.Equal(t, int64(5), result.Loads[0].RowsLoaded)
	assert.Equal(t, float64(6), l.Metrics.Counter("rows_transactions").Value())

	require.Len(t, result.Quality, 3)
	assert.True(t, result.QualityPassed(0.95))

	assert.Len(t, result.SharedObjects, 3)
	require.NotNil(t, result.Usage)
	assert.Equal(t, 5, result.Usage.ObjectsShared)

	require.NotNil(t, result.Validation)
	assert.True(t, result.Validation.Ready())
	assert.Equal(t, 8, result.Validation.Tables)
	assert.True(t, result.Validation.ShareExists)

	// The data directory keeps the staged files
	entries, err := os.ReadDir(l.Config.DataDir)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestRunInfraOnly(t *testing.T) {
	l, exec := newTestLab(t, smallConfig(t))
	l.InfraOnly = true
	healthyEnvironment(exec)

	result, err := l.Run(context.Background(), ModeFull)
	require.NoError(t, err)

	assert.True(t, exec.Ran("CREATE OR REPLACE FILE FORMAT DATA_ENG_DEMO.RAW_DATA.PARQUET_FORMAT"))
	assert.False(t, exec.Ran("PUT "))
	assert.False(t, exec.Ran("CREATE SHARE"))
	assert.Empty(t, exec.Tags)
	assert.Empty(t, result.Loads)
	require.NotNil(t, result.Validation)
}

func TestRunQuickShrinksVolumes(t *testing.T) {
	cfg := smallConfig(t)
	l, exec := newTestLab(t, cfg)
	healthyEnvironment(exec)

	_, err := l.Run(context.Background(), ModeQuick)
	require.NoError(t, err)
	assert.Equal(t, 100, l.Config.Customers)
	assert.Equal(t, 50, l.Config.Products)
	assert.Equal(t, 2, l.Config.Stores)
}

func TestRunStepFailure(t *testing.T) {
	l, exec := newTestLab(t, smallConfig(t))
	exec.FailOn("CREATE WAREHOUSE", nil)

	_, err := l.Run(context.Background(), ModeFull)
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.ErrCodeStepFailed, appErr.Code)
	assert.Equal(t, "Warehouse Setup", appErr.Context["step"])
	assert.False(t, exec.Ran("CREATE STAGE"))
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Stores = 0
	l, exec := newTestLab(t, cfg)

	_, err := l.Run(context.Background(), ModeFull)
	require.Error(t, err)
	assert.Empty(t, exec.Statements)
}

func TestRunNeedsExecutor(t *testing.T) {
	_, err := (&Lab{}).Run(context.Background(), ModeFull)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInternal, errors.GetErrorCode(err))
}

func TestCleanup(t *testing.T) {
	l, exec := newTestLab(t, DefaultConfig())

	result, err := l.Run(context.Background(), ModeCleanup)
	require.NoError(t, err)
	assert.Equal(t, ModeCleanup, result.Mode)
	assert.Equal(t, []string{
		"DROP DATABASE IF EXISTS DATA_ENG_DEMO",
		"DROP WAREHOUSE IF EXISTS DATA_ENG_LOAD_WH",
		"DROP WAREHOUSE IF EXISTS DATA_ENG_XFORM_WH",
		"DROP WAREHOUSE IF EXISTS DATA_ENG_ANALYTICS_WH",
		"DROP SHARE IF EXISTS DATA_ENG_CUSTOMER_SHARE",
	}, exec.SQL())
}

func TestCleanupFailure(t *testing.T) {
	l, exec := newTestLab(t, DefaultConfig())
	exec.FailOn("DROP WAREHOUSE", nil)

	err := l.Cleanup(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCleanupFailed, errors.GetErrorCode(err))
	assert.False(t, exec.Ran("DROP SHARE"))
}

func TestValidateCountsFailuresAsZero(t *testing.T) {
	l, exec := newTestLab(t, DefaultConfig())
	exec.SetCount("SHOW DATABASES", 1)
	exec.FailOn("SHOW SCHEMAS", nil)
	exec.FailOn("SHOW WAREHOUSES LIKE 'DATA_ENG_XFORM_WH'", nil)
	exec.SetCount("SHOW WAREHOUSES", 1)
	exec.SetCount("SHOW TABLES IN SCHEMA DATA_ENG_DEMO.RAW_DATA", 5)

	result, err := l.Run(context.Background(), ModeValidate)
	require.NoError(t, err)
	v := result.Validation
	require.NotNil(t, v)

	assert.True(t, v.DatabaseExists)
	assert.Equal(t, 0, v.Schemas)
	assert.Equal(t, 5, v.Tables)
	assert.Equal(t, 2, v.Warehouses)
	assert.False(t, v.ShareExists)
	assert.False(t, v.Ready())
	assert.Empty(t, exec.Statements)
}

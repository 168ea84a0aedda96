package lab

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flakelab/internal/testutil"
)

func TestShareCreateAndGrant(t *testing.T) {
	exec := testutil.NewMockExecutor()
	s := NewShare(exec, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, s.Create(ctx))
	require.NoError(t, s.Grant(ctx, SharedViews()...))

	assert.Equal(t, []string{
		"CREATE SHARE IF NOT EXISTS DATA_ENG_CUSTOMER_SHARE COMMENT = 'Curated sales and customer analytics for partners'",
		"GRANT USAGE ON DATABASE DATA_ENG_DEMO TO SHARE DATA_ENG_CUSTOMER_SHARE",
		"GRANT USAGE ON SCHEMA DATA_ENG_DEMO.SHARED_DATA TO SHARE DATA_ENG_CUSTOMER_SHARE",
		"GRANT SELECT ON VIEW DATA_ENG_DEMO.SHARED_DATA.CUSTOMER_SUMMARY TO SHARE DATA_ENG_CUSTOMER_SHARE",
		"GRANT SELECT ON VIEW DATA_ENG_DEMO.SHARED_DATA.SALES_METRICS TO SHARE DATA_ENG_CUSTOMER_SHARE",
		"GRANT SELECT ON VIEW DATA_ENG_DEMO.SHARED_DATA.PRODUCT_PERFORMANCE TO SHARE DATA_ENG_CUSTOMER_SHARE",
	}, exec.SQL())
}

func TestShareGrantStopsOnFailure(t *testing.T) {
	exec := testutil.NewMockExecutor()
	exec.FailOn("ON SCHEMA", nil)
	s := NewShare(exec, nil)

	require.Error(t, s.Grant(context.Background(), "CUSTOMER_SUMMARY"))
	assert.False(t, exec.Ran("GRANT SELECT"))
}

func TestShareAddAccountsIsBestEffort(t *testing.T) {
	exec := testutil.NewMockExecutor()
	s := NewShare(exec, nil)
	ctx := context.Background()

	assert.True(t, s.AddAccounts(ctx))
	assert.Empty(t, exec.Statements)

	exec.FailOn("ADD ACCOUNTS", nil)
	assert.False(t, s.AddAccounts(ctx, "XY98765.US-WEST-2", "AB12345.US-EAST-1"))
	require.Len(t, exec.Statements, 1)
	assert.Equal(t, "ALTER SHARE DATA_ENG_CUSTOMER_SHARE ADD ACCOUNTS = XY98765.US-WEST-2, AB12345.US-EAST-1", exec.Statements[0].SQL)
	assert.True(t, exec.Statements[0].BestEffort)
}

func TestShareListObjects(t *testing.T) {
	exec := testutil.NewMockExecutor()
	s := NewShare(exec, nil)

	names, err := s.ListObjects(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)

	exec.SetColumn("SHOW GRANTS TO SHARE DATA_ENG_CUSTOMER_SHARE", "DATA_ENG_DEMO", "DATA_ENG_DEMO.SHARED_DATA.SALES_METRICS")
	names, err = s.ListObjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"DATA_ENG_DEMO", "DATA_ENG_DEMO.SHARED_DATA.SALES_METRICS"}, names)
}

func TestMonitorShare(t *testing.T) {
	exec := testutil.NewMockExecutor()
	exec.SetCount("SHOW GRANTS TO SHARE", 5)
	exec.FailOn("SHOW GRANTS OF SHARE", nil)

	usage := MonitorShare(context.Background(), exec, ShareName, nil)
	assert.Equal(t, ShareUsage{Share: ShareName, ObjectsShared: 5}, usage)

	exec2 := testutil.NewMockExecutor()
	exec2.SetCount("SHOW GRANTS OF SHARE", 2)
	exec2.FailOn("SHOW GRANTS TO SHARE", nil)
	usage = MonitorShare(context.Background(), exec2, ShareName, nil)
	assert.Equal(t, 0, usage.ObjectsShared)
	assert.Equal(t, 2, usage.AccountsWithAccess)
}

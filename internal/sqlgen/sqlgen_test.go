package sqlgen

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteEscapesSingleQuotes(t *testing.T) {
	assert.Equal(t, "'O''Brien''s'", Quote("O'Brien's"))
	assert.Equal(t, "''", Quote(""))
}

func TestDateIsTenCharacters(t *testing.T) {
	lit := Literal(time.Date(2024, 3, 5, 13, 4, 0, 0, time.UTC))
	assert.Equal(t, "'2024-03-05'", lit)
	assert.Len(t, strings.Trim(lit, "'"), 10)
}

func TestRound(t *testing.T) {
	tests := []struct {
		in     float64
		places int32
		want   float64
	}{
		{1234.5678, 2, 1234.57},
		{-0.125, 2, -0.13},
		{1.23456, 4, 1.2346},
		{2.345, 2, 2.35},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round(tt.in, tt.places))
	}
}

func TestUse(t *testing.T) {
	assert.Equal(t, "USE WAREHOUSE COMPUTE_WH", Use("warehouse", "COMPUTE_WH"))
	assert.Equal(t, "USE DATABASE SNOWFLAKE", UseDatabase("SNOWFLAKE"))
	assert.Equal(t, "USE SCHEMA RAW_DATA", UseSchema("RAW_DATA"))
}

func TestIdent(t *testing.T) {
	valid := []string{"COMPANIES", "RAW_DATA.COMPANIES", "DATA_ENG_DEMO.CURATED.CUSTOMERS", "_x$1"}
	for _, name := range valid {
		_, err := Ident(name)
		assert.NoError(t, err, name)
	}

	invalid := []string{"", "1ABC", "a;DROP TABLE x", "A.B.C.D", "name with space"}
	for _, name := range invalid {
		_, err := Ident(name)
		assert.Error(t, err, name)
	}
}

func TestInsertValuesForm(t *testing.T) {
	ins := &Insert{Table: "companies", Columns: []string{"ticker", "market_cap_billions", "founded_year"}}
	ins.Add("AAPL", 3000.0, 1976)
	ins.Add("O'NEIL", 1.5, 2001)

	want := "INSERT INTO companies (ticker, market_cap_billions, founded_year) VALUES\n" +
		"('AAPL', 3000, 1976),\n" +
		"('O''NEIL', 1.5, 2001)"
	assert.Equal(t, want, ins.SQL())
}

func TestInsertSelectFormForArrays(t *testing.T) {
	ins := &Insert{Table: "market_events", Columns: []string{"event_id", "affected_tickers"}}
	ins.Add("E1", []string{"AAPL", "MSFT"})
	ins.Add("E2", []string{"NVDA"})

	sql := ins.SQL()
	assert.Contains(t, sql, "\nSELECT 'E1', ARRAY_CONSTRUCT('AAPL', 'MSFT')")
	assert.Contains(t, sql, "\nUNION ALL SELECT 'E2', ARRAY_CONSTRUCT('NVDA')")
	assert.NotContains(t, sql, "VALUES")
}

func TestInsertNullDoesNotForceSelect(t *testing.T) {
	ins := &Insert{Table: "t", Columns: []string{"a", "b"}}
	ins.Add("x", Null)
	assert.Contains(t, ins.SQL(), "VALUES\n('x', NULL)")
}

func TestInsertEmpty(t *testing.T) {
	ins := &Insert{Table: "t"}
	assert.Equal(t, "", ins.SQL())
}

func TestInsertChunk(t *testing.T) {
	ins := &Insert{Table: "t", Columns: []string{"a"}}
	for i := 0; i < 7; i++ {
		ins.Add(i)
	}
	chunks := ins.Chunk(3)
	require.Len(t, chunks, 3)
	assert.Equal(t, 3, chunks[0].Len())
	assert.Equal(t, 1, chunks[2].Len())
	assert.Len(t, ins.Chunk(0), 1)
}

func TestWarehouseSQL(t *testing.T) {
	sql := Warehouse{
		Name: "DATA_ENG_LOAD_WH", Size: "MEDIUM", AutoResume: true,
		InitiallySuspended: true, Comment: "Warehouse for data loading operations",
	}.SQL()

	assert.Contains(t, sql, "CREATE WAREHOUSE IF NOT EXISTS DATA_ENG_LOAD_WH WITH")
	assert.Contains(t, sql, "WAREHOUSE_SIZE = 'MEDIUM'")
	assert.Contains(t, sql, "AUTO_SUSPEND = 300")
	assert.Contains(t, sql, "AUTO_RESUME = TRUE")
	assert.Contains(t, sql, "INITIALLY_SUSPENDED = TRUE")
	assert.Contains(t, sql, "COMMENT = 'Warehouse for data loading operations'")
}

func TestCopyIntoSQL(t *testing.T) {
	sql := CopyInto{
		Table: "RAW_DATA.CUSTOMERS", Stage: "CSV_STAGE", Format: "CSV_FORMAT",
		Pattern: ".*customers.*[.]csv",
	}.SQL()

	assert.Equal(t, "COPY INTO RAW_DATA.CUSTOMERS\nFROM @CSV_STAGE\nFILE_FORMAT = (FORMAT_NAME = 'CSV_FORMAT')\n"+
		"PATTERN = '.*customers.*[.]csv'\nON_ERROR = 'CONTINUE'\nPURGE = FALSE", sql)

	byName := CopyInto{Table: "T", Stage: "S", Format: "F", MatchByName: true}.SQL()
	assert.Contains(t, byName, "MATCH_BY_COLUMN_NAME = CASE_INSENSITIVE")
}

func TestSearchServiceSQL(t *testing.T) {
	svc := SearchService{
		Name: "research_reports_search", On: "full_content",
		Attributes: []string{"title", "author"}, Warehouse: "COMPUTE_WH",
		Query: "SELECT * FROM RAW_DATA.research_reports",
	}
	sql := svc.SQL()
	assert.True(t, strings.HasPrefix(sql, "CREATE CORTEX SEARCH SERVICE IF NOT EXISTS research_reports_search"))
	assert.Contains(t, sql, "ATTRIBUTES title, author")
	assert.Contains(t, sql, "TARGET_LAG = '1 hour'")

	svc.Replace = true
	assert.True(t, strings.HasPrefix(svc.SQL(), "CREATE OR REPLACE CORTEX SEARCH SERVICE"))
}

func TestSmallBuilders(t *testing.T) {
	assert.Equal(t, "DROP DATABASE IF EXISTS MARKETS_AI_DEMO", Drop("DATABASE", "MARKETS_AI_DEMO"))
	assert.Equal(t, "TRUNCATE TABLE IF EXISTS companies", Truncate("companies"))
	assert.Equal(t, "SHOW WAREHOUSES LIKE 'DATA_ENG_LOAD_WH'", ShowLike("WAREHOUSES", "DATA_ENG_LOAD_WH"))
	assert.Equal(t, "ALTER SESSION SET QUERY_TAG = 'DATA_ENG_DEMO_LOAD'", SetQueryTag("DATA_ENG_DEMO_LOAD"))
	assert.Equal(t, "CREATE SCHEMA IF NOT EXISTS RAW_DATA COMMENT = 'Raw ingested data'", CreateSchema("RAW_DATA", "Raw ingested data"))
	assert.Equal(t, "CREATE DATABASE IF NOT EXISTS MARKETS_AI_DEMO", CreateDatabase("MARKETS_AI_DEMO", ""))
	assert.Equal(t, "PUT 'file:///tmp/x/customers.parquet' @PARQUET_STAGE AUTO_COMPRESS = FALSE OVERWRITE = TRUE",
		Put("/tmp/x/customers.parquet", "PARQUET_STAGE"))
	assert.Equal(t, "A.B", Qualify("A", "", "B"))
	assert.Equal(t, "ALTER TABLE CURATED.PRODUCTS CLUSTER BY (CATEGORY, BRAND)", ClusterBy("CURATED.PRODUCTS", "CATEGORY", "BRAND"))
}

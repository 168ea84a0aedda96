package sqlgen

import (
	"fmt"
	"strings"
)

// CreateDatabase renders CREATE DATABASE IF NOT EXISTS
func CreateDatabase(name, comment string) string {
	return withComment(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", name), comment)
}

// CreateSchema renders CREATE SCHEMA IF NOT EXISTS
func CreateSchema(name, comment string) string {
	return withComment(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", name), comment)
}

// Use switches the session to a database, schema or warehouse
func Use(kind, name string) string {
	return "USE " + strings.ToUpper(kind) + " " + name
}

// UseDatabase is Use("DATABASE", name)
func UseDatabase(name string) string { return Use("DATABASE", name) }

// UseSchema is Use("SCHEMA", name)
func UseSchema(name string) string { return Use("SCHEMA", name) }

// SetQueryTag tags every following statement in the session
func SetQueryTag(tag string) string {
	return "ALTER SESSION SET QUERY_TAG = " + Quote(tag)
}

// Warehouse describes a virtual warehouse
type Warehouse struct {
	Name               string
	Size               string
	AutoSuspend        int
	AutoResume         bool
	InitiallySuspended bool
	Comment            string
}

func (w Warehouse) SQL() string {
	suspend := w.AutoSuspend
	if suspend == 0 {
		suspend = 300
	}
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE WAREHOUSE IF NOT EXISTS %s WITH\n", w.Name)
	fmt.Fprintf(&b, "    WAREHOUSE_SIZE = '%s'\n", w.Size)
	fmt.Fprintf(&b, "    AUTO_SUSPEND = %d\n", suspend)
	fmt.Fprintf(&b, "    AUTO_RESUME = %s\n", boolWord(w.AutoResume))
	fmt.Fprintf(&b, "    INITIALLY_SUSPENDED = %s", boolWord(w.InitiallySuspended))
	if w.Comment != "" {
		fmt.Fprintf(&b, "\n    COMMENT = %s", Quote(w.Comment))
	}
	return b.String()
}

// CreateStage renders an internal stage
func CreateStage(name, comment string) string {
	return withComment("CREATE STAGE IF NOT EXISTS "+name, comment)
}

// FileFormat is a named file format. Options render in order as KEY = value.
type FileFormat struct {
	Name    string
	Type    string // CSV, JSON, PARQUET
	Options [][2]string
}

// CSVFormat is the lab's CSV format
func CSVFormat(name string) FileFormat {
	return FileFormat{Name: name, Type: "CSV", Options: [][2]string{
		{"FIELD_DELIMITER", "','"},
		{"SKIP_HEADER", "1"},
		{"FIELD_OPTIONALLY_ENCLOSED_BY", `'"'`},
		{"NULL_IF", "('NULL', 'null', '')"},
		{"EMPTY_FIELD_AS_NULL", "TRUE"},
		{"COMPRESSION", "AUTO"},
	}}
}

// JSONFormat is the lab's JSON format
func JSONFormat(name string) FileFormat {
	return FileFormat{Name: name, Type: "JSON", Options: [][2]string{
		{"STRIP_OUTER_ARRAY", "TRUE"},
		{"COMPRESSION", "AUTO"},
	}}
}

// ParquetFormat is the lab's Parquet format
func ParquetFormat(name string) FileFormat {
	return FileFormat{Name: name, Type: "PARQUET", Options: [][2]string{
		{"COMPRESSION", "AUTO"},
	}}
}

func (f FileFormat) SQL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE OR REPLACE FILE FORMAT %s\n    TYPE = '%s'", f.Name, f.Type)
	for _, opt := range f.Options {
		fmt.Fprintf(&b, "\n    %s = %s", opt[0], opt[1])
	}
	return b.String()
}

// CopyInto loads staged files into a table
type CopyInto struct {
	Table       string
	Stage       string
	Format      string
	Pattern     string
	OnError     string
	Purge       bool
	MatchByName bool
}

func (c CopyInto) SQL() string {
	onError := c.OnError
	if onError == "" {
		onError = "CONTINUE"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "COPY INTO %s\nFROM @%s\nFILE_FORMAT = (FORMAT_NAME = '%s')", c.Table, c.Stage, c.Format)
	if c.Pattern != "" {
		fmt.Fprintf(&b, "\nPATTERN = %s", Quote(c.Pattern))
	}
	if c.MatchByName {
		b.WriteString("\nMATCH_BY_COLUMN_NAME = CASE_INSENSITIVE")
	}
	fmt.Fprintf(&b, "\nON_ERROR = '%s'\nPURGE = %s", onError, boolWord(c.Purge))
	return b.String()
}

// Put uploads a local file to a stage
func Put(localPath, stage string) string {
	path := strings.ReplaceAll(localPath, `\`, "/")
	return fmt.Sprintf("PUT 'file://%s' @%s AUTO_COMPRESS = FALSE OVERWRITE = TRUE", path, stage)
}

// CreatePipe wraps a COPY INTO in a pipe without auto-ingest
func CreatePipe(name string, load CopyInto) string {
	return fmt.Sprintf("CREATE OR REPLACE PIPE %s\n    AUTO_INGEST = FALSE\nAS\n%s", name, load.SQL())
}

// DynamicTable is an incrementally refreshed table
type DynamicTable struct {
	Name      string
	TargetLag string
	Warehouse string
	Query     string
}

func (d DynamicTable) SQL() string {
	return fmt.Sprintf("CREATE OR REPLACE DYNAMIC TABLE %s\n    TARGET_LAG = '%s'\n    WAREHOUSE = %s\nAS\n%s",
		d.Name, d.TargetLag, d.Warehouse, strings.TrimSpace(d.Query))
}

// CreateView renders CREATE OR REPLACE VIEW
func CreateView(name, query string) string {
	return fmt.Sprintf("CREATE OR REPLACE VIEW %s AS\n%s", name, strings.TrimSpace(query))
}

// CreateSecureView renders a view that consumers of a share may select
func CreateSecureView(name, query string) string {
	return fmt.Sprintf("CREATE OR REPLACE SECURE VIEW %s AS\n%s", name, strings.TrimSpace(query))
}

// CreateTableAs renders CTAS
func CreateTableAs(name, query string) string {
	return fmt.Sprintf("CREATE OR REPLACE TABLE %s AS\n%s", name, strings.TrimSpace(query))
}

// SearchService is a Cortex Search service definition
type SearchService struct {
	Name       string
	On         string
	Attributes []string
	Warehouse  string
	TargetLag  string
	Query      string
	Replace    bool
}

func (s SearchService) SQL() string {
	lag := s.TargetLag
	if lag == "" {
		lag = "1 hour"
	}
	head := "CREATE CORTEX SEARCH SERVICE IF NOT EXISTS"
	if s.Replace {
		head = "CREATE OR REPLACE CORTEX SEARCH SERVICE"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\nON %s", head, s.Name, s.On)
	if len(s.Attributes) > 0 {
		fmt.Fprintf(&b, "\nATTRIBUTES %s", strings.Join(s.Attributes, ", "))
	}
	fmt.Fprintf(&b, "\nWAREHOUSE = %s\nTARGET_LAG = '%s'\nAS (\n%s\n)", s.Warehouse, lag, strings.TrimSpace(s.Query))
	return b.String()
}

// CreateShare renders CREATE SHARE IF NOT EXISTS
func CreateShare(name, comment string) string {
	return withComment("CREATE SHARE IF NOT EXISTS "+name, comment)
}

// GrantUsageToShare grants USAGE on a database or schema
func GrantUsageToShare(kind, object, share string) string {
	return fmt.Sprintf("GRANT USAGE ON %s %s TO SHARE %s", kind, object, share)
}

// GrantSelectToShare grants SELECT on a table or view
func GrantSelectToShare(kind, object, share string) string {
	return fmt.Sprintf("GRANT SELECT ON %s %s TO SHARE %s", kind, object, share)
}

// AlterShareAddAccounts adds consumer accounts to a share
func AlterShareAddAccounts(share string, accounts ...string) string {
	return fmt.Sprintf("ALTER SHARE %s ADD ACCOUNTS = %s", share, strings.Join(accounts, ", "))
}

// Drop renders DROP <kind> IF EXISTS <name>
func Drop(kind, name string) string {
	return fmt.Sprintf("DROP %s IF EXISTS %s", kind, name)
}

// ClusterBy sets the clustering key of a table
func ClusterBy(table string, keys ...string) string {
	return fmt.Sprintf("ALTER TABLE %s CLUSTER BY (%s)", table, strings.Join(keys, ", "))
}

// Truncate renders TRUNCATE TABLE IF EXISTS
func Truncate(table string) string {
	return "TRUNCATE TABLE IF EXISTS " + table
}

// ShowLike renders SHOW <kind> LIKE <pattern>
func ShowLike(kind, pattern string) string {
	return fmt.Sprintf("SHOW %s LIKE %s", kind, Quote(pattern))
}

// ShowIn renders SHOW <kind> IN <scope>
func ShowIn(kind, scope string) string {
	return fmt.Sprintf("SHOW %s IN %s", kind, scope)
}

// CountRows renders SELECT COUNT(*) FROM table
func CountRows(table string) string {
	return "SELECT COUNT(*) FROM " + table
}

func withComment(stmt, comment string) string {
	if comment == "" {
		return stmt
	}
	return stmt + " COMMENT = " + Quote(comment)
}

func boolWord(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

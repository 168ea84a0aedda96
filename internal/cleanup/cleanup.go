// Package cleanup removes the markets demo objects. Every statement is best
// effort: missing objects are logged and skipped.
package cleanup

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"flakelab/internal/markets"
	"flakelab/internal/snowflake"
	"flakelab/internal/sqlgen"
	"flakelab/pkg/errors"
)

// Level selects how much is removed
type Level string

const (
	// LevelComplete drops every object and the database
	LevelComplete Level = "complete"
	// LevelPartial keeps the database and schemas
	LevelPartial Level = "partial"
	// LevelDataOnly truncates the tables
	LevelDataOnly Level = "data_only"
)

// Levels lists the accepted levels
var Levels = []Level{LevelComplete, LevelPartial, LevelDataOnly}

// ParseLevel validates a level name. Empty means complete.
func ParseLevel(s string) (Level, error) {
	if s == "" {
		return LevelComplete, nil
	}
	for _, l := range Levels {
		if strings.EqualFold(s, string(l)) {
			return l, nil
		}
	}
	names := make([]string, len(Levels))
	for i, l := range Levels {
		names[i] = string(l)
	}
	return "", errors.InvalidInput("cleanup level", s, names...)
}

// Describe is the summary logged after a run
func (l Level) Describe() string {
	switch l {
	case LevelPartial:
		return "Demo data removed, database structure preserved"
	case LevelDataOnly:
		return "Table data cleared, structure and objects preserved"
	default:
		return "All demo objects have been removed from Snowflake"
	}
}

var (
	searchServices = []string{"earnings_documents_search", markets.SearchTranscript, markets.SearchReports}
	views          = []string{markets.ViewEarnings, markets.ViewThematic}
	tables         = []string{
		markets.TableEvents,
		markets.TableTranscripts,
		markets.TableReports,
		markets.TableEarnings,
		markets.TableCompanies,
		markets.TablePrices,
	}
	schemas = []string{
		markets.SchemaSearch,
		markets.SchemaAnalytics,
		markets.SchemaEnriched,
		markets.SchemaMarketplace,
		markets.SchemaRaw,
	}
)

// Result lists the statements that ran and those that failed
type Result struct {
	Level    Level
	Executed []string
	Failed   []string
}

// OK reports whether every statement succeeded
func (r *Result) OK() bool {
	return len(r.Failed) == 0
}

// Cleaner runs a cleanup level against one session
type Cleaner struct {
	exec   snowflake.Executor
	log    *zap.Logger
	result *Result
}

// NewCleaner creates a cleaner
func NewCleaner(exec snowflake.Executor, log *zap.Logger) *Cleaner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cleaner{exec: exec, log: log}
}

// Run removes the demo objects for level
func (c *Cleaner) Run(ctx context.Context, level Level) (*Result, error) {
	level, err := ParseLevel(string(level))
	if err != nil {
		return nil, err
	}
	c.result = &Result{Level: level}
	c.log.Info("🧹 Starting demo cleanup", zap.String("level", string(level)))

	switch level {
	case LevelComplete:
		c.log.Info("🗑️ Performing COMPLETE cleanup (removing all demo objects)...")
		c.searchServices(ctx)
		c.views(ctx)
		c.tables(ctx)
		c.schemas(ctx)
		c.database(ctx)
	case LevelPartial:
		c.log.Info("🧽 Performing PARTIAL cleanup (keeping structure, removing data)...")
		c.searchServices(ctx)
		c.views(ctx)
		c.tables(ctx)
	case LevelDataOnly:
		c.log.Info("🧼 Performing DATA ONLY cleanup (truncating tables)...")
		c.run(ctx, sqlgen.UseDatabase(markets.Database), "Switching to demo database")
		c.run(ctx, sqlgen.UseSchema(markets.SchemaRaw), "Switching to RAW_DATA schema")
		for _, t := range tables {
			c.run(ctx, sqlgen.Truncate(t), "Truncating table "+t)
		}
	}

	c.log.Info("🎉 Demo cleanup completed",
		zap.String("level", strings.ToUpper(string(level))),
		zap.Int("executed", len(c.result.Executed)),
		zap.Int("warnings", len(c.result.Failed)))
	c.log.Info("✅ " + level.Describe())
	return c.result, nil
}

func (c *Cleaner) searchServices(ctx context.Context) {
	c.log.Info("🔍 Cleaning up Cortex Search services...")
	c.run(ctx, sqlgen.UseDatabase(markets.Database), "Switching to "+markets.Database+" database")
	c.run(ctx, sqlgen.UseSchema(markets.SchemaSearch), "Switching to SEARCH_SERVICES schema")
	for _, svc := range searchServices {
		c.run(ctx, sqlgen.Drop("CORTEX SEARCH SERVICE", svc), "Dropping "+svc)
	}
}

func (c *Cleaner) views(ctx context.Context) {
	c.log.Info("🧠 Cleaning up semantic views...")
	c.run(ctx, sqlgen.UseSchema(markets.SchemaAnalytics), "Switching to ANALYTICS schema")
	for _, v := range views {
		c.run(ctx, sqlgen.Drop("VIEW", v), "Dropping view "+v)
	}
}

func (c *Cleaner) tables(ctx context.Context) {
	c.log.Info("📊 Cleaning up demo tables...")
	c.run(ctx, sqlgen.UseSchema(markets.SchemaRaw), "Switching to RAW_DATA schema")
	for _, t := range tables {
		c.run(ctx, sqlgen.Drop("TABLE", t), "Dropping table "+t)
	}
}

func (c *Cleaner) schemas(ctx context.Context) {
	c.log.Info("🏗️ Cleaning up schemas...")
	for _, s := range schemas {
		c.run(ctx, sqlgen.Drop("SCHEMA", s), "Dropping schema "+s)
	}
}

func (c *Cleaner) database(ctx context.Context) {
	c.log.Info("🗑️ Cleaning up demo database...")
	// A database cannot be dropped while it is the current one
	c.run(ctx, sqlgen.UseDatabase("SNOWFLAKE"), "Switching to SNOWFLAKE database")
	c.run(ctx, sqlgen.Drop("DATABASE", markets.Database), fmt.Sprintf("Dropping %s database", markets.Database))
}

func (c *Cleaner) run(ctx context.Context, stmt, description string) {
	if c.exec.ExecBestEffort(ctx, stmt, description) {
		c.result.Executed = append(c.result.Executed, stmt)
		return
	}
	c.result.Failed = append(c.result.Failed, stmt)
}

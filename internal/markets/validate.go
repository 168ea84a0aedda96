package markets

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"flakelab/internal/sqlgen"
)

// Check is one row count compared against a minimum
type Check struct {
	Name  string
	Query string
	Count int64
	Min   int64
	Err   error
}

// Passed reports whether the check ran and met its minimum
func (c Check) Passed() bool {
	return c.Err == nil && c.Count >= c.Min
}

// Report is the result of validating a deployment
type Report struct {
	Variant Variant
	Checks  []Check
	// SearchServices is -1 when the services could not be listed
	SearchServices int
}

// Passed reports whether every check passed
func (r *Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed() {
			return false
		}
	}
	return true
}

// Failed returns the checks that did not pass
func (r *Report) Failed() []Check {
	var out []Check
	for _, c := range r.Checks {
		if !c.Passed() {
			out = append(out, c)
		}
	}
	return out
}

type minimum struct {
	name   string
	object string
	min    int64
}

var marketsMinimums = []minimum{
	{"Companies data", qualified(SchemaRaw, TableCompanies), 10},
	{"Earnings data", qualified(SchemaRaw, TableEarnings), 50},
	{"Market events", qualified(SchemaRaw, TableEvents), 5},
	{"Research reports", qualified(SchemaRaw, TableReports), 3},
	{"Earnings semantic view", qualified(SchemaAnalytics, ViewEarnings), 50},
	{"Thematic semantic view", qualified(SchemaAnalytics, ViewThematic), 3},
}

var dualToolMinimums = []minimum{
	{"Companies", qualified(SchemaRaw, TableCompanies), 7},
	{"Earnings data", qualified(SchemaRaw, TableEarnings), 28},
	{"Earnings transcripts", qualified(SchemaRaw, TableTranscripts), 3},
	{"Research reports", qualified(SchemaRaw, TableReports), 3},
	{"Earnings view", qualified(SchemaAnalytics, ViewEarnings), 28},
	{"Research view", qualified(SchemaAnalytics, ViewThematic), 3},
}

// qualified names a table or view independently of the session's database
func qualified(schema, name string) string {
	return sqlgen.Qualify(Database, schema, name)
}

func (v Variant) minimums() []minimum {
	if v == VariantDualTool {
		return dualToolMinimums
	}
	return marketsMinimums
}

// Validate counts the rows of every table and view. Failures are recorded
// in the report, never returned.
func (d *Deployer) Validate(ctx context.Context) *Report {
	log := d.logger()
	report := &Report{Variant: d.Variant, SearchServices: -1}

	for _, m := range d.Variant.minimums() {
		check := Check{Name: m.name, Query: sqlgen.CountRows(m.object), Min: m.min}
		check.Count, check.Err = d.Exec.QueryInt(ctx, check.Query)

		switch {
		case check.Err != nil:
			log.Error(fmt.Sprintf("❌ %s: Validation failed", m.name), zap.Error(check.Err))
		case check.Count < m.min:
			log.Warn(fmt.Sprintf("⚠️  %s: %d records (expected >= %d)", m.name, check.Count, m.min))
		default:
			log.Info(fmt.Sprintf("✅ %s: %d records", m.name, check.Count))
		}
		report.Checks = append(report.Checks, check)
	}

	if d.Variant == VariantDualTool {
		n, err := d.Exec.QueryCount(ctx, sqlgen.ShowIn("CORTEX SEARCH SERVICES", "SCHEMA "+sqlgen.Qualify(Database, SchemaSearch)))
		if err != nil {
			log.Warn("⚠️ Could not validate search services", zap.Error(err))
		} else {
			report.SearchServices = n
			log.Info(fmt.Sprintf("🔍 Search services created: %d", n))
		}
	}

	if report.Passed() {
		log.Info("🎉 All validations passed! Demo is ready.")
	} else {
		log.Warn("⚠️  Some validations failed. Please review the logs.")
	}
	return report
}

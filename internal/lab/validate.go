package lab

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"flakelab/internal/observability"
	"flakelab/internal/sqlgen"
)

// ValidationResult counts the lab objects that exist
type ValidationResult struct {
	DatabaseExists bool
	Schemas        int
	Tables         int
	Warehouses     int
	ShareExists    bool
}

// Ready reports whether the database and every warehouse exist
func (v *ValidationResult) Ready() bool {
	return v.DatabaseExists && v.Warehouses == len(Warehouses())
}

// Validate inspects the environment with SHOW commands. A failing query
// counts as zero objects.
func (l *Lab) Validate(ctx context.Context) *ValidationResult {
	log := l.logger()
	l.steps().Step("Setup Validation", observability.StepStart)

	count := func(query string) int {
		n, err := l.Exec.QueryCount(ctx, query)
		if err != nil {
			log.Debug("validation query failed", zap.String("query", query), zap.Error(err))
			return 0
		}
		return n
	}

	v := &ValidationResult{}
	v.DatabaseExists = count(sqlgen.ShowLike("DATABASES", Database)) > 0
	v.Schemas = count(sqlgen.ShowIn("SCHEMAS", "DATABASE "+Database))
	for _, schema := range []string{SchemaRaw, SchemaCurated} {
		v.Tables += count(sqlgen.ShowIn("TABLES", "SCHEMA "+sqlgen.Qualify(Database, schema)))
	}
	for _, wh := range Warehouses() {
		if count(sqlgen.ShowLike("WAREHOUSES", wh)) > 0 {
			v.Warehouses++
		}
	}
	v.ShareExists = count(sqlgen.ShowLike("SHARES", ShareName)) > 0

	log.Info("📊 Validation Results:")
	log.Info("   Database exists: " + mark(v.DatabaseExists))
	log.Info(fmt.Sprintf("   Schemas: %d", v.Schemas))
	log.Info(fmt.Sprintf("   Tables: %d", v.Tables))
	log.Info(fmt.Sprintf("   Warehouses: %d/%d", v.Warehouses, len(Warehouses())))
	log.Info("   Share exists: " + mark(v.ShareExists))

	l.steps().Step("Setup Validation", observability.StepComplete)
	return v
}

func mark(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}

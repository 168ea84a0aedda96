package lab

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"flakelab/internal/observability"
	"flakelab/internal/snowflake"
	"flakelab/internal/sqlgen"
)

// qualityCheck counts offending rows; zero offenders passes
type qualityCheck struct {
	query  string
	passed string
	issue  string // formatted with the offender count
}

// QualityResult is the outcome of the checks on one table
type QualityResult struct {
	Table        string
	TotalRows    int64
	ChecksPassed int
	ChecksFailed int
	Score        float64
	Issues       []string
}

// Passes reports whether the score meets threshold, a fraction in [0, 1]
func (r QualityResult) Passes(threshold float64) bool {
	return r.Score >= threshold*100
}

// QualityTables are checked in this order
var QualityTables = []string{"CUSTOMERS", "PRODUCTS", "TRANSACTIONS"}

func qualityChecks(table string) []qualityCheck {
	name := curated(table)
	switch table {
	case "CUSTOMERS":
		return []qualityCheck{
			{fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE CUSTOMER_ID IS NULL", name),
				"No NULL customer IDs", "%d NULL customer IDs found"},
			{fmt.Sprintf(`SELECT COUNT(*) FROM (
    SELECT CUSTOMER_ID, COUNT(*) AS DUP_COUNT
    FROM %s
    GROUP BY CUSTOMER_ID
    HAVING COUNT(*) > 1
)`, name), "No duplicate customer IDs", "%d duplicate customer IDs found"},
			{fmt.Sprintf(`SELECT COUNT(*) FROM %s
WHERE EMAIL IS NOT NULL
AND NOT REGEXP_LIKE(EMAIL, '^[A-Za-z0-9._%%+-]+@[A-Za-z0-9.-]+\\.[A-Za-z]{2,}$')`, name),
				"All emails properly formatted", "%d invalid email formats found"},
			{fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE LIFETIME_VALUE IS NULL OR LIFETIME_VALUE < 0", name),
				"All lifetime values valid", "%d invalid lifetime values found"},
		}
	case "PRODUCTS":
		return []qualityCheck{
			{fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE PRODUCT_ID IS NULL", name),
				"No NULL product IDs", "%d NULL product IDs found"},
			{fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE UNIT_PRICE IS NULL OR UNIT_PRICE <= 0", name),
				"All prices valid", "%d invalid prices found"},
			{fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE COST > UNIT_PRICE", name),
				"All cost/price relationships valid", "%d products with cost > price found"},
		}
	case "TRANSACTIONS":
		return []qualityCheck{
			{fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE TRANSACTION_ID IS NULL", name),
				"No NULL transaction IDs", "%d NULL transaction IDs found"},
			{fmt.Sprintf(`SELECT COUNT(*) FROM %s t
LEFT JOIN %s c ON t.CUSTOMER_ID = c.CUSTOMER_ID
WHERE t.CUSTOMER_ID IS NOT NULL AND c.CUSTOMER_ID IS NULL`, name, curated("CUSTOMERS")),
				"All customer references valid", "%d transactions with invalid customer IDs"},
			{fmt.Sprintf(`SELECT COUNT(*) FROM %s t
LEFT JOIN %s p ON t.PRODUCT_ID = p.PRODUCT_ID
WHERE t.PRODUCT_ID IS NOT NULL AND p.PRODUCT_ID IS NULL`, name, curated("PRODUCTS")),
				"All product references valid", "%d transactions with invalid product IDs"},
			{fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE TOTAL_AMOUNT IS NULL OR TOTAL_AMOUNT <= 0", name),
				"All transaction amounts valid", "%d invalid transaction amounts found"},
		}
	}
	return nil
}

// RunQualityChecks runs the checks for a CURATED table. A check whose query
// fails counts as failed. A table without checks scores zero.
func RunQualityChecks(ctx context.Context, exec snowflake.Executor, table string, threshold float64, log *zap.Logger) QualityResult {
	if log == nil {
		log = zap.NewNop()
	}
	steps := observability.NewStepLogger(log)
	name := "Data Quality Checks: " + table
	steps.Step(name, observability.StepStart)

	result := QualityResult{Table: curated(table)}
	total, err := exec.QueryInt(ctx, sqlgen.CountRows(result.Table))
	if err != nil {
		log.Warn("Could not count rows", zap.String("table", result.Table), zap.Error(err))
	}
	result.TotalRows = total
	log.Info(fmt.Sprintf("Total rows in table: %d", total))

	for _, check := range qualityChecks(table) {
		offenders, err := exec.QueryInt(ctx, check.query)
		switch {
		case err != nil:
			result.ChecksFailed++
			result.Issues = append(result.Issues, fmt.Sprintf("check could not run: %v", err))
		case offenders == 0:
			result.ChecksPassed++
			log.Info("✅ " + check.passed)
		default:
			result.ChecksFailed++
			result.Issues = append(result.Issues, fmt.Sprintf(check.issue, offenders))
		}
	}

	if n := result.ChecksPassed + result.ChecksFailed; n > 0 {
		result.Score = float64(result.ChecksPassed) / float64(n) * 100
	}

	log.Info("quality metrics",
		zap.Int("total_checks", result.ChecksPassed+result.ChecksFailed),
		zap.Int("passed", result.ChecksPassed),
		zap.Int("failed", result.ChecksFailed),
		zap.String("quality_score", fmt.Sprintf("%.1f%%", result.Score)))

	if len(result.Issues) > 0 {
		log.Warn(fmt.Sprintf("⚠️  Found %d data quality issues:", len(result.Issues)))
		for _, issue := range result.Issues {
			log.Warn("   - " + issue)
		}
	}

	if result.Passes(threshold) {
		steps.Step(name, observability.StepComplete)
	} else {
		log.Warn(fmt.Sprintf("⚠️  Quality score below threshold (%.0f%%)", threshold*100))
		steps.Step(name, observability.StepWarning)
	}
	return result
}

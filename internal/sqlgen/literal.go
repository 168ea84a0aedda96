// Package sqlgen renders Snowflake DDL and DML as plain strings. Nothing in
// here talks to a database.
package sqlgen

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*(\.[A-Za-z_][A-Za-z0-9_$]*){0,2}$`)

// Expr is a literal SQL expression that must not be quoted
type Expr string

// Null renders SQL NULL
const Null = Expr("NULL")

// Quote renders s as a single-quoted string literal
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// date renders t as a 'YYYY-MM-DD' literal
func date(t time.Time) string {
	return Quote(t.Format("2006-01-02"))
}

// Round rounds v to places decimals using decimal arithmetic
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// ArrayConstruct renders an ARRAY_CONSTRUCT of string literals
func ArrayConstruct(values ...string) Expr {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = Quote(v)
	}
	return Expr("ARRAY_CONSTRUCT(" + strings.Join(quoted, ", ") + ")")
}

// Ident validates a (possibly qualified) identifier and returns it unchanged
func Ident(name string) (string, error) {
	if !identPattern.MatchString(name) {
		return "", fmt.Errorf("invalid identifier %q", name)
	}
	return name, nil
}

// Literal renders a Go value as a SQL literal
func Literal(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return string(Null)
	case Expr:
		return string(x)
	case string:
		return Quote(x)
	case []string:
		return string(ArrayConstruct(x...))
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return fmt.Sprintf("%d", x)
	case int64:
		return fmt.Sprintf("%d", x)
	case float64:
		return decimal.NewFromFloat(x).String()
	case decimal.Decimal:
		return x.String()
	case time.Time:
		return date(x)
	default:
		return Quote(fmt.Sprint(x))
	}
}

// Qualify joins identifier parts with dots, skipping empty parts
func Qualify(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ".")
}

package sqlgen

import (
	"strings"
)

// Insert renders a multi-row INSERT. Rows holding an Expr (such as
// ARRAY_CONSTRUCT) are rendered with INSERT ... SELECT ... UNION ALL because
// Snowflake rejects function calls inside a VALUES clause.
type Insert struct {
	Table   string
	Columns []string
	Rows    [][]interface{}
}

// Add appends a row
func (i *Insert) Add(values ...interface{}) {
	i.Rows = append(i.Rows, values)
}

// Len returns the number of rows
func (i *Insert) Len() int {
	return len(i.Rows)
}

// SQL renders the statement. An insert with no rows renders "".
func (i *Insert) SQL() string {
	if len(i.Rows) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(i.Table)
	if len(i.Columns) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(i.Columns, ", "))
		b.WriteString(")")
	}

	if i.needsSelect() {
		for n, row := range i.Rows {
			if n == 0 {
				b.WriteString("\nSELECT ")
			} else {
				b.WriteString("\nUNION ALL SELECT ")
			}
			b.WriteString(renderRow(row))
		}
		return b.String()
	}

	b.WriteString(" VALUES")
	for n, row := range i.Rows {
		if n > 0 {
			b.WriteString(",")
		}
		b.WriteString("\n(")
		b.WriteString(renderRow(row))
		b.WriteString(")")
	}
	return b.String()
}

// Chunk splits the insert into statements of at most size rows
func (i *Insert) Chunk(size int) []*Insert {
	if size <= 0 || len(i.Rows) <= size {
		return []*Insert{i}
	}
	var out []*Insert
	for start := 0; start < len(i.Rows); start += size {
		end := start + size
		if end > len(i.Rows) {
			end = len(i.Rows)
		}
		out = append(out, &Insert{Table: i.Table, Columns: i.Columns, Rows: i.Rows[start:end]})
	}
	return out
}

func (i *Insert) needsSelect() bool {
	for _, row := range i.Rows {
		for _, v := range row {
			switch x := v.(type) {
			case []string:
				return true
			case Expr:
				if x != Null {
					return true
				}
			}
		}
	}
	return false
}

func renderRow(row []interface{}) string {
	parts := make([]string, len(row))
	for n, v := range row {
		parts[n] = Literal(v)
	}
	return strings.Join(parts, ", ")
}

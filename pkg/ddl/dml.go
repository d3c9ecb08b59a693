package ddl

import (
	"fmt"
	"strings"
)

// BuildInsertSQL renders a parameterized INSERT for rows records of the given
// columns. Placeholders are numbered continuously across rows:
//
//	INSERT INTO figures (name,polygon) VALUES ($1,$2)
//	INSERT INTO figures (name,polygon) VALUES ($1,$2),($3,$4)
//
// Values are never written into the statement; callers bind them in column
// order, row after row.
func BuildInsertSQL(d Dialect, table string, columns []string, rows int) (string, error) {
	if err := ValidQualifiedIdent(table); err != nil {
		return "", fmt.Errorf("ddl: table: %w", err)
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("ddl: insert into %s: no columns", table)
	}
	if rows < 1 {
		return "", fmt.Errorf("ddl: insert into %s: rows must be > 0, got %d", table, rows)
	}
	for _, c := range columns {
		if err := ValidIdent(c); err != nil {
			return "", fmt.Errorf("ddl: insert into %s: %w", table, err)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ","))
	n := 0
	for r := 0; r < rows; r++ {
		if r > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('(')
		for i := range columns {
			if i > 0 {
				sb.WriteByte(',')
			}
			n++
			sb.WriteString(d.Placeholder(n))
		}
		sb.WriteByte(')')
	}
	return sb.String(), nil
}

// BuildSelectSQL renders SELECT * FROM table, with an optional WHERE clause.
// where is raw SQL; any values it needs must be bound as parameters.
func BuildSelectSQL(table, where string) (string, error) {
	if err := ValidQualifiedIdent(table); err != nil {
		return "", fmt.Errorf("ddl: table: %w", err)
	}
	sql := "SELECT * FROM " + table
	if w := strings.TrimSpace(where); w != "" {
		sql += " WHERE " + w
	}
	return sql, nil
}

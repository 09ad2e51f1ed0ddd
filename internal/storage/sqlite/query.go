package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxResultRows caps how many rows Query returns to the caller.
	MaxResultRows = 100

	maxCellChars = 120
)

// ErrNotReadOnly is returned for statements other than a single SELECT.
var ErrNotReadOnly = errors.New("only a single read-only SELECT statement is allowed")

// Result is a fully materialised, stringified query result.
type Result struct {
	Columns   []string
	Rows      [][]string
	Truncated bool
}

// String renders the result as a pipe-separated table.
func (r *Result) String() string {
	if r == nil || len(r.Columns) == 0 {
		return ""
	}
	if len(r.Rows) == 0 {
		return "(no rows)"
	}
	var b strings.Builder
	b.WriteString(strings.Join(r.Columns, " | "))
	for _, row := range r.Rows {
		b.WriteByte('\n')
		b.WriteString(strings.Join(row, " | "))
	}
	if r.Truncated {
		fmt.Fprintf(&b, "\n... (truncated to %d rows)", len(r.Rows))
	}
	return b.String()
}

// CheckReadOnly accepts a single SELECT or WITH statement. A trailing
// semicolon is tolerated.
func CheckReadOnly(query string) (string, error) {
	q := strings.TrimSpace(query)
	q = strings.TrimSpace(strings.TrimRight(q, "; \t\n"))
	if q == "" {
		return "", fmt.Errorf("empty query")
	}
	if strings.Contains(q, ";") {
		return "", ErrNotReadOnly
	}
	fields := strings.Fields(q)
	switch strings.ToUpper(fields[0]) {
	case "SELECT", "WITH":
	default:
		return "", ErrNotReadOnly
	}
	return q, nil
}

// Query runs a read-only statement and returns up to maxRows rows
// (MaxResultRows when maxRows <= 0).
func (s *Store) Query(ctx context.Context, query string, maxRows int) (*Result, error) {
	q, err := CheckReadOnly(query)
	if err != nil {
		return nil, err
	}
	if maxRows <= 0 || maxRows > MaxResultRows {
		maxRows = MaxResultRows
	}
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanResult(rows, maxRows)
}

func scanResult(rows *sql.Rows, maxRows int) (*Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	res := &Result{Columns: cols}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if len(res.Rows) >= maxRows {
			res.Truncated = true
			break
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make([]string, len(cols))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func formatValue(v any) string {
	var s string
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		s = string(val)
	case string:
		s = val
	default:
		s = fmt.Sprint(val)
	}
	s = strings.ReplaceAll(s, "\n", " ")
	if utf8.RuneCountInString(s) > maxCellChars {
		r := []rune(s)
		s = string(r[:maxCellChars]) + "..."
	}
	return s
}

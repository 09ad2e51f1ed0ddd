package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const (
	defaultPath = "qc.db"

	// SampleRows is the number of example rows included per table in
	// TableInfo output.
	SampleRows = 3
)

// ErrNotFound is returned by Open when the database file does not exist.
var ErrNotFound = errors.New("database file not found")

// Store wraps a read-only SQLite DB connection.
type Store struct {
	path string
	db   *sql.DB
}

// Open opens an existing SQLite database read-only. It never creates the
// file: a missing path is reported as ErrNotFound.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, abs)
		}
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("open sqlite: %s is a directory", abs)
	}

	db, err := sql.Open("sqlite", readOnlyDSN(abs))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &Store{path: abs, db: db}, nil
}

// New wraps an already opened handle. Used with drivers other than the
// bundled one, mostly in tests.
func New(db *sql.DB, path string) *Store {
	return &Store{path: path, db: db}
}

func readOnlyDSN(path string) string {
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(path),
		RawQuery: "mode=ro&_pragma=query_only(1)&_pragma=busy_timeout(5000)",
	}
	return u.String()
}

// Path returns the path backing the store.
func (s *Store) Path() string {
	return s.path
}

// Close closes the DB.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Tables lists user tables sorted by name, skipping SQLite internals.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT name FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
ORDER BY name;`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

// TableInfo describes the named tables (all tables when names is empty):
// the CREATE statement followed by a few sample rows each.
func (s *Store) TableInfo(ctx context.Context, names []string) (string, error) {
	all, err := s.Tables(ctx)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		names = all
	}

	known := make(map[string]bool, len(all))
	for _, t := range all {
		known[t] = true
	}
	var missing []string
	for _, n := range names {
		if !known[n] {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("table_names %v not found in database", missing)
	}

	parts := make([]string, 0, len(names))
	for _, name := range names {
		var ddl string
		err := s.db.QueryRowContext(ctx,
			`SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&ddl)
		if err != nil {
			return "", fmt.Errorf("schema for %s: %w", name, err)
		}
		sample, err := s.sampleRows(ctx, name)
		if err != nil {
			return "", err
		}
		parts = append(parts, strings.TrimSpace(ddl)+"\n\n/*\n"+
			fmt.Sprintf("%d rows from %s table:\n", SampleRows, name)+sample+"*/")
	}
	return strings.Join(parts, "\n\n"), nil
}

func (s *Store) sampleRows(ctx context.Context, table string) (string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", quoteIdent(table), SampleRows))
	if err != nil {
		return "", fmt.Errorf("sample rows from %s: %w", table, err)
	}
	defer rows.Close()

	res, err := scanResult(rows, SampleRows)
	if err != nil {
		return "", fmt.Errorf("sample rows from %s: %w", table, err)
	}
	var b strings.Builder
	b.WriteString(strings.Join(res.Columns, "\t"))
	b.WriteByte('\n')
	for _, r := range res.Rows {
		b.WriteString(strings.Join(r, "\t"))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// QuickCommerceTables are the tables created by SeedQuickCommerce, sorted.
var QuickCommerceTables = []string{"apps", "prices", "products"}

// SeedQuickCommerce writes a small price-comparison database under
// t.TempDir and returns its path.
func SeedQuickCommerce(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "qc.db")
	Exec(t, path,
		`CREATE TABLE products (id INTEGER PRIMARY KEY, name TEXT NOT NULL, category TEXT)`,
		`CREATE TABLE apps (id INTEGER PRIMARY KEY, name TEXT NOT NULL, delivery_fee REAL)`,
		`CREATE TABLE prices (product_id INTEGER, app_id INTEGER, price REAL, discount_pct REAL)`,
		`INSERT INTO apps (id, name, delivery_fee) VALUES (1, 'Blinkit', 25), (2, 'Zepto', 0), (3, 'Instamart', 35)`,
		`INSERT INTO products (id, name, category) VALUES (1, 'Onion', 'vegetable'), (2, 'Tomato', 'vegetable'), (3, 'Apple', 'fruit'), (4, 'Banana', NULL)`,
		`INSERT INTO prices VALUES (1, 1, 42.0, 10), (1, 2, 39.5, 0), (1, 3, 45.0, 30), (2, 2, 28.0, 5)`,
	)
	return path
}

// EmptyDB creates a database file with no tables.
func EmptyDB(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "empty.db")
	Exec(t, path, `CREATE TABLE tmp (id INTEGER)`, `DROP TABLE tmp`)
	return path
}

// Exec runs statements against the database at path with a writable
// connection.
func Exec(t testing.TB, path string, stmts ...string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err, s)
	}
}

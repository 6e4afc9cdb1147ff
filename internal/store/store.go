// Package store is the embedded relational store behind the get_from_db
// capability: a SQLite database holding the fixed hospital demo dataset.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	_ "modernc.org/sqlite"
)

// Row is a single result row. Column order is preserved so the serialized
// row renders in SELECT order.
type Row = *orderedmap.OrderedMap[string, any]

// Raw is the executor's result union: an ordered sequence of rows, or a
// query error encoded as data. Err, when non-empty, is a JSON object with a
// "message" field. Callers inspect the shape of Raw instead of handling a
// Go error; Execute only fails as data.
type Raw struct {
	Rows []Row
	Err  string
}

// Store wraps a SQLite database seeded with the demo tables.
type Store struct {
	db       *sql.DB
	readOnly bool
}

// Open opens (or creates) a SQLite database in dataDir.
// Pass ":memory:" as dataDir for an in-memory database (the default for a
// demo deployment, and what tests use).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "llamasql.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors;
	// a second connection to :memory: would also see a different database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetReadOnly toggles the SELECT/WITH allowlist on Execute. Off by default;
// the demo deliberately accepts arbitrary statements.
func (s *Store) SetReadOnly(on bool) {
	s.readOnly = on
}

// Execute runs arbitrary SQL and returns the result as data. Query errors
// (malformed SQL, missing tables, constraint violations) come back in
// Raw.Err; Execute never returns a Go error and never panics for a bad
// statement. Write statements mutate the store unless read-only mode is on.
func (s *Store) Execute(ctx context.Context, sqlText string) Raw {
	if s.readOnly && !isReadOnlySQL(sqlText) {
		return errRaw("only SELECT and WITH statements are allowed")
	}

	rows, err := s.db.QueryContext(ctx, sqlText)
	if err != nil {
		return errRaw(err.Error())
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return errRaw(err.Error())
	}

	out := []Row{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return errRaw(err.Error())
		}

		row := orderedmap.New[string, any]()
		for i, col := range cols {
			row.Set(col, normalizeValue(vals[i]))
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return errRaw(err.Error())
	}

	return Raw{Rows: out}
}

// normalizeValue keeps row values to the wire-friendly set
// string | int64 | float64 | nil.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func isReadOnlySQL(sqlText string) bool {
	normalized := strings.ToLower(strings.TrimSpace(sqlText))
	return strings.HasPrefix(normalized, "select") || strings.HasPrefix(normalized, "with")
}

// errRaw encodes a query failure as the executor's error representation.
func errRaw(msg string) Raw {
	b, err := json.Marshal(struct {
		Message string `json:"message"`
	}{Message: msg})
	if err != nil {
		return Raw{Err: msg}
	}
	return Raw{Err: string(b)}
}

// Package storage provides the SQLite-backed catalog database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/snapkit/snapkit/internal/catalog"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database (used by tests).
const MemoryPath = ":memory:"

// ErrNotFound is returned by mutators when the target row does not exist.
var ErrNotFound = errors.New("not found")

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// DB wraps a SQLite database connection.
type DB struct {
	db   *sql.DB
	q    querier
	path string
}

// ListFilter narrows list queries. Zero value lists everything.
type ListFilter struct {
	Tag    string // Whole-tag match, case-insensitive
	Search string // Case-insensitive substring of the name
}

// OpenDB opens or creates a SQLite database at the given path.
// Parent directories are created as needed.
func OpenDB(path string) (*DB, error) {
	dsn := "file::memory:"
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		dsn = "file:" + filepath.ToSlash(path)
	}
	dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes, and an in-memory
	// database only lives as long as its single connection.
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db, q: db, path: path}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Path returns the path the database was opened from.
func (d *DB) Path() string {
	return d.path
}

// WithTx runs fn inside a transaction. fn receives a DB bound to the
// transaction; the transaction commits if fn returns nil and rolls back otherwise.
func (d *DB) WithTx(ctx context.Context, fn func(tx *DB) error) error {
	if _, ok := d.q.(*sql.Tx); ok {
		return fn(d)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(&DB{db: d.db, q: tx, path: d.path}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS installed_apps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			publisher TEXT,
			install_location TEXT,
			version TEXT,
			registry_key TEXT,
			tags TEXT,
			scanned_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_installed_registry_key
			ON installed_apps(registry_key) WHERE registry_key IS NOT NULL;

		CREATE TABLE IF NOT EXISTS pinned_apps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			installed_app_id INTEGER NOT NULL UNIQUE
				REFERENCES installed_apps(id) ON DELETE CASCADE,
			launch_command TEXT,
			tags TEXT,
			pinned_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS not_installed_apps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			description TEXT,
			download_url TEXT,
			tags TEXT,
			added_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_not_installed_name ON not_installed_apps(name);

		CREATE TABLE IF NOT EXISTS resource_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			path TEXT NOT NULL,
			resource_type TEXT NOT NULL,
			tags TEXT,
			added_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_resource_name_path ON resource_items(name, path);
	`

	_, err := db.Exec(schema)
	return err
}

// SetTags replaces the tags of a row in the table named by kind.
func (d *DB) SetTags(kind catalog.Kind, id int64, tags string) error {
	var table string
	switch kind {
	case catalog.KindInstalled:
		table = "installed_apps"
	case catalog.KindPinned:
		table = "pinned_apps"
	case catalog.KindNotInstalled:
		table = "not_installed_apps"
	case catalog.KindResource:
		table = "resource_items"
	default:
		return catalog.ErrInvalidKind
	}

	res, err := d.q.Exec(`UPDATE `+table+` SET tags = ? WHERE id = ?`,
		nullableStringValue(catalog.NormalizeTags(tags)), id)
	if err != nil {
		return fmt.Errorf("updating tags: %w", err)
	}
	return requireAffected(res)
}

// Counts holds the number of rows in each catalog table.
type Counts struct {
	InstalledApps    int `json:"installed_apps"`
	PinnedApps       int `json:"pinned_apps"`
	NotInstalledApps int `json:"not_installed_apps"`
	ResourceItems    int `json:"resource_items"`
}

// CountAll returns row counts for all four tables.
func (d *DB) CountAll() (Counts, error) {
	var c Counts
	err := d.q.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM installed_apps),
			(SELECT COUNT(*) FROM pinned_apps),
			(SELECT COUNT(*) FROM not_installed_apps),
			(SELECT COUNT(*) FROM resource_items)
	`).Scan(&c.InstalledApps, &c.PinnedApps, &c.NotInstalledApps, &c.ResourceItems)
	if err != nil {
		return Counts{}, fmt.Errorf("counting rows: %w", err)
	}
	return c, nil
}

// requireAffected turns a zero-row update or delete into ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// searchClause builds the optional name filter for a list query.
func searchClause(column, search string) (string, []any) {
	search = strings.TrimSpace(search)
	if search == "" {
		return "", nil
	}
	return ` WHERE ` + column + ` LIKE ? ESCAPE '\'`, []any{"%" + escapeLike(search) + "%"}
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// nowUTC returns the current time truncated to second precision.
func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// formatTime formats a timestamp for storage.
func formatTime(t time.Time) string {
	if t.IsZero() {
		t = nowUTC()
	}
	return t.UTC().Format(time.RFC3339)
}

// parseTime parses a stored timestamp, returning the zero time on failure.
func parseTime(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

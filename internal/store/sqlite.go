package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DatabaseName is the name of the SQLite database inside the data directory.
const DatabaseName = "todo.db"

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Empty database
// 1 - items table, seeded with the bootstrap record
const currentSchemaVersion = 1

// SQLiteBackend persists the list in a SQLite database.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically. A database created
// by this call is seeded with the bootstrap record.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, newOpenError(path, fmt.Errorf("create data dir: %w", err))
	}

	// Open database (creates file if doesn't exist)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, newOpenError(path, fmt.Errorf("failed to open database: %w", err))
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, newOpenError(path, fmt.Errorf("failed to connect to database: %w", err))
	}

	// One process, one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, newOpenError(path, fmt.Errorf("failed to apply pragmas: %w", err))
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, newOpenError(path, fmt.Errorf("failed to apply schema: %w", err))
	}

	return &SQLiteBackend{db: db}, nil
}

// Load reads every row of the items table.
func (b *SQLiteBackend) Load(ctx context.Context) (map[string]bool, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT label, checked
		FROM items
		ORDER BY label COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := make(map[string]bool)
	row := 0
	for rows.Next() {
		row++
		var label string
		var checked int64
		if err := rows.Scan(&label, &checked); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if reason := validateLabel(label); reason != "" {
			return nil, newCorruptError(&DecodeError{Line: row, Text: label, Reason: reason})
		}
		items[normalizeLabel(label)] = checked != 0
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return items, nil
}

// Save replaces the table contents with the snapshot in one transaction.
func (b *SQLiteBackend) Save(ctx context.Context, items map[string]bool) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO items (label, checked) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, label := range sortedLabels(items) {
		if _, err := stmt.ExecContext(ctx, label, boolToInt(items[label])); err != nil {
			return fmt.Errorf("insert item %q: %w", label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 seeds a new database with the bootstrap record.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		INSERT INTO items (label, checked) VALUES (?, 0)
		ON CONFLICT(label) DO NOTHING
	`, BootstrapLabel)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (b *SQLiteBackend) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := b.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// internal/output/sqlite.go
package output

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteWriter persists the result table into a SQLite database,
// creating the table from the result's column order.
type SQLiteWriter struct {
	db    *sql.DB
	table string
}

// NewSQLiteWriter opens (or creates) the database file.
func NewSQLiteWriter(path, table string) (*SQLiteWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("SQLite database path is required")
	}
	if table == "" {
		return nil, fmt.Errorf("SQLite table name is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	// Single writer; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &SQLiteWriter{db: db, table: table}, nil
}

// Write creates the table when missing and inserts every row inside one
// transaction.
func (w *SQLiteWriter) Write(ctx context.Context, table *Table) error {
	if len(table.Rows) == 0 {
		return w.createTable(ctx, table)
	}
	if err := w.createTable(ctx, table); err != nil {
		return err
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	columnList := make([]string, len(table.Columns))
	for i, column := range table.Columns {
		columnList[i] = "[" + column + "]"
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(table.Columns)), ",")

	query := fmt.Sprintf("INSERT INTO [%s] (%s) VALUES (%s)",
		w.table, strings.Join(columnList, ", "), placeholders)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range table.Rows {
		args := make([]interface{}, len(table.Columns))
		for j, column := range table.Columns {
			args[j] = sqliteValue(row[column])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (w *SQLiteWriter) createTable(ctx context.Context, table *Table) error {
	defs := make([]string, 0, len(table.Columns)+1)
	for _, column := range table.Columns {
		defs = append(defs, fmt.Sprintf("[%s] %s", column, columnType(table, column)))
	}
	defs = append(defs, "created_at DATETIME DEFAULT CURRENT_TIMESTAMP")

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS [%s] (id INTEGER PRIMARY KEY AUTOINCREMENT, %s)",
		w.table, strings.Join(defs, ", "))

	if _, err := w.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %q: %w", w.table, err)
	}
	return nil
}

// columnType infers the column's affinity from the first non-nil cell.
func columnType(table *Table, column string) string {
	for _, row := range table.Rows {
		switch row[column].(type) {
		case nil:
			continue
		case int, int64:
			return "INTEGER"
		case float32, float64:
			return "REAL"
		default:
			return "TEXT"
		}
	}
	return "TEXT"
}

func sqliteValue(value interface{}) interface{} {
	switch v := value.(type) {
	case nil:
		return nil
	case []string:
		b, err := json.Marshal(v)
		if err != nil {
			return "[]"
		}
		return string(b)
	case []interface{}:
		b, err := json.Marshal(v)
		if err != nil {
			return "[]"
		}
		return string(b)
	case string, int, int64, float32, float64, bool:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Close closes the database.
func (w *SQLiteWriter) Close() error {
	if w.db == nil {
		return nil
	}
	err := w.db.Close()
	w.db = nil
	return err
}

// Format returns the sink format name.
func (w *SQLiteWriter) Format() string { return "sqlite" }

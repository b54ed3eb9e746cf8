// internal/output/sqlite_test.go
package output

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func TestSQLiteWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "films.db")

	w, err := NewSQLiteWriter(path, "films")
	if err != nil {
		t.Fatalf("NewSQLiteWriter failed: %v", err)
	}
	if err := w.Write(context.Background(), sampleTable()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM [films]").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 rows, got %d", count)
	}

	var title string
	var rating float64
	err = db.QueryRow("SELECT title, rating FROM [films] WHERE url = ?",
		"https://example.com/title/tt0001/").Scan(&title, &rating)
	if err != nil {
		t.Fatalf("row query failed: %v", err)
	}
	if title != "Alpha" || rating != 7.4 {
		t.Errorf("unexpected row: title=%q rating=%v", title, rating)
	}

	var genres string
	if err := db.QueryRow("SELECT genres FROM [films] WHERE title = 'Alpha'").Scan(&genres); err != nil {
		t.Fatalf("genres query failed: %v", err)
	}
	if genres != `["Drama","History"]` {
		t.Errorf("expected JSON-encoded list, got %q", genres)
	}
}

func TestSQLiteWriterValidation(t *testing.T) {
	if _, err := NewSQLiteWriter("", "films"); err == nil {
		t.Error("expected an error for empty path")
	}
	if _, err := NewSQLiteWriter(filepath.Join(t.TempDir(), "x.db"), ""); err == nil {
		t.Error("expected an error for empty table name")
	}
}

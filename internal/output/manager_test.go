// internal/output/manager_test.go
package output

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"cinescrape/internal/config"
)

func TestManagerFansOutToAllSinks(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "films.csv")
	jsonPath := filepath.Join(dir, "films.json")

	m, err := NewManager(context.Background(), []config.SinkConfig{
		{Format: "csv", File: csvPath},
		{Format: "json", File: jsonPath},
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if err := m.Write(context.Background(), sampleTable()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := os.Stat(csvPath); err != nil {
		t.Errorf("CSV output missing: %v", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("JSON output missing: %v", err)
	}
	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		t.Fatalf("JSON output malformed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 JSON rows, got %d", len(rows))
	}
	if rows[0]["title"] != "Alpha" {
		t.Errorf("unexpected first row: %v", rows[0])
	}
}

func TestManagerRejectsUnknownFormat(t *testing.T) {
	_, err := NewManager(context.Background(), []config.SinkConfig{
		{Format: "parquet", File: "x"},
	})
	if err == nil {
		t.Fatal("expected an error for unsupported format")
	}
}

func TestManagerRequiresSinks(t *testing.T) {
	if _, err := NewManager(context.Background(), nil); err == nil {
		t.Fatal("expected an error for empty sink list")
	}
}

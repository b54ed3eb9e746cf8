// internal/output/json.go
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// JSONWriter writes the result table as an array of row objects.
type JSONWriter struct {
	path string
	file *os.File
}

// NewJSONWriter creates a JSON writer for the given path.
func NewJSONWriter(path string) (*JSONWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("JSON file path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create JSON file: %w", err)
	}

	return &JSONWriter{path: path, file: file}, nil
}

// Write encodes every row. Rows are emitted in table order; keys within
// a row follow encoding/json's key ordering.
func (w *JSONWriter) Write(ctx context.Context, table *Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rows := table.Rows
	if rows == nil {
		rows = []map[string]interface{}{}
	}

	encoder := json.NewEncoder(w.file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (w *JSONWriter) Close() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// Format returns the sink format name.
func (w *JSONWriter) Format() string { return "json" }

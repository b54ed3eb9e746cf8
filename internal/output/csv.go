// internal/output/csv.go
package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// CSVWriter writes the result table as a CSV file with a header row in
// the table's column order.
type CSVWriter struct {
	path string
	file *os.File
}

// NewCSVWriter creates a CSV writer for the given path, creating parent
// directories as needed.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("CSV file path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV file: %w", err)
	}

	return &CSVWriter{path: path, file: file}, nil
}

// Write writes the header row and every data row in table order.
func (w *CSVWriter) Write(ctx context.Context, table *Table) error {
	writer := csv.NewWriter(w.file)

	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		record := make([]string, len(table.Columns))
		for j, column := range table.Columns {
			record[j] = cellString(row[column])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (w *CSVWriter) Close() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// Format returns the sink format name.
func (w *CSVWriter) Format() string { return "csv" }

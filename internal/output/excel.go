// internal/output/excel.go
package output

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// excelMaxCellLength is the hard cell size limit of the xlsx format.
const excelMaxCellLength = 32767

// ExcelWriter writes the result table as a single-sheet workbook with a
// bold, frozen header row in the table's column order.
type ExcelWriter struct {
	path      string
	sheetName string
	file      *excelize.File
}

// NewExcelWriter creates an Excel writer for the given path.
func NewExcelWriter(path, sheetName string) (*ExcelWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("Excel file path is required")
	}
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return nil, fmt.Errorf("Excel file path must end with .xlsx")
	}
	if sheetName == "" {
		sheetName = "Sheet1"
	}

	file := excelize.NewFile()
	if defaultSheet := file.GetSheetName(0); defaultSheet != sheetName {
		if err := file.SetSheetName(defaultSheet, sheetName); err != nil {
			return nil, fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	return &ExcelWriter{path: path, sheetName: sheetName, file: file}, nil
}

// Write writes the header row and every data row.
func (w *ExcelWriter) Write(ctx context.Context, table *Table) error {
	headerStyle, err := w.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range table.Columns {
		cell := columnName(col+1) + "1"
		if err := w.file.SetCellValue(w.sheetName, cell, header); err != nil {
			return fmt.Errorf("failed to write header %q: %w", header, err)
		}
		if err := w.file.SetCellStyle(w.sheetName, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for i, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		for col, column := range table.Columns {
			cell := columnName(col+1) + strconv.Itoa(i+2)
			if err := w.file.SetCellValue(w.sheetName, cell, w.cellValue(row[column])); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	if len(table.Columns) > 0 {
		if err := w.file.SetPanes(w.sheetName, &excelize.Panes{
			Freeze: true,
			YSplit: 1,
		}); err != nil {
			return err
		}
	}

	return nil
}

// cellValue prepares one value for an xlsx cell. Lists collapse to a
// comma-separated string and oversized strings are truncated to the
// format's cell limit.
func (w *ExcelWriter) cellValue(value interface{}) interface{} {
	switch v := value.(type) {
	case nil:
		return ""
	case []string, []interface{}:
		return truncate(cellString(v))
	case string:
		return truncate(v)
	default:
		return value
	}
}

func truncate(s string) string {
	if len(s) > excelMaxCellLength {
		return s[:excelMaxCellLength]
	}
	return s
}

// Close saves the workbook.
func (w *ExcelWriter) Close() error {
	if err := w.file.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return w.file.Close()
}

// Format returns the sink format name.
func (w *ExcelWriter) Format() string { return "xlsx" }

// columnName converts a 1-based column number to its Excel name.
func columnName(col int) string {
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+col%26)) + name
		col /= 26
	}
	return name
}

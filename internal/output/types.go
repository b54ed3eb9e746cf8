// internal/output/types.go
package output

import (
	"context"
	"fmt"
	"strings"
)

// Table is the ordered result handed to every sink: a fixed column
// order plus one map per row. Cells absent from a row are written as
// empty values.
type Table struct {
	Columns []string
	Rows    []map[string]interface{}
}

// Writer persists one result table. Writers are single-shot: Write once,
// then Close.
type Writer interface {
	Write(ctx context.Context, table *Table) error
	Close() error
	Format() string
}

// cellString renders one cell for text formats. Lists collapse to a
// comma-separated string.
func cellString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, ", ")
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
	default:
		return fmt.Sprintf("%v", v)
	}
}

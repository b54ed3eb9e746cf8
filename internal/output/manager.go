// internal/output/manager.go
package output

import (
	"context"
	"fmt"

	"cinescrape/internal/config"
	"cinescrape/internal/utils"
)

// Manager fans one result table out to every configured sink. Sink
// construction is eager so misconfiguration fails before any scraping
// effort is spent.
type Manager struct {
	writers []Writer
	log     utils.Logger
}

// NewManager builds a writer per sink declaration.
func NewManager(ctx context.Context, sinks []config.SinkConfig) (*Manager, error) {
	if len(sinks) == 0 {
		return nil, fmt.Errorf("at least one output sink is required")
	}

	m := &Manager{log: utils.NewComponentLogger("output")}
	for i, sink := range sinks {
		writer, err := newWriter(ctx, sink)
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("sink %d (%s): %w", i, sink.Format, err)
		}
		m.writers = append(m.writers, writer)
	}
	return m, nil
}

func newWriter(ctx context.Context, sink config.SinkConfig) (Writer, error) {
	switch sink.Format {
	case "csv":
		return NewCSVWriter(sink.File)
	case "json":
		return NewJSONWriter(sink.File)
	case "xlsx":
		return NewExcelWriter(sink.File, sink.Sheet)
	case "sqlite":
		return NewSQLiteWriter(sink.File, sink.Table)
	case "mongodb":
		return NewMongoWriter(ctx, sink.URI, sink.Database, sink.Collection)
	default:
		return nil, fmt.Errorf("unsupported output format: %s", sink.Format)
	}
}

// Write sends the table to every sink. All sinks are attempted; the
// first error is returned after the loop so one failing sink does not
// starve the rest.
func (m *Manager) Write(ctx context.Context, table *Table) error {
	var firstErr error
	for _, writer := range m.writers {
		if err := writer.Write(ctx, table); err != nil {
			m.log.Errorf("%s sink failed: %v", writer.Format(), err)
			if firstErr == nil {
				firstErr = fmt.Errorf("%s sink: %w", writer.Format(), err)
			}
			continue
		}
		m.log.Infof("wrote %d rows to %s sink", len(table.Rows), writer.Format())
	}
	return firstErr
}

// Close closes every sink, returning the first error.
func (m *Manager) Close() error {
	var firstErr error
	for _, writer := range m.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.writers = nil
	return firstErr
}

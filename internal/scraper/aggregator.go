// internal/scraper/aggregator.go
package scraper

import (
	"fmt"
	"sync"

	"cinescrape/internal/config"
	"cinescrape/internal/pipeline"
	"cinescrape/internal/utils"
)

// Aggregator accumulates validated records into one ordered, append-only
// table. Aggregation is commutative: records carry their own canonical
// URL, so completion order does not matter. Derived run-wide columns are
// merged in a single final pass, never incrementally.
type Aggregator struct {
	mu        sync.Mutex
	columns   []string
	records   []*DetailRecord
	discarded int
	failed    int
	log       utils.Logger
}

// NewAggregator creates an aggregator with the column order fixed up
// front: url first, then fields in declaration order.
func NewAggregator(fields []config.FieldConfig) *Aggregator {
	columns := make([]string, 0, len(fields)+1)
	columns = append(columns, "url")
	for _, f := range fields {
		columns = append(columns, f.Name)
	}

	return &Aggregator{
		columns: columns,
		log:     utils.NewComponentLogger("aggregator"),
	}
}

// Append adds one validated record. Records are never updated in place.
func (a *Aggregator) Append(record *DetailRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, record)
}

// Discard counts a record that failed the validity gate.
func (a *Aggregator) Discard(url string, err error) {
	a.mu.Lock()
	a.discarded++
	a.mu.Unlock()
	a.log.Infof("discarded %s: %v", url, err)
}

// Fail counts a permanent per-item fetch failure.
func (a *Aggregator) Fail(url string, err error) {
	a.mu.Lock()
	a.failed++
	a.mu.Unlock()
	a.log.Warnf("failed %s: %v", url, err)
}

// SetColumn sets a constant value for every collected record, adding the
// column when it is new (e.g. the search country of the run).
func (a *Aggregator) SetColumn(name string, value interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.addColumn(name)
	for _, rec := range a.records {
		rec.Fields[name] = value
	}
}

// MergeCountBy appends a derived column counting how many records share
// each value of keyColumn. This is a final map-merge step over the
// complete table.
func (a *Aggregator) MergeCountBy(keyColumn, asColumn string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	counts := make(map[string]int)
	for _, rec := range a.records {
		if v, ok := rec.Fields[keyColumn]; ok {
			counts[fmt.Sprintf("%v", v)]++
		}
	}

	a.addColumn(asColumn)
	for _, rec := range a.records {
		if v, ok := rec.Fields[keyColumn]; ok {
			rec.Fields[asColumn] = counts[fmt.Sprintf("%v", v)]
		}
	}
}

// ConvertCurrencies rewrites every currency-typed column to its USD
// value using the record's year column for the rate lookup. Values that
// cannot be parsed or converted are cleared rather than kept raw, so one
// column never mixes currencies.
func (a *Aggregator) ConvertCurrencies(fields []config.FieldConfig, yearColumn string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, f := range fields {
		if f.Type != config.FieldCurrency {
			continue
		}
		for _, rec := range a.records {
			raw, ok := rec.Fields[f.Name].(string)
			if !ok {
				continue
			}
			year, _ := rec.Fields[yearColumn].(int)
			if usd, converted := pipeline.ConvertToUSD(raw, year); converted {
				rec.Fields[f.Name] = usd
			} else {
				delete(rec.Fields, f.Name)
			}
		}
	}
}

// addColumn appends a column name once. Caller holds the lock.
func (a *Aggregator) addColumn(name string) {
	for _, c := range a.columns {
		if c == name {
			return
		}
	}
	a.columns = append(a.columns, name)
}

// Table materializes the ordered result table.
func (a *Aggregator) Table() *ResultTable {
	a.mu.Lock()
	defer a.mu.Unlock()

	columns := make([]string, len(a.columns))
	copy(columns, a.columns)

	rows := make([]map[string]interface{}, 0, len(a.records))
	for _, rec := range a.records {
		row := make(map[string]interface{}, len(rec.Fields)+1)
		row["url"] = rec.URL
		for k, v := range rec.Fields {
			row[k] = v
		}
		rows = append(rows, row)
	}

	return &ResultTable{Columns: columns, Rows: rows}
}

// Summary returns the per-item outcome counters.
func (a *Aggregator) Summary() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Summary{
		Collected: len(a.records),
		Discarded: a.discarded,
		Failed:    a.failed,
	}
}

package chakra

import (
	"fmt"
	"sort"
)

// Row represents a single row of data returned from a Chakra query.
type Row []any

// Table is the tabular result shape exchanged with the Chakra service:
// an ordered column-name sequence plus an ordered row sequence. Row order and
// column order are preserved exactly as received from the server.
//
// The service applies no schema or type enforcement beyond what it returns;
// values are the JSON scalars decoded from the response.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// NewTableFromColumns builds a Table from a column-oriented mapping
// (column name to ordered value sequence). All value sequences must have
// equal length.
//
// Go maps are unordered, so columns are arranged in lexicographic name order
// to keep the resulting table deterministic.
func NewTableFromColumns(columns map[string][]any) (*Table, error) {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	numRows := -1
	for _, name := range names {
		if numRows == -1 {
			numRows = len(columns[name])
			continue
		}
		if len(columns[name]) != numRows {
			return nil, fmt.Errorf("column %q has %d values, want %d", name, len(columns[name]), numRows)
		}
	}
	if numRows == -1 {
		numRows = 0
	}

	rows := make([]Row, numRows)
	for i := range rows {
		row := make(Row, len(names))
		for j, name := range names {
			row[j] = columns[name][i]
		}
		rows[i] = row
	}

	return &Table{Columns: names, Rows: rows}, nil
}

// NumRows returns the number of rows in the table.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumColumns returns the number of columns in the table.
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// ColumnIndex returns the position of the named column, or -1 if the table
// has no such column.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Column returns the named column as a value vector in row order.
// The second return value reports whether the column exists.
func (t *Table) Column(name string) ([]any, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	values := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			values[i] = row[idx]
		}
	}
	return values, true
}

// Records returns the table as row-oriented maps keyed by column name,
// preserving row order.
func (t *Table) Records() []map[string]any {
	records := make([]map[string]any, len(t.Rows))
	for i, row := range t.Rows {
		record := make(map[string]any, len(t.Columns))
		for j, col := range t.Columns {
			if j < len(row) {
				record[col] = row[j]
			}
		}
		records[i] = record
	}
	return records
}

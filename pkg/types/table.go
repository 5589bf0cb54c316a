package types

import (
	"slices"

	"github.com/spf13/cast"
)

// Record is one row keyed by column name. After reconciliation numeric
// cells hold float64 and text cells hold string.
type Record map[string]any

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an in-memory dataset: ordered column names plus rows in
// insertion order.
type Table struct {
	Columns []string
	Rows    []Record
}

// NewTable returns an empty table with the given header.
func NewTable(columns []string) *Table {
	return &Table{Columns: slices.Clone(columns), Rows: []Record{}}
}

// Has reports whether the table carries the named column.
func (t *Table) Has(column string) bool {
	return slices.Contains(t.Columns, column)
}

// Len returns the row count.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Float returns the numeric value of a cell, or 0 if it is not numeric.
func (t *Table) Float(row int, column string) float64 {
	return cast.ToFloat64(t.Rows[row][column])
}

// String returns a cell formatted as text.
func (t *Table) String(row int, column string) string {
	return cast.ToString(t.Rows[row][column])
}

// Sum adds every cell of a numeric column.
func (t *Table) Sum(column string) float64 {
	var total float64
	for i := range t.Rows {
		total += t.Float(i, column)
	}
	return total
}

// Clone returns a deep copy of the header and rows.
func (t *Table) Clone() *Table {
	out := &Table{Columns: slices.Clone(t.Columns), Rows: make([]Record, len(t.Rows))}
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

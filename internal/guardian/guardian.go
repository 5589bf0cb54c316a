// Package guardian reconciles in-memory tables against their declared
// schema. It does no I/O: the storage backend loads the raw table, calls
// Reconcile, and writes the result back when the report says so.
package guardian

import (
	"math"
	"slices"
	"strings"

	"github.com/spf13/cast"

	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

// Options tunes a reconciliation.
type Options struct {
	// Strict drops columns that the schema does not declare.
	Strict bool

	// Required lists records that must exist after reconciliation. Each is
	// matched on the schema Key, case-insensitively, and appended when
	// missing.
	Required []types.Record
}

// Reconcile returns a copy of raw that conforms to schema, plus a report of
// the changes. A nil raw is treated as an empty table with the schema header.
//
// Reconciliation is idempotent: reconciling its own output reports no
// structural change.
func Reconcile(schema types.Schema, raw *types.Table, opts Options) (*types.Table, types.HealReport) {
	report := types.HealReport{Dataset: schema.Dataset}

	var t *types.Table
	if raw == nil {
		t = types.NewTable(schema.Names())
	} else {
		t = raw.Clone()
	}

	restoreColumns(schema, t, &report)
	if opts.Strict {
		dropColumns(schema, t, &report)
	}
	for i := range t.Rows {
		report.Coerced += coerceRow(schema, t.Rows[i])
		report.Normalized += normalizeRow(schema, t.Rows[i])
	}
	for _, req := range opts.Required {
		if appendRequired(schema, t, req) {
			report.Appended++
		}
	}
	return t, report
}

// restoreColumns appends every declared column the table lacks, populated
// with the column default.
func restoreColumns(schema types.Schema, t *types.Table, report *types.HealReport) {
	for _, col := range schema.Columns {
		if t.Has(col.Name) {
			continue
		}
		def := col.DefaultValue()
		t.Columns = append(t.Columns, col.Name)
		for _, row := range t.Rows {
			row[col.Name] = def
		}
		report.Restored = append(report.Restored, col.Name)
	}
}

func dropColumns(schema types.Schema, t *types.Table, report *types.HealReport) {
	kept := t.Columns[:0:0]
	for _, name := range t.Columns {
		if _, ok := schema.Column(name); ok {
			kept = append(kept, name)
			continue
		}
		for _, row := range t.Rows {
			delete(row, name)
		}
		report.Dropped = append(report.Dropped, name)
	}
	t.Columns = kept
}

// coerceRow converts numeric cells to float64 and fills absent cells. It
// returns how many cells were replaced by a default because they could not
// be read as numbers.
func coerceRow(schema types.Schema, row types.Record) int {
	replaced := 0
	for _, col := range schema.Columns {
		v, present := row[col.Name]
		if col.Kind != types.KindNumeric {
			if !present || v == nil {
				row[col.Name] = col.DefaultValue()
			} else if _, ok := v.(string); !ok {
				row[col.Name] = cast.ToString(v)
			}
			continue
		}
		f, ok := ToNumber(v)
		if !ok {
			f = cast.ToFloat64(col.DefaultValue())
			if present {
				replaced++
			}
		}
		row[col.Name] = f
	}
	return replaced
}

func normalizeRow(schema types.Schema, row types.Record) int {
	if schema.Identity == "" {
		return 0
	}
	v, _ := row[schema.Identity].(string)
	n := types.NormalizeIdentity(v)
	if n == v {
		return 0
	}
	row[schema.Identity] = n
	return 1
}

// appendRequired adds req unless a row with the same key exists.
func appendRequired(schema types.Schema, t *types.Table, req types.Record) bool {
	if Contains(schema, t, cast.ToString(req[schema.Key])) {
		return false
	}
	row := make(types.Record, len(t.Columns))
	for _, name := range t.Columns {
		row[name] = ""
	}
	for k, v := range req {
		if slices.Contains(t.Columns, k) {
			row[k] = v
		}
	}
	coerceRow(schema, row)
	normalizeRow(schema, row)
	t.Rows = append(t.Rows, row)
	return true
}

// ToNumber reads v as a finite float64. Blank strings, NaN and infinities
// are rejected.
func ToNumber(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false
		}
		v = s
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Contains reports whether t has a row whose schema Key equals key,
// ignoring case and surrounding whitespace.
func Contains(schema types.Schema, t *types.Table, key string) bool {
	want := strings.TrimSpace(key)
	for _, row := range t.Rows {
		if strings.EqualFold(strings.TrimSpace(cast.ToString(row[schema.Key])), want) {
			return true
		}
	}
	return false
}

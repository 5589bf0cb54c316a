package sqlite

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cast"

	"github.com/mesh-intelligence/shopkeep/internal/guardian"
	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

// dataset implements types.Dataset for one backing store. mu serializes
// every read-modify-write cycle on the store.
type dataset struct {
	mu      sync.Mutex
	name    string
	schema  types.Schema
	backend *Backend
}

func (d *dataset) Name() string         { return d.name }
func (d *dataset) Schema() types.Schema { return d.schema }

func (d *dataset) path() string {
	return filepath.Join(d.backend.dataDir, d.schema.File)
}

// Load returns the ensured table.
func (d *dataset) Load() (*types.Table, error) {
	var out *types.Table
	err := d.withLock(func() error {
		res, err := d.ensureLocked()
		if err != nil {
			return err
		}
		out = res.Table
		return nil
	})
	return out, err
}

// Fetch returns copies of the rows matching filter.
func (d *dataset) Fetch(filter map[string]any) ([]types.Record, error) {
	var out []types.Record
	err := d.withLock(func() error {
		res, err := d.ensureLocked()
		if err != nil {
			return err
		}
		match, err := compileFilter(d.schema, res.Table, filter)
		if err != nil {
			return err
		}
		out = make([]types.Record, 0)
		for _, row := range res.Table.Rows {
			if match(row) {
				out = append(out, row.Clone())
			}
		}
		return nil
	})
	return out, err
}

// Append validates recs against the schema and adds them in one write. If
// any record is rejected nothing is stored.
func (d *dataset) Append(recs ...types.Record) error {
	if len(recs) == 0 {
		return nil
	}
	return d.mutate(func(t *types.Table) (bool, error) {
		rows := make([]types.Record, 0, len(recs))
		for _, rec := range recs {
			row, err := prepareRecord(d.schema, t, rec, true)
			if err != nil {
				return false, err
			}
			rows = append(rows, row)
		}
		t.Rows = append(t.Rows, rows...)
		return true, nil
	})
}

// AppendUnique adds rec unless a row already holds its key value.
func (d *dataset) AppendUnique(key string, rec types.Record) error {
	return d.mutate(func(t *types.Table) (bool, error) {
		row, err := prepareRecord(d.schema, t, rec, true)
		if err != nil {
			return false, err
		}
		match, err := compileFilter(d.schema, t, map[string]any{key: row[key]})
		if err != nil {
			return false, err
		}
		for _, existing := range t.Rows {
			if match(existing) {
				return false, fmt.Errorf("%w: %s %q in %s", types.ErrDuplicateKey, key, cast.ToString(row[key]), d.name)
			}
		}
		t.Rows = append(t.Rows, row)
		return true, nil
	})
}

// Update applies changes to every matching row.
func (d *dataset) Update(filter map[string]any, changes types.Record) (int, error) {
	var n int
	err := d.mutate(func(t *types.Table) (bool, error) {
		match, err := compileFilter(d.schema, t, filter)
		if err != nil {
			return false, err
		}
		patch, err := prepareRecord(d.schema, t, changes, false)
		if err != nil {
			return false, err
		}
		for _, row := range t.Rows {
			if !match(row) {
				continue
			}
			for k, v := range patch {
				row[k] = v
			}
			n++
		}
		return n > 0, nil
	})
	return n, err
}

// Adjust adds delta to a numeric column of every matching row in one
// locked cycle and returns the number of rows changed.
func (d *dataset) Adjust(filter map[string]any, column string, delta float64) (int, error) {
	col, ok := d.schema.Column(column)
	if !ok || col.Kind != types.KindNumeric {
		return 0, fmt.Errorf("%w: %s is not a numeric column of %s", types.ErrInvalidRecord, column, d.name)
	}
	var n int
	err := d.mutate(func(t *types.Table) (bool, error) {
		match, err := compileFilter(d.schema, t, filter)
		if err != nil {
			return false, err
		}
		for _, row := range t.Rows {
			if match(row) {
				row[column] = cast.ToFloat64(row[column]) + delta
				n++
			}
		}
		return n > 0, nil
	})
	return n, err
}

// Delete removes every matching row.
func (d *dataset) Delete(filter map[string]any) (int, error) {
	var n int
	err := d.mutate(func(t *types.Table) (bool, error) {
		match, err := compileFilter(d.schema, t, filter)
		if err != nil {
			return false, err
		}
		kept := t.Rows[:0]
		for _, row := range t.Rows {
			if match(row) {
				n++
				continue
			}
			kept = append(kept, row)
		}
		t.Rows = kept
		return n > 0, nil
	})
	return n, err
}

// Reset recreates the store from the schema. The users dataset keeps the
// administrator's current row, so its password survives the reset.
func (d *dataset) Reset() error {
	return d.withLock(func() error {
		var keep types.Record
		if d.name == types.DatasetUsers {
			keep = d.adminRowLocked()
		}
		if err := os.Remove(d.path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reset %s: %w", d.name, err)
		}
		if keep != nil {
			t := types.NewTable(d.schema.Names())
			t.Rows = append(t.Rows, keep)
			if err := writeCSV(d.path(), t); err != nil {
				return fmt.Errorf("reset %s: %w", d.name, err)
			}
		}
		_, err := d.ensureLocked()
		if err == nil {
			d.backend.log.Warn().Str("dataset", d.name).Msg("store reset")
		}
		return err
	})
}

// adminRowLocked returns the configured administrator's row restricted to
// the schema columns, or nil when the store has none or cannot be read.
func (d *dataset) adminRowLocked() types.Record {
	res, err := d.ensureLocked()
	if err != nil {
		return nil
	}
	want := types.NormalizeIdentity(d.backend.config.Admin.Username)
	for _, row := range res.Table.Rows {
		if types.NormalizeIdentity(cast.ToString(row[d.schema.Identity])) != want {
			continue
		}
		out := make(types.Record, len(d.schema.Columns))
		for _, name := range d.schema.Names() {
			out[name] = row[name]
		}
		return out
	}
	return nil
}

// withLock runs fn with the backend attached and the dataset locked.
func (d *dataset) withLock(fn func() error) error {
	b := d.backend
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.ErrStoreDetached
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn()
}

// mutate runs one read-modify-write cycle: ensure, apply fn, and persist
// when fn reports a change.
func (d *dataset) mutate(fn func(t *types.Table) (bool, error)) error {
	return d.withLock(func() error {
		res, err := d.ensureLocked()
		if err != nil {
			return err
		}
		changed, err := fn(res.Table)
		if err != nil || !changed {
			return err
		}
		if err := writeCSV(d.path(), res.Table); err != nil {
			return fmt.Errorf("persisting %s: %w", d.name, err)
		}
		return d.backend.refreshCache(d.schema, res.Table)
	})
}

// prepareRecord validates input and converts it to stored cell values.
// With full set, every table column is present in the result, filled with
// defaults where rec is silent.
func prepareRecord(s types.Schema, t *types.Table, rec types.Record, full bool) (types.Record, error) {
	out := make(types.Record, len(t.Columns))
	for k, v := range rec {
		if !t.Has(k) {
			return nil, fmt.Errorf("%w: %q in %s", types.ErrUnknownColumn, k, s.Dataset)
		}
		col, declared := s.Column(k)
		switch {
		case declared && col.Kind == types.KindNumeric:
			f, ok := guardian.ToNumber(v)
			if !ok {
				return nil, fmt.Errorf("%w: %s %q is not a number", types.ErrInvalidRecord, k, cast.ToString(v))
			}
			out[k] = f
		case k == s.Identity:
			out[k] = types.NormalizeIdentity(cast.ToString(v))
		default:
			out[k] = cast.ToString(v)
		}
	}
	if !full {
		return out, nil
	}
	for _, name := range t.Columns {
		if _, ok := out[name]; ok {
			continue
		}
		if col, ok := s.Column(name); ok {
			out[name] = col.DefaultValue()
		} else {
			out[name] = ""
		}
	}
	return out, nil
}

// compileFilter builds a row predicate. Numeric columns compare as
// numbers, the identity column ignores case and whitespace, and everything
// else compares as text.
func compileFilter(s types.Schema, t *types.Table, filter map[string]any) (func(types.Record) bool, error) {
	type cond struct {
		column  string
		numeric bool
		num     float64
		text    string
	}
	conds := make([]cond, 0, len(filter))
	for k, v := range filter {
		if !t.Has(k) {
			return nil, fmt.Errorf("%w: %q in %s", types.ErrUnknownColumn, k, s.Dataset)
		}
		c := cond{column: k}
		if col, ok := s.Column(k); ok && col.Kind == types.KindNumeric {
			f, ok := guardian.ToNumber(v)
			if !ok {
				return nil, fmt.Errorf("%w: filter %s %q is not a number", types.ErrInvalidRecord, k, cast.ToString(v))
			}
			c.numeric, c.num = true, f
		} else if k == s.Identity {
			c.text = types.NormalizeIdentity(cast.ToString(v))
		} else {
			c.text = cast.ToString(v)
		}
		conds = append(conds, c)
	}
	return func(row types.Record) bool {
		for _, c := range conds {
			if c.numeric {
				if cast.ToFloat64(row[c.column]) != c.num {
					return false
				}
				continue
			}
			if cast.ToString(row[c.column]) != c.text {
				return false
			}
		}
		return true
	}, nil
}

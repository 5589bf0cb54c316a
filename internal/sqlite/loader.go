// This file mirrors healed tables into the SQLite cache.
package sqlite

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

// refreshCache replaces the cached copy of a dataset with t. Loading is
// transactional: either every row lands or the previous copy stays.
// Columns outside the schema are not cached.
func (b *Backend) refreshCache(s types.Schema, t *types.Table) error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning cache load for %s: %w", s.Dataset, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM " + quoteIdent(s.Dataset)); err != nil {
		return fmt.Errorf("clearing cache for %s: %w", s.Dataset, err)
	}

	cols := make([]string, len(s.Columns))
	placeholders := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = quoteIdent(c.Name)
		placeholders[i] = "?"
	}
	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(s.Dataset), strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("preparing insert for %s: %w", s.Dataset, err)
	}
	defer stmt.Close()

	args := make([]any, len(s.Columns))
	for _, row := range t.Rows {
		for i, c := range s.Columns {
			if c.Kind == types.KindNumeric {
				args[i] = cast.ToFloat64(row[c.Name])
			} else {
				args[i] = cast.ToString(row[c.Name])
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("caching %s row: %w", s.Dataset, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing cache load for %s: %w", s.Dataset, err)
	}
	return nil
}

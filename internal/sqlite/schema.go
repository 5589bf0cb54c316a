// This file derives the SQLite cache DDL from the dataset schemas.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

// quoteIdent quotes a SQLite identifier. Column names such as
// "Product Name" contain spaces.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// sqlType maps a column kind to its SQLite storage class.
func sqlType(k types.Kind) string {
	if k == types.KindNumeric {
		return "REAL NOT NULL"
	}
	return "TEXT NOT NULL"
}

// createTableSQL returns the CREATE TABLE statement for a schema.
func createTableSQL(s types.Schema) string {
	defs := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		defs[i] = quoteIdent(c.Name) + " " + sqlType(c.Kind)
	}
	return fmt.Sprintf("CREATE TABLE %s (\n    %s\n);", quoteIdent(s.Dataset), strings.Join(defs, ",\n    "))
}

// createIndexSQL returns the index on the schema key.
func createIndexSQL(s types.Schema) string {
	return fmt.Sprintf("CREATE INDEX %s ON %s(%s);",
		quoteIdent("idx_"+s.Dataset+"_key"), quoteIdent(s.Dataset), quoteIdent(s.Key))
}

// createSchema creates one table per dataset in dataset order.
func createSchema(db *sql.DB, schemas map[string]types.Schema) error {
	for _, name := range types.StandardDatasetNames {
		s := schemas[name]
		if _, err := db.Exec(createTableSQL(s)); err != nil {
			return fmt.Errorf("creating table %s: %w", name, err)
		}
		if s.Key == "" {
			continue
		}
		if _, err := db.Exec(createIndexSQL(s)); err != nil {
			return fmt.Errorf("creating index for %s: %w", name, err)
		}
	}
	return nil
}

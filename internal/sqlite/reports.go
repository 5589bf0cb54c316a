// This file answers the dashboard queries from the SQLite cache.
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

// query ensures the dataset, so the cache reflects the file, then runs fn
// against the cache under the dataset lock.
func (b *Backend) query(name string, fn func(db *sql.DB) error) error {
	ds, err := b.Dataset(name)
	if err != nil {
		return err
	}
	d := ds.(*dataset)
	return d.withLock(func() error {
		if _, err := d.ensureLocked(); err != nil {
			return err
		}
		return fn(b.db)
	})
}

// SalesSummary returns the sale count and revenue, rounded to cents.
func (b *Backend) SalesSummary() (types.SalesSummary, error) {
	var out types.SalesSummary
	err := b.query(types.DatasetSales, func(db *sql.DB) error {
		var total float64
		row := db.QueryRow(fmt.Sprintf("SELECT COUNT(*), TOTAL(%s) FROM %s",
			quoteIdent(types.ColTotal), quoteIdent(types.DatasetSales)))
		if err := row.Scan(&out.Count, &total); err != nil {
			return fmt.Errorf("summing sales: %w", err)
		}
		out.Revenue = decimal.NewFromFloat(total).Round(2)
		return nil
	})
	return out, err
}

// LowStock returns items whose stock is at or below their threshold,
// lowest stock first.
func (b *Backend) LowStock() ([]types.StockAlert, error) {
	var out []types.StockAlert
	err := b.query(types.DatasetStock, func(db *sql.DB) error {
		rows, err := db.Query(fmt.Sprintf(
			"SELECT %[1]s, %[2]s, %[3]s, %[4]s FROM %[5]s WHERE %[3]s <= %[4]s ORDER BY %[3]s ASC, %[1]s ASC",
			quoteIdent(types.ColBarcode), quoteIdent(types.ColProductName),
			quoteIdent(types.ColStock), quoteIdent(types.ColMinStock), quoteIdent(types.DatasetStock)))
		if err != nil {
			return fmt.Errorf("querying low stock: %w", err)
		}
		defer rows.Close()
		out = make([]types.StockAlert, 0)
		for rows.Next() {
			var a types.StockAlert
			if err := rows.Scan(&a.Barcode, &a.Name, &a.Stock, &a.MinStock); err != nil {
				return fmt.Errorf("scanning low stock: %w", err)
			}
			out = append(out, a)
		}
		return rows.Err()
	})
	return out, err
}

// RepairsByStatus counts repairs per status.
func (b *Backend) RepairsByStatus() (map[string]int, error) {
	out := make(map[string]int)
	err := b.query(types.DatasetRepairs, func(db *sql.DB) error {
		rows, err := db.Query(fmt.Sprintf("SELECT %[1]s, COUNT(*) FROM %[2]s GROUP BY %[1]s",
			quoteIdent(types.ColStatus), quoteIdent(types.DatasetRepairs)))
		if err != nil {
			return fmt.Errorf("counting repairs: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var status string
			var n int
			if err := rows.Scan(&status, &n); err != nil {
				return fmt.Errorf("scanning repair count: %w", err)
			}
			out[status] = n
		}
		return rows.Err()
	})
	return out, err
}

// RecentSales returns up to n sales, newest first. A negative n is treated
// as zero.
func (b *Backend) RecentSales(n int) ([]types.Record, error) {
	n = max(n, 0)
	var out []types.Record
	err := b.query(types.DatasetSales, func(db *sql.DB) error {
		rows, err := db.Query(fmt.Sprintf(
			"SELECT %s, %s, %s, %s, %s, %s FROM %s ORDER BY rowid DESC LIMIT ?",
			quoteIdent(types.ColInvoiceID), quoteIdent(types.ColTimestamp), quoteIdent(types.ColItem),
			quoteIdent(types.ColTotal), quoteIdent(types.ColStaff), quoteIdent(types.ColPayment),
			quoteIdent(types.DatasetSales)), n)
		if err != nil {
			return fmt.Errorf("querying recent sales: %w", err)
		}
		defer rows.Close()
		out = make([]types.Record, 0, n)
		for rows.Next() {
			var id, ts, item, staff, payment string
			var total float64
			if err := rows.Scan(&id, &ts, &item, &total, &staff, &payment); err != nil {
				return fmt.Errorf("scanning sale: %w", err)
			}
			out = append(out, types.Record{
				types.ColInvoiceID: id,
				types.ColTimestamp: ts,
				types.ColItem:      item,
				types.ColTotal:     total,
				types.ColStaff:     staff,
				types.ColPayment:   payment,
			})
		}
		return rows.Err()
	})
	return out, err
}

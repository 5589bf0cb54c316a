package types

import "github.com/shopspring/decimal"

// SalesSummary aggregates the sales dataset.
type SalesSummary struct {
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// StockAlert is an item at or below its reorder threshold.
type StockAlert struct {
	Barcode  string  `json:"barcode"`
	Name     string  `json:"name"`
	Stock    float64 `json:"stock"`
	MinStock float64 `json:"min_stock"`
}

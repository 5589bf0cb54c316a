package pos

import (
	"fmt"

	"github.com/mesh-intelligence/shopkeep/internal/auth"
	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

// Dashboard is the business summary shown to logged-in staff.
type Dashboard struct {
	Sales    types.SalesSummary `json:"sales"`
	LowStock []types.StockAlert `json:"low_stock"`
	Repairs  map[string]int     `json:"repairs"`
	Recent   []types.Record     `json:"recent_sales"`
}

// Dashboard gathers revenue, low-stock alerts, repair counts by status and
// the newest recent sales.
func (s *Service) Dashboard(sess *auth.Session, recent int) (*Dashboard, error) {
	if err := sess.RequireAuthenticated(); err != nil {
		return nil, err
	}
	if recent < 0 {
		recent = 0
	}
	var (
		d   Dashboard
		err error
	)
	if d.Sales, err = s.reports.SalesSummary(); err != nil {
		return nil, fmt.Errorf("sales summary: %w", err)
	}
	if d.LowStock, err = s.reports.LowStock(); err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	if d.Repairs, err = s.reports.RepairsByStatus(); err != nil {
		return nil, fmt.Errorf("repairs: %w", err)
	}
	if d.Recent, err = s.reports.RecentSales(recent); err != nil {
		return nil, fmt.Errorf("recent sales: %w", err)
	}
	return &d, nil
}

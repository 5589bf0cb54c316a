package pos

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/shopkeep/internal/auth"
	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

// Receipt describes a completed sale.
type Receipt struct {
	InvoiceID string          `json:"invoice_id"`
	Timestamp string          `json:"timestamp"`
	Lines     []CartLine      `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	Staff     string          `json:"staff"`
	Payment   string          `json:"payment"`
}

// Checkout records the cart as one sale by the session's user, takes the
// sold items out of stock and empties the cart. An empty payment means
// DefaultPayment.
//
// Once the sale is recorded the checkout stands: a failed stock update is
// logged and does not undo it.
func (s *Service) Checkout(sess *auth.Session, cart *Cart, payment string) (*Receipt, error) {
	if err := sess.RequireAuthenticated(); err != nil {
		return nil, err
	}
	if cart.Len() == 0 {
		return nil, types.ErrEmptyCart
	}
	payment = strings.TrimSpace(payment)
	if payment == "" {
		payment = DefaultPayment
	}

	sales, err := s.dataset(types.DatasetSales)
	if err != nil {
		return nil, err
	}
	stock, err := s.dataset(types.DatasetStock)
	if err != nil {
		return nil, err
	}
	id, err := newID(invoicePrefix)
	if err != nil {
		return nil, err
	}

	lines := cart.Lines()
	names := make([]string, len(lines))
	for i, l := range lines {
		names[i] = l.Name
	}
	receipt := &Receipt{
		InvoiceID: id,
		Timestamp: s.now().Format(TimestampLayout),
		Lines:     lines,
		Total:     cart.Total(),
		Staff:     sess.Username(),
		Payment:   payment,
	}

	if err := sales.Append(types.Record{
		types.ColInvoiceID: receipt.InvoiceID,
		types.ColTimestamp: receipt.Timestamp,
		types.ColItem:      strings.Join(names, ", "),
		types.ColTotal:     receipt.Total.InexactFloat64(),
		types.ColStaff:     receipt.Staff,
		types.ColPayment:   receipt.Payment,
	}); err != nil {
		return nil, fmt.Errorf("recording sale: %w", err)
	}
	cart.Clear()

	for _, q := range quantities(lines) {
		n, err := stock.Adjust(map[string]any{types.ColBarcode: q.barcode}, types.ColStock, -float64(q.count))
		switch {
		case err != nil:
			s.log.Error().Err(err).Str("invoice", id).Str("barcode", q.barcode).Msg("stock not decremented")
		case n == 0:
			s.log.Warn().Str("invoice", id).Str("barcode", q.barcode).Msg("sold item no longer in stock list")
		}
	}

	s.log.Info().Str("invoice", id).Str("staff", receipt.Staff).
		Str("total", receipt.Total.StringFixed(2)).Int("items", len(lines)).Msg("sale recorded")
	return receipt, nil
}

type quantity struct {
	barcode string
	count   int
}

// quantities counts lines per barcode, in first-scan order.
func quantities(lines []CartLine) []quantity {
	var out []quantity
	index := make(map[string]int)
	for _, l := range lines {
		if i, ok := index[l.Barcode]; ok {
			out[i].count++
			continue
		}
		index[l.Barcode] = len(out)
		out = append(out, quantity{barcode: l.Barcode, count: 1})
	}
	return out
}

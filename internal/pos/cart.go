package pos

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

// CartLine is one scanned item.
type CartLine struct {
	Barcode string          `json:"barcode"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
}

// Cart holds the items scanned for the current customer. The zero value
// is an empty cart.
type Cart struct {
	lines []CartLine
}

// Add appends a line.
func (c *Cart) Add(line CartLine) {
	c.lines = append(c.lines, line)
}

// Lines returns a copy of the scanned lines in scan order.
func (c *Cart) Lines() []CartLine {
	return slices.Clone(c.lines)
}

// Len returns the number of scanned lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Total sums the line prices.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Price)
	}
	return total
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Scan looks up barcode in stock and adds the item to cart.
// Returns ErrNotFound when no stock item carries the barcode.
func (s *Service) Scan(cart *Cart, barcode string) (CartLine, error) {
	code := strings.TrimSpace(barcode)
	if code == "" {
		return CartLine{}, fmt.Errorf("%w: empty barcode", types.ErrNotFound)
	}
	stock, err := s.dataset(types.DatasetStock)
	if err != nil {
		return CartLine{}, err
	}
	rows, err := stock.Fetch(map[string]any{types.ColBarcode: code})
	if err != nil {
		return CartLine{}, fmt.Errorf("scanning %s: %w", code, err)
	}
	if len(rows) == 0 {
		return CartLine{}, fmt.Errorf("%w: barcode %s", types.ErrNotFound, code)
	}
	line := CartLine{
		Barcode: code,
		Name:    cast.ToString(rows[0][types.ColProductName]),
		Price:   decimal.NewFromFloat(cast.ToFloat64(rows[0][types.ColSellingPrice])),
	}
	cart.Add(line)
	return line, nil
}

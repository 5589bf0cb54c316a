package pos

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/mesh-intelligence/shopkeep/internal/auth"
	"github.com/mesh-intelligence/shopkeep/internal/guardian"
	"github.com/mesh-intelligence/shopkeep/internal/sqlite"
	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

// AddItem adds one stock item. The barcode is required and must be new;
// unset columns take their defaults, so Min_Stock becomes 5.
func (s *Service) AddItem(sess *auth.Session, item types.Record) error {
	if err := sess.RequireAuthenticated(); err != nil {
		return err
	}
	code := strings.TrimSpace(cast.ToString(item[types.ColBarcode]))
	if code == "" {
		return fmt.Errorf("%w: barcode is required", types.ErrInvalidRecord)
	}
	stock, err := s.dataset(types.DatasetStock)
	if err != nil {
		return err
	}

	rec := item.Clone()
	rec[types.ColBarcode] = code
	if err := stock.AppendUnique(types.ColBarcode, rec); err != nil {
		return fmt.Errorf("adding %s: %w", code, err)
	}
	s.log.Info().Str("barcode", code).Str("staff", sess.Username()).Msg("stock item added")
	return nil
}

// Restock adds qty units to an existing item. Returns ErrNotFound for an
// unknown barcode.
func (s *Service) Restock(sess *auth.Session, barcode string, qty float64) error {
	if err := sess.RequireAuthenticated(); err != nil {
		return err
	}
	if qty <= 0 {
		return fmt.Errorf("%w: quantity must be positive", types.ErrInvalidRecord)
	}
	stock, err := s.dataset(types.DatasetStock)
	if err != nil {
		return err
	}
	code := strings.TrimSpace(barcode)
	n, err := stock.Adjust(map[string]any{types.ColBarcode: code}, types.ColStock, qty)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: barcode %s", types.ErrNotFound, code)
	}
	s.log.Info().Str("barcode", code).Float64("qty", qty).Str("staff", sess.Username()).Msg("restocked")
	return nil
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Added     int      `json:"added"`
	Skipped   int      `json:"skipped"`   // rows without a barcode or with one already stocked
	Ignored   []string `json:"ignored"`   // columns in the file that stock does not have
	Defaulted int      `json:"defaulted"` // numeric cells that were not numbers
}

// Import appends the items in a CSV file to stock. Only administrators may
// import. The file is healed like a backing store: missing columns take
// defaults, bad numbers become defaults and unknown columns are ignored.
// Rows with no barcode, or a barcode already stocked, are skipped. The
// accepted rows are written in one step.
func (s *Service) Import(sess *auth.Session, r io.Reader) (*ImportResult, error) {
	if err := sess.RequireRole(types.RoleAdmin); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading import: %w", err)
	}
	raw, err := sqlite.DecodeCSV(data, "import")
	if sqlite.IsEmpty(err) {
		return nil, fmt.Errorf("%w: import file is empty", types.ErrInvalidRecord)
	}
	if err != nil {
		return nil, err
	}

	stock, err := s.dataset(types.DatasetStock)
	if err != nil {
		return nil, err
	}
	healed, report := guardian.Reconcile(stock.Schema(), raw, guardian.Options{Strict: true})
	current, err := stock.Load()
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, current.Len())
	for i := range current.Rows {
		known[current.String(i, types.ColBarcode)] = true
	}

	res := &ImportResult{Ignored: report.Dropped, Defaulted: report.Coerced}
	var rows []types.Record
	for _, row := range healed.Rows {
		code := strings.TrimSpace(cast.ToString(row[types.ColBarcode]))
		if code == "" || known[code] {
			res.Skipped++
			continue
		}
		known[code] = true
		row[types.ColBarcode] = code
		rows = append(rows, row)
	}
	if err := stock.Append(rows...); err != nil {
		return nil, fmt.Errorf("importing stock: %w", err)
	}
	res.Added = len(rows)

	s.log.Info().Int("added", res.Added).Int("skipped", res.Skipped).
		Strs("ignored", res.Ignored).Str("staff", sess.Username()).Msg("bulk import")
	return res, nil
}

// Product is a storefront listing.
type Product struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	InStock     bool            `json:"in_stock"`
	ImageURL    string          `json:"image_url,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Catalog lists every stock item for the storefront. It needs no session.
func (s *Service) Catalog() ([]Product, error) {
	stock, err := s.dataset(types.DatasetStock)
	if err != nil {
		return nil, err
	}
	t, err := stock.Load()
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, t.Len())
	for i := range t.Rows {
		out = append(out, Product{
			Name:        t.String(i, types.ColProductName),
			Price:       decimal.NewFromFloat(t.Float(i, types.ColSellingPrice)),
			InStock:     t.Float(i, types.ColStock) > 0,
			ImageURL:    t.String(i, types.ColImageURL),
			Description: t.String(i, types.ColDescription),
		})
	}
	return out, nil
}

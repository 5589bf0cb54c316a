// Package pos implements the shop-floor operations: scanning and checkout,
// stock intake and bulk import, the repair tracker, the storefront catalog
// and the dashboard. Every operation goes through the guarded datasets of a
// types.Store, so it always sees healed data.
package pos

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

// Layouts and defaults written into new records.
const (
	TimestampLayout = "2006-01-02 15:04"
	DefaultPayment  = "Cash/MoMo"

	invoicePrefix = "INV-"
	repairPrefix  = "REP-"
	idSuffixLen   = 10
)

// Reporter answers the dashboard queries.
type Reporter interface {
	SalesSummary() (types.SalesSummary, error)
	LowStock() ([]types.StockAlert, error)
	RepairsByStatus() (map[string]int, error)
	RecentSales(n int) ([]types.Record, error)
}

// Service runs shop operations against a store.
type Service struct {
	store   types.Store
	reports Reporter
	log     zerolog.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for sale and intake events.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService returns a Service over an attached store.
func NewService(store types.Store, reports Reporter, opts ...Option) *Service {
	s := &Service{
		store:   store,
		reports: reports,
		log:     zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) dataset(name string) (types.Dataset, error) {
	d, err := s.store.Dataset(name)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return d, nil
}

// newID returns prefix followed by the random tail of a UUID v7, upper-cased.
func newID(prefix string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating id: %w", err)
	}
	hex := strings.ReplaceAll(id.String(), "-", "")
	return prefix + strings.ToUpper(hex[len(hex)-idSuffixLen:]), nil
}

package pos

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/shopkeep/internal/auth"
	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

// LogRepair records a device brought in for repair and returns its ID.
// New repairs are Received with no price.
func (s *Service) LogRepair(sess *auth.Session, phone, device, issue string) (string, error) {
	if err := sess.RequireAuthenticated(); err != nil {
		return "", err
	}
	repairs, err := s.dataset(types.DatasetRepairs)
	if err != nil {
		return "", err
	}
	id, err := newID(repairPrefix)
	if err != nil {
		return "", err
	}
	if err := repairs.Append(types.Record{
		types.ColRepairID:  id,
		types.ColCustPhone: strings.TrimSpace(phone),
		types.ColDevice:    strings.TrimSpace(device),
		types.ColIssue:     strings.TrimSpace(issue),
		types.ColStatus:    types.RepairStatusReceived,
		types.ColPrice:     0.0,
	}); err != nil {
		return "", fmt.Errorf("logging repair: %w", err)
	}
	s.log.Info().Str("repair", id).Str("staff", sess.Username()).Msg("repair logged")
	return id, nil
}

// SetRepairStatus moves a repair to status and, when price is valid, sets
// its price. Returns ErrNotFound for an unknown repair.
func (s *Service) SetRepairStatus(sess *auth.Session, id, status string, price decimal.NullDecimal) error {
	if err := sess.RequireAuthenticated(); err != nil {
		return err
	}
	status = strings.TrimSpace(status)
	if status == "" {
		return fmt.Errorf("%w: status is required", types.ErrInvalidRecord)
	}
	changes := types.Record{types.ColStatus: status}
	if price.Valid {
		if price.Decimal.IsNegative() {
			return fmt.Errorf("%w: price must not be negative", types.ErrInvalidRecord)
		}
		changes[types.ColPrice] = price.Decimal.InexactFloat64()
	}

	repairs, err := s.dataset(types.DatasetRepairs)
	if err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	n, err := repairs.Update(map[string]any{types.ColRepairID: id}, changes)
	if err != nil {
		return fmt.Errorf("updating repair %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: repair %s", types.ErrNotFound, id)
	}
	s.log.Info().Str("repair", id).Str("status", status).Str("staff", sess.Username()).Msg("repair updated")
	return nil
}

package types

import (
	"fmt"
	"strings"
)

// HealReport describes what one reconciliation changed.
type HealReport struct {
	Dataset string `json:"dataset"`

	// Created is set when the backing store was absent (or empty) and a new
	// one was written from the schema.
	Created bool `json:"created"`

	// Recovered is set when the store could not be parsed and was treated
	// as missing. Its prior content is gone.
	Recovered bool `json:"recovered"`

	Restored   []string `json:"restored,omitempty"` // Declared columns that were missing and filled with defaults.
	Dropped    []string `json:"dropped,omitempty"`  // Legacy columns removed in strict mode.
	Coerced    int      `json:"coerced"`            // Numeric cells replaced by their column default.
	Normalized int      `json:"normalized"`         // Identity cells rewritten by trimming or uppercasing.
	Appended   int      `json:"appended"`           // Required records (the administrator) added.

	// Persisted is set when the backing store was written.
	Persisted bool `json:"persisted"`
}

// Repairs returns the restored column names for display to the operator.
func (r HealReport) Repairs() []string {
	return r.Restored
}

// Structural reports whether the reconciliation changed the stored shape or
// content in a way that must be written through.
func (r HealReport) Structural() bool {
	return r.Created || r.Recovered || len(r.Restored) > 0 || len(r.Dropped) > 0 || r.Appended > 0
}

// Notice renders a one-line operator message, or "" when nothing needs
// telling.
func (r HealReport) Notice() string {
	var parts []string
	if r.Recovered {
		parts = append(parts, "unreadable store was recreated")
	} else if r.Created {
		parts = append(parts, "store created")
	}
	if len(r.Restored) > 0 {
		parts = append(parts, "recovered missing columns "+strings.Join(r.Restored, ", "))
	}
	if len(r.Dropped) > 0 {
		parts = append(parts, "dropped legacy columns "+strings.Join(r.Dropped, ", "))
	}
	if r.Appended > 0 {
		parts = append(parts, fmt.Sprintf("seeded %d required record(s)", r.Appended))
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("%s: %s", r.Dataset, strings.Join(parts, "; "))
}

// Result is what Store.Ensure returns: the healed table and its report.
type Result struct {
	Table  *Table     `json:"-"`
	Report HealReport `json:"report"`

	// GeneratedPassword is set when the administrator was seeded without a
	// configured password and one was generated. It is shown once.
	GeneratedPassword string `json:"-"`
}

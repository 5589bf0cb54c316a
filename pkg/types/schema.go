package types

import "strings"

// Kind is the semantic type of a column.
type Kind string

// Column kinds. Numeric cells are held as float64, text cells as string.
const (
	KindNumeric Kind = "numeric"
	KindText    Kind = "text"
)

// TextSentinel is the default for text columns that declare no default.
const TextSentinel = "N/A"

// Column declares one column of a Schema.
type Column struct {
	Name    string
	Kind    Kind
	Default any // nil means the kind default; see DefaultValue.
}

// DefaultValue returns the value used to fill a missing or uncoercible cell.
func (c Column) DefaultValue() any {
	if c.Default != nil {
		return c.Default
	}
	return DefaultValue(c.Kind)
}

// DefaultValue returns the kind-based default: 0.0 for numeric and the
// TextSentinel for text.
func DefaultValue(kind Kind) any {
	switch kind {
	case KindNumeric:
		return 0.0
	default:
		return TextSentinel
	}
}

// Schema is the fixed, ordered column declaration for a Dataset.
type Schema struct {
	Dataset string   // Logical name, e.g. "sales".
	File    string   // Backing file name inside the data directory.
	Columns []Column // Declared columns in header order.

	// Key names the column used to match records (uniqueness is a
	// convention, not enforced).
	Key string

	// Identity names a column whose values are trimmed and uppercased on
	// load so equality lookups ignore case and surrounding whitespace.
	Identity string
}

// Names returns the declared column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the declaration for name.
func (s Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// NormalizeIdentity trims and uppercases an identity value.
func NormalizeIdentity(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

package types

// Store gives backend-agnostic access to the shop datasets. Callers attach
// with a Config, reach datasets by name, and detach when done.
type Store interface {
	// Attach creates the data directory if needed and ensures every
	// standard dataset. Returns ErrAlreadyAttached if already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent.
	Detach() error

	// Ensure reconciles one dataset against its schema and returns the
	// healed table with a report of what was repaired.
	Ensure(name string) (*Result, error)

	// Dataset returns the named dataset.
	// Returns ErrDatasetNotFound if the name is not a standard dataset.
	Dataset(name string) (Dataset, error)
}

// Dataset provides read-modify-write access to one backing store. Every
// operation ensures the store first and holds the dataset lock for the
// whole cycle, so concurrent writers cannot lose each other's updates.
type Dataset interface {
	Name() string
	Schema() Schema

	// Load returns the ensured table.
	Load() (*Table, error)

	// Fetch returns the rows whose cells equal every filter value. An
	// empty filter returns all rows.
	Fetch(filter map[string]any) ([]Record, error)

	// Append adds rows in one write. Missing columns take their defaults.
	// Returns ErrUnknownColumn or ErrInvalidRecord on bad input, in which
	// case no row is stored.
	Append(recs ...Record) error

	// AppendUnique adds rec unless a row already holds the same value in
	// the key column. The check and the write share one locked cycle.
	// Returns ErrDuplicateKey on a collision.
	AppendUnique(key string, rec Record) error

	// Update applies changes to every row matching filter and returns the
	// number of rows changed.
	Update(filter map[string]any, changes Record) (int, error)

	// Adjust adds delta to a numeric column of every row matching filter
	// and returns the number of rows changed.
	Adjust(filter map[string]any, column string, delta float64) (int, error)

	// Delete removes every row matching filter and returns the count.
	Delete(filter map[string]any) (int, error)

	// Reset recreates the store from the schema, discarding all rows.
	Reset() error
}

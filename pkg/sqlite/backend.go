// Package sqlite provides the public API for the shopkeep storage backend.
// This package exposes the factory function for creating backends while
// keeping implementation details internal.
package sqlite

import (
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/shopkeep/internal/sqlite"
	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

// NewBackend creates a new backend instance that logs heal notices to log.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	store := sqlite.NewBackend(zerolog.Nop())
//	err := store.Attach(types.Config{DataDir: "."})
//	defer store.Detach()
//	res, err := store.Ensure(types.DatasetSales)
func NewBackend(log zerolog.Logger) types.Store {
	return sqlite.NewBackend(sqlite.WithLogger(log))
}

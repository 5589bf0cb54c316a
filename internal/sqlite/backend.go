// Package sqlite implements the shopkeep storage backend. CSV files in the
// data directory are the source of truth; a SQLite database rebuilt from
// them on every Attach serves the reporting queries.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

// cacheFile is the SQLite query cache inside the data directory.
const cacheFile = "shop.db"

// Backend implements types.Store over CSV backing stores with a SQLite
// query cache.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	dataDir  string
	db       *sql.DB
	log      zerolog.Logger
	datasets map[string]*dataset
	startup  []*types.Result

	// genMu guards generated, the administrator password seeded since the
	// last TakeGeneratedPassword.
	genMu     sync.Mutex
	generated string
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used for heal notices.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Backend) { b.log = log }
}

// NewBackend creates a new backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		log:      zerolog.Nop(),
		datasets: make(map[string]*dataset),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist, rebuilds the SQLite cache, and
// ensures every standard dataset.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	// The cache is derived state; start from a fresh file every time.
	dbPath := filepath.Join(dataDir, cacheFile)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(1)

	schemas := types.StandardSchemas()
	if err := createSchema(db, schemas); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.config = config
	b.dataDir = dataDir
	b.startup = nil
	for _, name := range types.StandardDatasetNames {
		b.datasets[name] = &dataset{name: name, schema: schemas[name], backend: b}
	}

	for _, name := range types.StandardDatasetNames {
		d := b.datasets[name]
		d.mu.Lock()
		res, err := d.ensureLocked()
		d.mu.Unlock()
		if err != nil {
			db.Close()
			b.db = nil
			b.datasets = make(map[string]*dataset)
			return fmt.Errorf("ensure %s: %w", name, err)
		}
		b.startup = append(b.startup, res)
	}

	b.attached = true
	b.log.Debug().Str("data_dir", dataDir).Bool("strict", config.Strict).Msg("store attached")
	return nil
}

// Detach releases all resources held by the backend.
// After Detach, all operations return ErrStoreDetached.
// Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	b.datasets = make(map[string]*dataset)
	return nil
}

// Dataset returns the named dataset.
// Returns ErrDatasetNotFound if the name is not recognized.
// Returns ErrStoreDetached if the backend is not attached.
func (b *Backend) Dataset(name string) (types.Dataset, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	d, ok := b.datasets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrDatasetNotFound, name)
	}
	return d, nil
}

// Ensure reconciles the named dataset and returns the healed table.
func (b *Backend) Ensure(name string) (*types.Result, error) {
	ds, err := b.Dataset(name)
	if err != nil {
		return nil, err
	}
	d := ds.(*dataset)

	var res *types.Result
	err = d.withLock(func() error {
		var err error
		res, err = d.ensureLocked()
		return err
	})
	return res, err
}

// Startup returns the results of the reconciliations run by Attach, in
// dataset order.
func (b *Backend) Startup() []*types.Result {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.startup
}

// TakeGeneratedPassword returns the administrator password generated by
// the most recent seeding and forgets it. It returns "" when no password
// was generated since the last call. Any operation can seed the
// administrator (Attach, Ensure, Reset, or a mutation that recovers an
// unreadable users store), so callers check after each one.
func (b *Backend) TakeGeneratedPassword() string {
	b.genMu.Lock()
	defer b.genMu.Unlock()
	pw := b.generated
	b.generated = ""
	return pw
}

func (b *Backend) noteGenerated(pw string) {
	b.genMu.Lock()
	b.generated = pw
	b.genMu.Unlock()
}

// DataDir returns the directory holding the backing stores.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dataDir
}

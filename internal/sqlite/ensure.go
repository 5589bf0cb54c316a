// This file wraps the guardian reconciliation with backing-store I/O.
package sqlite

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/mesh-intelligence/shopkeep/internal/guardian"
	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

// ensureLocked loads the dataset's backing store, reconciles it against the
// schema, writes it back when the shape changed, and refreshes the cache.
// The caller must hold d.mu.
//
// A missing or empty store is created from the schema. An unreadable store
// is treated the same way unless the backend is strict, in which case the
// parse error is returned and the file is left alone.
func (d *dataset) ensureLocked() (*types.Result, error) {
	b := d.backend
	path := d.path()

	raw, err := readCSV(path)
	var created, recovered bool
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, errEmptyStore):
		created = true
	case errors.Is(err, types.ErrParseFailure):
		if b.config.Strict {
			return nil, err
		}
		b.log.Warn().Err(err).Str("dataset", d.name).Str("path", path).
			Msg("unreadable store treated as missing, prior content discarded")
		recovered = true
	default:
		return nil, err
	}

	opts := guardian.Options{Strict: b.config.Strict}
	healed, report := guardian.Reconcile(d.schema, raw, opts)

	var generated string
	if d.name == types.DatasetUsers && !guardian.Contains(d.schema, healed, b.config.Admin.Username) {
		admin, pw, err := b.adminRecord()
		if err != nil {
			return nil, err
		}
		generated = pw
		if pw != "" {
			b.noteGenerated(pw)
		}
		opts.Required = []types.Record{admin}
		var seeded types.HealReport
		healed, seeded = guardian.Reconcile(d.schema, healed, opts)
		report.Appended += seeded.Appended
	}

	report.Created = created && !recovered
	report.Recovered = recovered

	if report.Structural() {
		if err := writeCSV(path, healed); err != nil {
			return nil, fmt.Errorf("persisting %s: %w", d.name, err)
		}
		report.Persisted = true
	}
	if err := b.refreshCache(d.schema, healed); err != nil {
		return nil, err
	}

	if notice := report.Notice(); notice != "" {
		b.log.Info().Str("dataset", d.name).Strs("restored", report.Restored).
			Bool("persisted", report.Persisted).Msg(notice)
	}
	if report.Coerced > 0 {
		b.log.Debug().Str("dataset", d.name).Int("cells", report.Coerced).Msg("numeric cells defaulted")
	}
	if generated != "" {
		b.log.Warn().Str("user", types.NormalizeIdentity(b.config.Admin.Username)).
			Msg("administrator seeded with a generated password")
	}

	return &types.Result{Table: healed, Report: report, GeneratedPassword: generated}, nil
}

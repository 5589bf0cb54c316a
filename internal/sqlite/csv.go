// This file reads and writes the CSV backing stores.
package sqlite

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cast"

	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

// errEmptyStore marks a zero-byte store. It is handled like a missing one.
var errEmptyStore = errors.New("backing store is empty")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readCSV loads a backing store. A missing file yields an error wrapping
// fs.ErrNotExist; see DecodeCSV for the rest.
func readCSV(path string) (*types.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return DecodeCSV(data, filepath.Base(path))
}

// DecodeCSV parses delimited text with a header row. Every cell is returned
// as a string; the guardian coerces them. Blank input yields errEmptyStore
// and malformed content types.ErrParseFailure. Rows shorter than the header
// are padded with blanks; longer rows are malformed.
func DecodeCSV(data []byte, name string) (*types.Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errEmptyStore
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrParseFailure, name, err)
	}

	if len(records) == 0 {
		return nil, errEmptyStore
	}

	header := records[0]
	seen := make(map[string]bool, len(header))
	for _, col := range header {
		if seen[col] {
			return nil, fmt.Errorf("%w: %s: duplicate column %q", types.ErrParseFailure, name, col)
		}
		seen[col] = true
	}

	t := types.NewTable(header)
	for i, rec := range records[1:] {
		if len(rec) > len(header) {
			return nil, fmt.Errorf("%w: %s: row %d has %d fields, header has %d",
				types.ErrParseFailure, name, i+2, len(rec), len(header))
		}
		row := make(types.Record, len(header))
		for j, col := range header {
			if j < len(rec) {
				row[col] = rec[j]
			} else {
				row[col] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// IsEmpty reports whether err came from decoding blank input.
func IsEmpty(err error) bool {
	return errors.Is(err, errEmptyStore)
}

// writeCSV atomically writes a table using the temp-file, fsync, rename
// pattern.
func writeCSV(path string, t *types.Table) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".csv-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	bw := bufio.NewWriter(tmp)
	w := csv.NewWriter(bw)
	if err := w.Write(t.Columns); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing header: %w", err)
	}
	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, name := range t.Columns {
			rec[i] = formatCell(row[name])
		}
		if err := w.Write(rec); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing csv: %w", err)
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// formatCell renders a cell. Floats use the shortest representation that
// round-trips.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return cast.ToString(v)
	}
}

// Package csvstore persists the stock catalog as a CSV file.
package csvstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/disaster-relief/internal/domain"
)

const utf8BOM = "\ufeff"

// Store reads and rewrites one CSV file. It is not safe for concurrent
// writers; callers serialize load-modify-save cycles.
type Store struct {
	path   string
	logger *slog.Logger
}

// New creates a Store backed by the file at path.
func New(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load parses the whole file. Every row is validated before the catalog is
// returned; see domain.ParseCatalog.
func (s *Store) Load(ctx context.Context) (*domain.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open stock file: %w", err)
	}
	defer f.Close()

	header, rows, err := readAll(f)
	if err != nil {
		return nil, err
	}

	catalog, err := domain.ParseCatalog(header, rows)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.path, err)
	}

	s.logger.Debug("stock catalog loaded", "path", s.path, "records", catalog.Len())
	return catalog, nil
}

func readAll(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // row width is checked per cell by the domain parser

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read stock csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, &domain.MalformedDataError{Column: "*", Reason: "file has no header row"}
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	return header, records[1:], nil
}

// Save rewrites the whole file with the catalog's contents. The new content
// goes to a temporary file in the same directory which then replaces the
// old file by rename, so a failed save leaves the previous file in place.
func (s *Store) Save(ctx context.Context, catalog *domain.Catalog) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	header, rows, err := catalog.Rows()
	if err != nil {
		return fmt.Errorf("render catalog: %w", err)
	}

	dir, base := filepath.Split(s.path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp stock file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err = w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err = w.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp stock file: %w", err)
	}
	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(s.path); statErr == nil {
		mode = info.Mode().Perm()
	} else if !errors.Is(statErr, os.ErrNotExist) {
		err = statErr
		return fmt.Errorf("stat stock file: %w", err)
	}
	if err = tmp.Chmod(mode); err != nil {
		return fmt.Errorf("chmod temp stock file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp stock file: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace stock file: %w", err)
	}

	s.logger.Debug("stock catalog saved", "path", s.path, "records", len(rows))
	return nil
}

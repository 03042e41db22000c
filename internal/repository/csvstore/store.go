// Package csvstore backs the repository interfaces with flat CSV tables:
// one file per table, header row, one record per line. Reads load the
// whole table; writes rewrite the backing file wholesale. There is no
// partial-write atomicity and no cross-process locking; the store is
// correct only for the single-user demo deployment it serves. A process
// wide mutex serializes the HTTP handlers against the reminder worker.
package csvstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"
)

// Table file names under the data directory.
const (
	PatientsTable     = "patients.csv"
	DoctorsTable      = "doctors.csv"
	SlotsTable        = "slots.csv"
	AppointmentsTable = "appointments.csv"
)

type Store struct {
	dir string
	mu  sync.Mutex
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the data directory backing this store.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(table string) string {
	return filepath.Join(s.dir, table)
}

// load reads every row of a table. A missing or empty file is an empty
// table; anything else unreadable is a data-integrity error.
func load[T any](s *Store, table string) ([]*T, error) {
	f, err := os.Open(s.path(table))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open table %s: %w", table, err)
	}
	defer f.Close()

	var rows []*T
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read table %s: %w", table, err)
	}
	return rows, nil
}

// save rewrites a table wholesale, last write wins.
func save[T any](s *Store, table string, rows []*T) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	f, err := os.Create(s.path(table))
	if err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("failed to write table %s: %w", table, err)
	}
	return nil
}

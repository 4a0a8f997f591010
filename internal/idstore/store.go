package idstore

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/gofrs/flock"

	"formatrisk/internal/tabular"
)

// Store is the persisted set of identification records for one accession.
// Records are kept sorted by path; records for the same path keep the order
// the identification tool reported them in.
type Store struct {
	records []Record
	exists  bool
}

// New returns an in-memory store holding records.
func New(records ...Record) *Store {
	s := &Store{}
	s.Add(records...)
	return s
}

// Load reads the store at path. A missing file yields an empty store whose
// Exists reports false; that is how the synchronizer decides on bulk mode.
func Load(path string) (*Store, []tabular.Repair, error) {
	table, repairs, err := tabular.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Store{}, nil, nil
		}
		return nil, repairs, fmt.Errorf("read identification store: %w", err)
	}
	if err := table.Require(Header...); err != nil {
		return nil, repairs, err
	}
	records := make([]Record, 0, len(table.Rows))
	for i, row := range table.Rows {
		rec, err := recordFromRow(table, row, i+2)
		if err != nil {
			return nil, repairs, err
		}
		records = append(records, rec)
	}
	s := New(records...)
	s.exists = true
	return s, repairs, nil
}

// Exists reports whether the store was loaded from a file.
func (s *Store) Exists() bool {
	return s != nil && s.exists
}

// Len returns the number of records.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Records returns a copy of the records in canonical order.
func (s *Store) Records() []Record {
	if s == nil {
		return nil
	}
	return append([]Record(nil), s.records...)
}

// Paths returns the set of distinct file paths in the store.
func (s *Store) Paths() map[string]struct{} {
	paths := make(map[string]struct{})
	if s == nil {
		return paths
	}
	for _, rec := range s.records {
		paths[rec.Path] = struct{}{}
	}
	return paths
}

// Add inserts records, skipping any whose (path, format name) identity is
// already present. A path may carry several formats but each format once.
func (s *Store) Add(records ...Record) {
	seen := make(map[identity]struct{}, len(s.records)+len(records))
	for _, rec := range s.records {
		seen[identityOf(rec)] = struct{}{}
	}
	for _, rec := range records {
		id := identityOf(rec)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		s.records = append(s.records, rec)
	}
	sort.SliceStable(s.records, func(i, j int) bool {
		return s.records[i].Path < s.records[j].Path
	})
}

// RemovePaths drops every record for the given paths and returns how many
// records were removed.
func (s *Store) RemovePaths(paths map[string]struct{}) int {
	if len(paths) == 0 {
		return 0
	}
	kept := s.records[:0]
	removed := 0
	for _, rec := range s.records {
		if _, drop := paths[rec.Path]; drop {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	s.records = kept
	return removed
}

// Save writes the store to path, replacing any previous file.
func (s *Store) Save(path string) error {
	rows := make([][]string, 0, len(s.records))
	for _, rec := range s.records {
		rows = append(rows, rec.Row())
	}
	if err := tabular.Write(path, Header, rows); err != nil {
		return fmt.Errorf("save identification store: %w", err)
	}
	s.exists = true
	return nil
}

type identity struct {
	path string
	name string
}

func identityOf(rec Record) identity {
	return identity{path: rec.Path, name: rec.FormatName}
}

// ErrLocked is returned when another process holds the store lock.
var ErrLocked = errors.New("identification store is locked by another run")

// Lock takes an exclusive, non-blocking lock beside the store file. Callers
// must Unlock the returned lock when the run ends.
func Lock(storePath string) (*flock.Flock, error) {
	lock := flock.New(storePath + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire store lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, lock.Path())
	}
	return lock, nil
}

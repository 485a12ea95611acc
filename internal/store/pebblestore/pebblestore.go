// Package pebblestore implements the Store contract on top of a pebble LSM
// database, giving the write-retention engine a durable backing store.
//
// Every cell becomes one pebble key: table 0x00 row 0x00 family 0x00
// qualifier. Encoded row keys never contain 0x00 (the codec reserves it), so
// the layout is unambiguous and pebble's sorted iteration yields exactly the
// ascending row order the Store contract promises.
package pebblestore

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/rs/zerolog/log"

	"github.com/coltable/coltable-db/internal/coltable"
	"github.com/coltable/coltable-db/internal/constraint"
	"github.com/coltable/coltable-db/internal/store"
)

const sep = byte(0x00)

// Store is a pebble-backed column-family store.
type Store struct {
	dir string
	fs  vfs.FS

	mu sync.Mutex
	db *pebble.DB
}

type Config struct {
	// Dir is the pebble data directory.
	Dir string
	// FS overrides the filesystem; tests pass vfs.NewMem().
	FS vfs.FS
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Dir == "" {
		errGrp = append(errGrp, errors.New("data directory is required"))
	}
	return errors.Join(errGrp...)
}

// New creates a pebble store. The database is opened by Start.
func New(cfg *Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Store{dir: cfg.Dir, fs: cfg.FS}, nil
}

// Start opens the pebble database.
func (s *Store) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return nil
	}
	opts := &pebble.Options{}
	if s.fs != nil {
		opts.FS = s.fs
	}
	db, err := pebble.Open(s.dir, opts)
	if err != nil {
		return fmt.Errorf("failed to open pebble database: %w", err)
	}
	s.db = db
	log.Debug().Str("dir", s.dir).Msg("pebble store opened")
	return nil
}

// Stop closes the database.
func (s *Store) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Name implements app.Dependency.
func (s *Store) Name() string { return "Pebble Store" }

func cellKey(table, row, family, qualifier string) []byte {
	out := make([]byte, 0, len(table)+len(row)+len(family)+len(qualifier)+3)
	out = append(out, table...)
	out = append(out, sep)
	out = append(out, row...)
	out = append(out, sep)
	out = append(out, family...)
	out = append(out, sep)
	out = append(out, qualifier...)
	return out
}

// prefixKey builds the iteration lower bound for the given segments; each
// present segment is terminated with the separator.
func prefixKey(segments ...string) []byte {
	var out []byte
	for _, seg := range segments {
		out = append(out, seg...)
		out = append(out, sep)
	}
	return out
}

// prefixUpper is the exclusive upper bound of everything prefixKey covers:
// the final separator bumped by one.
func prefixUpper(segments ...string) []byte {
	out := prefixKey(segments...)
	out[len(out)-1] = sep + 1
	return out
}

// rowBounds translates a row-key constraint into pebble iterator bounds for
// one table.
func rowBounds(table string, c *constraint.Constraint) (lower, upper []byte) {
	lower = prefixKey(table)
	if start, ok := c.Start(); ok {
		lower = append(lower, start...)
	}
	if end, ok := c.End(); ok {
		upper = append(prefixKey(table), end...)
		upper = append(upper, sep+1)
	} else {
		upper = prefixUpper(table)
	}
	return lower, upper
}

func splitCellKey(key []byte) (row, family, qualifier string, ok bool) {
	parts := bytes.SplitN(key, []byte{sep}, 4)
	if len(parts) != 4 {
		return "", "", "", false
	}
	return string(parts[1]), string(parts[2]), string(parts[3]), true
}

func (s *Store) iter(lower, upper []byte) (*pebble.Iterator, error) {
	return s.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
}

// HasTable reports whether any cell of the table exists.
func (s *Store) HasTable(_ *coltable.Meta, table string) (bool, error) {
	return s.anyInRange(prefixKey(table), prefixUpper(table))
}

// Exists reports whether the row holds any data.
func (s *Store) Exists(_ *coltable.Meta, table, row string) (bool, error) {
	return s.anyInRange(prefixKey(table, row), prefixUpper(table, row))
}

// ExistsFamily reports whether the row holds data in the given family.
func (s *Store) ExistsFamily(_ *coltable.Meta, table, row, family string) (bool, error) {
	return s.anyInRange(prefixKey(table, row, family), prefixUpper(table, row, family))
}

func (s *Store) anyInRange(lower, upper []byte) (bool, error) {
	it, err := s.iter(lower, upper)
	if err != nil {
		return false, err
	}
	defer it.Close()
	return it.First(), it.Error()
}

// Get returns every qualifier of one family of one row.
func (s *Store) Get(meta *coltable.Meta, table, row, family string) (coltable.FamilyData, error) {
	return s.GetRange(meta, table, row, family, nil)
}

// GetRange returns the qualifiers of one family that fall inside c.
func (s *Store) GetRange(_ *coltable.Meta, table, row, family string, c *constraint.Constraint) (coltable.FamilyData, error) {
	lower := prefixKey(table, row, family)
	upper := prefixUpper(table, row, family)
	if start, ok := c.Start(); ok {
		lower = append(prefixKey(table, row, family), start...)
	}
	if end, ok := c.End(); ok {
		upper = append(prefixKey(table, row, family), end...)
		upper = append(upper, sep)
	}

	it, err := s.iter(lower, upper)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	out := make(coltable.FamilyData)
	for valid := it.First(); valid; valid = it.Next() {
		_, _, qualifier, ok := splitCellKey(it.Key())
		if !ok {
			continue
		}
		v, err := it.ValueAndErr()
		if err != nil {
			return nil, err
		}
		b := make([]byte, len(v))
		copy(b, v)
		out[qualifier] = b
	}
	return out, it.Error()
}

// GetFamilies returns the requested families of one row; nil selects all.
func (s *Store) GetFamilies(_ *coltable.Meta, table, row string, families []string) (map[string]coltable.FamilyData, error) {
	it, err := s.iter(prefixKey(table, row), prefixUpper(table, row))
	if err != nil {
		return nil, err
	}
	defer it.Close()

	wanted := familySet(families)
	out := make(map[string]coltable.FamilyData)
	for valid := it.First(); valid; valid = it.Next() {
		_, family, qualifier, ok := splitCellKey(it.Key())
		if !ok {
			continue
		}
		if wanted != nil {
			if _, ok := wanted[family]; !ok {
				continue
			}
		}
		v, err := it.ValueAndErr()
		if err != nil {
			return nil, err
		}
		fd, ok := out[family]
		if !ok {
			fd = make(coltable.FamilyData)
			out[family] = fd
		}
		b := make([]byte, len(v))
		copy(b, v)
		fd[qualifier] = b
	}
	return out, it.Error()
}

func familySet(families []string) map[string]struct{} {
	if families == nil {
		return nil
	}
	set := make(map[string]struct{}, len(families))
	for _, f := range families {
		set[f] = struct{}{}
	}
	return set
}

// StoreChanges applies upserts, then removals, then increments in one atomic
// batch. Increments read through the batch so they observe upserts from the
// same call.
func (s *Store) StoreChanges(_ *coltable.Meta, table, row string, changed coltable.ColumnChanges, removed coltable.ColumnRemovals, increments coltable.ColumnIncrements) error {
	batch := s.db.NewIndexedBatch()
	defer batch.Close()

	for family, quals := range changed {
		for q, v := range quals {
			if err := batch.Set(cellKey(table, row, family, q), v, nil); err != nil {
				return err
			}
		}
	}
	for family, quals := range removed {
		for q := range quals {
			if err := batch.Delete(cellKey(table, row, family, q), nil); err != nil {
				return err
			}
		}
	}
	for family, quals := range increments {
		for q, delta := range quals {
			key := cellKey(table, row, family, q)
			current, closer, err := batch.Get(key)
			if err != nil && !errors.Is(err, pebble.ErrNotFound) {
				return err
			}
			next, incErr := store.ApplyIncrement(current, delta)
			if closer != nil {
				_ = closer.Close()
			}
			if incErr != nil {
				return fmt.Errorf("increment %s:%s/%s: %w", table, row, q, incErr)
			}
			if err := batch.Set(key, next, nil); err != nil {
				return err
			}
		}
	}
	return batch.Commit(pebble.Sync)
}

// Delete removes every cell of the row.
func (s *Store) Delete(_ *coltable.Meta, table, row string) error {
	return s.db.DeleteRange(prefixKey(table, row), prefixUpper(table, row), pebble.Sync)
}

// Count returns the number of distinct rows inside c.
func (s *Store) Count(_ *coltable.Meta, table string, c *constraint.Constraint) (int64, error) {
	lower, upper := rowBounds(table, c)
	it, err := s.iter(lower, upper)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	var n int64
	last := ""
	seen := false
	for valid := it.First(); valid; valid = it.Next() {
		row, _, _, ok := splitCellKey(it.Key())
		if !ok {
			continue
		}
		if !seen || row != last {
			n++
			last, seen = row, true
		}
	}
	return n, it.Error()
}

// Scan returns matching rows in ascending key order, reading cells lazily
// from a pebble iterator as the caller advances.
func (s *Store) Scan(_ *coltable.Meta, table string, c *constraint.Constraint, limit int, families []string) (store.Rows, error) {
	lower, upper := rowBounds(table, c)
	it, err := s.iter(lower, upper)
	if err != nil {
		return nil, err
	}
	return &rowIter{
		iter:     it,
		families: familySet(families),
		limit:    limit,
		pending:  it.First(),
	}, nil
}

type rowIter struct {
	iter     *pebble.Iterator
	families map[string]struct{}
	limit    int
	served   int
	pending  bool
	cur      *coltable.Row
	err      error
	closed   bool
}

func (r *rowIter) Next() bool {
	if r.closed || r.err != nil {
		return false
	}
	for r.pending && (r.limit <= 0 || r.served < r.limit) {
		rowKey, _, _, ok := splitCellKey(r.iter.Key())
		if !ok {
			r.pending = r.iter.Next()
			continue
		}
		row := &coltable.Row{Key: rowKey, Columns: make(map[string]coltable.FamilyData)}
		for r.pending {
			key, family, qualifier, ok := splitCellKey(r.iter.Key())
			if !ok || key != rowKey {
				break
			}
			if r.families == nil || contains(r.families, family) {
				v, err := r.iter.ValueAndErr()
				if err != nil {
					r.err = err
					return false
				}
				fd, ok := row.Columns[family]
				if !ok {
					fd = make(coltable.FamilyData)
					row.Columns[family] = fd
				}
				b := make([]byte, len(v))
				copy(b, v)
				fd[qualifier] = b
			}
			r.pending = r.iter.Next()
		}
		if len(row.Columns) == 0 {
			// none of the requested families exist on this row
			continue
		}
		r.cur = row
		r.served++
		return true
	}
	if err := r.iter.Error(); err != nil {
		r.err = err
	}
	return false
}

func contains(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}

func (r *rowIter) Row() *coltable.Row { return r.cur }

func (r *rowIter) Err() error { return r.err }

func (r *rowIter) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.iter.Close()
}

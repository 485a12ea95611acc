// Package memory is the reference Store implementation over nested in-process
// maps. It doubles as a lightweight production store and as the default test
// double for everything layered on the Store contract.
package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/coltable/coltable-db/internal/coltable"
	"github.com/coltable/coltable-db/internal/constraint"
	"github.com/coltable/coltable-db/internal/store"
)

// Store keeps table -> row -> family -> qualifier -> bytes under a single
// read/write lock. Tables and rows are created lazily on first write; a row
// disappears once its last family data is removed.
type Store struct {
	mu     sync.RWMutex
	tables map[string]map[string]map[string]coltable.FamilyData
}

// New creates an empty memory store.
func New() *Store {
	return &Store{
		tables: make(map[string]map[string]map[string]coltable.FamilyData),
	}
}

// Start implements the Store contract; there is nothing to ready.
func (s *Store) Start() error { return nil }

// Stop implements app.Dependency.
func (s *Store) Stop() error { return nil }

// Name implements app.Dependency.
func (s *Store) Name() string { return "Memory Store" }

// HasTable reports whether the table has ever been written to.
func (s *Store) HasTable(_ *coltable.Meta, table string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tables[table]
	return ok, nil
}

// Exists reports whether the row holds any data.
func (s *Store) Exists(_ *coltable.Meta, table, row string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[table][row]) > 0, nil
}

// ExistsFamily reports whether the row holds data in the given family.
func (s *Store) ExistsFamily(_ *coltable.Meta, table, row, family string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[table][row][family]) > 0, nil
}

// Get returns a copy of one family of one row. Missing table, row or family
// all yield an empty map, never an error.
func (s *Store) Get(_ *coltable.Meta, table, row, family string) (coltable.FamilyData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables[table][row][family].Copy(), nil
}

// GetRange returns the qualifiers of one family that fall inside c.
func (s *Store) GetRange(_ *coltable.Meta, table, row, family string, c *constraint.Constraint) (coltable.FamilyData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(coltable.FamilyData)
	for q, v := range s.tables[table][row][family] {
		if !c.Contains(q) {
			continue
		}
		b := make([]byte, len(v))
		copy(b, v)
		out[q] = b
	}
	return out, nil
}

// GetFamilies returns copies of the requested families of one row; a nil
// families slice selects all of them.
func (s *Store) GetFamilies(_ *coltable.Meta, table, row string, families []string) (map[string]coltable.FamilyData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data := s.tables[table][row]
	out := make(map[string]coltable.FamilyData)
	if families == nil {
		for f, fd := range data {
			out[f] = fd.Copy()
		}
		return out, nil
	}
	for _, f := range families {
		if fd, ok := data[f]; ok {
			out[f] = fd.Copy()
		}
	}
	return out, nil
}

// StoreChanges applies upserts, then removals, then increments to one row.
func (s *Store) StoreChanges(_ *coltable.Meta, table, row string, changed coltable.ColumnChanges, removed coltable.ColumnRemovals, increments coltable.ColumnIncrements) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.rowForWrite(table, row)

	for family, quals := range changed {
		fd, ok := data[family]
		if !ok {
			fd = make(coltable.FamilyData)
			data[family] = fd
		}
		for q, v := range quals {
			b := make([]byte, len(v))
			copy(b, v)
			fd[q] = b
		}
	}

	for family, quals := range removed {
		fd, ok := data[family]
		if !ok {
			continue
		}
		for q := range quals {
			delete(fd, q)
		}
		if len(fd) == 0 {
			delete(data, family)
		}
	}

	for family, quals := range increments {
		fd, ok := data[family]
		if !ok {
			fd = make(coltable.FamilyData)
			data[family] = fd
		}
		for q, delta := range quals {
			next, err := store.ApplyIncrement(fd[q], delta)
			if err != nil {
				return fmt.Errorf("increment %s:%s/%s: %w", table, row, q, err)
			}
			fd[q] = next
		}
	}

	s.dropIfEmpty(table, row)
	return nil
}

// Delete removes the whole row.
func (s *Store) Delete(_ *coltable.Meta, table, row string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rows, ok := s.tables[table]; ok {
		delete(rows, row)
	}
	return nil
}

// Count returns the number of rows inside c.
func (s *Store) Count(_ *coltable.Meta, table string, c *constraint.Constraint) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for key, data := range s.tables[table] {
		if len(data) > 0 && c.Contains(key) {
			n++
		}
	}
	return n, nil
}

// Scan returns matching rows in ascending key order, capped at limit
// (0 means uncapped). Row data is fetched lazily as the caller advances.
func (s *Store) Scan(_ *coltable.Meta, table string, c *constraint.Constraint, limit int, families []string) (store.Rows, error) {
	s.mu.RLock()
	keys := make([]string, 0, len(s.tables[table]))
	for key, data := range s.tables[table] {
		if len(data) > 0 && c.Contains(key) {
			keys = append(keys, key)
		}
	}
	s.mu.RUnlock()

	sort.Strings(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return &rowIter{store: s, table: table, keys: keys, families: families}, nil
}

func (s *Store) rowForWrite(table, row string) map[string]coltable.FamilyData {
	rows, ok := s.tables[table]
	if !ok {
		rows = make(map[string]map[string]coltable.FamilyData)
		s.tables[table] = rows
	}
	data, ok := rows[row]
	if !ok {
		data = make(map[string]coltable.FamilyData)
		rows[row] = data
	}
	return data
}

func (s *Store) dropIfEmpty(table, row string) {
	if rows, ok := s.tables[table]; ok && len(rows[row]) == 0 {
		delete(rows, row)
	}
}

// rowIter walks a captured, sorted key set and reads each row on demand, so
// the sequence stays lazy and cheap to abandon.
type rowIter struct {
	store    *Store
	table    string
	keys     []string
	families []string
	pos      int
	cur      *coltable.Row
	closed   bool
}

func (it *rowIter) Next() bool {
	if it.closed {
		return false
	}
	for it.pos < len(it.keys) {
		key := it.keys[it.pos]
		it.pos++
		data, _ := it.store.GetFamilies(nil, it.table, key, it.families)
		if len(data) == 0 {
			// the row vanished between capture and read
			continue
		}
		it.cur = &coltable.Row{Key: key, Columns: data}
		return true
	}
	return false
}

func (it *rowIter) Row() *coltable.Row { return it.cur }

func (it *rowIter) Err() error { return nil }

func (it *rowIter) Close() error {
	it.closed = true
	return nil
}

// Package store defines the column-family backend contract the rest of the
// engine is written against: get/put/delete/scan by table, row, family and
// range. The reference implementation lives in store/memory, a persistent one
// in store/pebblestore, and the write-retention engine wraps any of them.
package store

import (
	"errors"
	"fmt"

	"github.com/coltable/coltable-db/internal/codec"
	"github.com/coltable/coltable-db/internal/coltable"
	"github.com/coltable/coltable-db/internal/constraint"
)

//go:generate mockgen -destination=store_mock.go -package=store -source=store.go

// ErrBadCounterWidth reports a stored counter whose byte length is not a
// natural integer width. Incrementing such a value is a programming error,
// never something to paper over.
var ErrBadCounterWidth = errors.New("stored counter width is not a natural integer width")

// Rows is a lazy, ordered sequence of scanned rows. Iteration follows the
// database/sql shape: Next, accessor, Err, Close. Closing releases the
// underlying cursor; closing twice is a no-op.
type Rows interface {
	Next() bool
	Row() *coltable.Row
	Err() error
	Close() error
}

// Store is the column-family backend contract. Every operation accepts an
// optional *coltable.Meta; implementations that have no use for it ignore it
// and must accept nil.
type Store interface {
	// Start readies the backend for use.
	Start() error
	// HasTable reports whether the table exists.
	HasTable(meta *coltable.Meta, table string) (bool, error)
	// Exists reports whether the row exists with any data.
	Exists(meta *coltable.Meta, table, row string) (bool, error)
	// ExistsFamily reports whether the row has data in the given family.
	ExistsFamily(meta *coltable.Meta, table, row, family string) (bool, error)
	// Get returns every qualifier of one family of one row. A missing
	// table, row or family yields an empty result, never an error.
	Get(meta *coltable.Meta, table, row, family string) (coltable.FamilyData, error)
	// GetRange is Get restricted to qualifiers inside the constraint.
	GetRange(meta *coltable.Meta, table, row, family string, c *constraint.Constraint) (coltable.FamilyData, error)
	// GetFamilies returns the requested families of one row. A nil families
	// slice selects all of them.
	GetFamilies(meta *coltable.Meta, table, row string, families []string) (map[string]coltable.FamilyData, error)
	// Scan returns rows whose keys fall inside the constraint, in ascending
	// lexicographic key order, capped at limit (0 means no cap). A nil
	// families slice selects all families.
	Scan(meta *coltable.Meta, table string, c *constraint.Constraint, limit int, families []string) (Rows, error)
	// StoreChanges applies upserts, then removals, then increments to one
	// row. The row is created lazily on first write.
	StoreChanges(meta *coltable.Meta, table, row string, changed coltable.ColumnChanges, removed coltable.ColumnRemovals, increments coltable.ColumnIncrements) error
	// Delete removes the whole row.
	Delete(meta *coltable.Meta, table, row string) error
	// Count returns the number of rows inside the constraint.
	Count(meta *coltable.Meta, table string, c *constraint.Constraint) (int64, error)
}

// ApplyIncrement adds delta to a stored counter value using the natural-width
// arithmetic matching the stored byte length. Zero-length current means the
// counter is absent and starts from delta at its natural eight-byte width.
func ApplyIncrement(current []byte, delta int64) ([]byte, error) {
	if len(current) == 0 {
		return codec.EncodeCounter(delta, 8), nil
	}
	switch len(current) {
	case 1, 2, 4, 8:
	default:
		return nil, fmt.Errorf("%w: %d bytes", ErrBadCounterWidth, len(current))
	}
	val := codec.DecodeCounter(current)
	return codec.EncodeCounter(val+delta, len(current)), nil
}

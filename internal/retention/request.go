package retention

import (
	"errors"
	"sync"
	"time"

	"github.com/coltable/coltable-db/internal/coltable"
)

// errAlreadySent means a recording raced the send of its request. It never
// leaves the package: the engine retries against a fresh request.
var errAlreadySent = errors.New("request already sent")

type entryKind int

const (
	entryValue entryKind = iota
	entryDelete
	entryIncrement
)

// columnEntry is one recorded event for one qualifier, stamped with the
// transaction id of the mutation that produced it.
type columnEntry struct {
	tx    uint64
	kind  entryKind
	value []byte
	delta int64
}

// mutation is one storeChanges or delete call, recorded as a unit under a
// single transaction id.
type mutation struct {
	changed    coltable.ColumnChanges
	removed    coltable.ColumnRemovals
	increments coltable.ColumnIncrements
	deleteRow  bool
	meta       *coltable.Meta
}

// request is the pending, coalesced state of one (table, row) pair. It moves
// through exactly two states: open, accepting recordings, and sent, terminal.
//
// The lock discipline follows the contract that a send must observe a fully
// quiesced request: recordings hold the read side of sendMu so they can run
// concurrently, while send takes the write side once, irrevocably. The inner
// mu serializes map mutation and transaction id assignment among concurrent
// recorders.
type request struct {
	table, row, key string
	due             time.Time

	sendMu sync.RWMutex
	sent   bool

	mu        sync.Mutex
	lastTx    uint64
	sentTx    uint64
	columns   map[string]map[string][]columnEntry
	deleteTx  uint64
	hasDelete bool
	meta      *coltable.Meta
}

func newRequest(table, row, key string, due time.Time) *request {
	return &request{
		table:   table,
		row:     row,
		key:     key,
		due:     due,
		columns: make(map[string]map[string][]columnEntry),
	}
}

// record merges a mutation into the request under a fresh transaction id.
// Within one mutation, upserts are recorded before removals before
// increments, so a qualifier both changed and removed in the same call ends
// up removed.
func (r *request) record(m *mutation) error {
	r.sendMu.RLock()
	defer r.sendMu.RUnlock()
	if r.sent {
		return errAlreadySent
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if m.meta != nil {
		if r.meta == nil {
			r.meta = &coltable.Meta{}
		}
		if err := r.meta.Merge(m.meta); err != nil {
			return err
		}
	}

	r.lastTx++
	tx := r.lastTx

	for family, quals := range m.changed {
		for q, v := range quals {
			b := make([]byte, len(v))
			copy(b, v)
			r.append(family, q, columnEntry{tx: tx, kind: entryValue, value: b})
		}
	}
	for family, quals := range m.removed {
		for q := range quals {
			r.append(family, q, columnEntry{tx: tx, kind: entryDelete})
		}
	}
	for family, quals := range m.increments {
		for q, delta := range quals {
			r.append(family, q, columnEntry{tx: tx, kind: entryIncrement, delta: delta})
		}
	}
	if m.deleteRow {
		r.hasDelete = true
		r.deleteTx = tx
	}
	return nil
}

func (r *request) append(family, q string, e columnEntry) {
	quals, ok := r.columns[family]
	if !ok {
		quals = make(map[string][]columnEntry)
		r.columns[family] = quals
	}
	quals[q] = pruneEntries(append(quals[q], e))
}

// pruneEntries keeps every increment but only the two most recent value or
// delete entries: only the latest of those matters at flush time, while the
// flush must sum all deltas.
func pruneEntries(entries []columnEntry) []columnEntry {
	nonInc := 0
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].kind == entryIncrement {
			continue
		}
		nonInc++
		if nonInc <= 2 {
			continue
		}
		out := entries[:0:0]
		for j, e := range entries {
			if e.kind != entryIncrement && j <= i {
				continue
			}
			out = append(out, e)
		}
		return out
	}
	return entries
}

// markSent makes the request terminal. Recording refuses entry from here on,
// and the highest assigned transaction id is captured for the flatten step.
func (r *request) markSent() {
	r.sendMu.Lock()
	r.sent = true
	r.sentTx = r.lastTx
	r.sendMu.Unlock()
}

// flatten folds the recorded history into the single physical operation to
// issue. When the whole-row deletion is the most recent event overall,
// rowDelete is true and the column payloads are irrelevant.
//
// Per qualifier, the entry with the highest transaction id decides: a value
// becomes an upsert, a delete marker becomes a removal (unless a later
// whole-row deletion supersedes it), and an increment triggers the summation
// of every recorded delta, with an intervening delete marker resetting the
// running sum to zero.
func (r *request) flatten() (changed coltable.ColumnChanges, removed coltable.ColumnRemovals, increments coltable.ColumnIncrements, meta *coltable.Meta, rowDelete bool) {
	changed = make(coltable.ColumnChanges)
	removed = make(coltable.ColumnRemovals)
	increments = make(coltable.ColumnIncrements)

	var maxColTx uint64
	for family, quals := range r.columns {
		for q, entries := range quals {
			last := entries[len(entries)-1]
			if last.tx > maxColTx {
				maxColTx = last.tx
			}
			switch last.kind {
			case entryValue:
				fd, ok := changed[family]
				if !ok {
					fd = make(coltable.FamilyData)
					changed[family] = fd
				}
				fd[q] = last.value
			case entryDelete:
				if r.hasDelete && r.deleteTx > last.tx {
					continue
				}
				set, ok := removed[family]
				if !ok {
					set = make(map[string]struct{})
					removed[family] = set
				}
				set[q] = struct{}{}
			case entryIncrement:
				var sum int64
				for _, e := range entries {
					switch e.kind {
					case entryIncrement:
						sum += e.delta
					case entryDelete:
						sum = 0
					}
				}
				inc, ok := increments[family]
				if !ok {
					inc = make(map[string]int64)
					increments[family] = inc
				}
				inc[q] = sum
			}
		}
	}
	return changed, removed, increments, r.meta, r.hasDelete && r.deleteTx > maxColTx
}

// Package retention coalesces writes in front of a store. Mutations wait in
// memory for a configurable window before being flushed, so bursts of writes
// to the same row collapse into a single physical operation. Reads are not
// intercepted: they go straight to the wrapped store and do not see pending
// writes.
package retention

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/coltable/coltable-db/internal/coltable"
	"github.com/coltable/coltable-db/internal/store"
)

// ErrStopped is returned for writes issued after the engine has shut down.
var ErrStopped = errors.New("write-retention engine is stopped")

const defaultWorkers = 4

// Config holds the knobs for a write-retention engine.
type Config struct {
	// Window is how long a row's mutations coalesce before they flush.
	Window time.Duration
	// Store is the wrapped backing store. Wrapping an engine re-wraps its
	// underlying store; retention layers never nest.
	Store store.Store
	// Workers bounds the flush pool. Zero means defaultWorkers.
	Workers int
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Window <= 0 {
		errGrp = append(errGrp, fmt.Errorf("retention window must be positive, got %s", c.Window))
	}
	if c.Store == nil {
		errGrp = append(errGrp, errors.New("backing store is required"))
	}
	if c.Workers < 0 {
		errGrp = append(errGrp, fmt.Errorf("worker count must not be negative, got %d", c.Workers))
	}
	return errors.Join(errGrp...)
}

type engineKey struct {
	window  time.Duration
	backing store.Store
}

var (
	enginesMu sync.Mutex
	engines   = make(map[engineKey]*Engine)
)

// Engine coalesces StoreChanges and Delete calls per (table, row) pair and
// flushes them after the retention window. Every other Store operation is
// delegated to the wrapped store unchanged, so a just-written value is not
// readable until its flush lands.
type Engine struct {
	store.Store

	window  time.Duration
	workers int

	index   sync.Map // request key -> *request
	queue   *delayQueue
	flushCh chan *request
	pending atomic.Int64

	inFlightMu sync.Mutex
	inFlight   map[string]chan struct{}

	started     atomic.Bool
	stopped     atomic.Bool
	schedulerWg sync.WaitGroup
	workerWg    sync.WaitGroup
}

// New returns the engine for the given window and backing store. Engines are
// deduplicated process-wide: two calls with the same window and the same
// store resolve to the same instance, so independent call sites coalesce into
// one pending set. Passing an engine as the store unwraps it first.
func New(cfg *Config) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid write-retention config: %w", err)
	}

	backing := cfg.Store
	if inner, ok := backing.(*Engine); ok {
		backing = inner.Store
	}
	workers := cfg.Workers
	if workers == 0 {
		workers = defaultWorkers
	}

	key := engineKey{window: cfg.Window, backing: backing}
	enginesMu.Lock()
	defer enginesMu.Unlock()
	if e, ok := engines[key]; ok {
		return e, nil
	}

	e := &Engine{
		Store:    backing,
		window:   cfg.Window,
		workers:  workers,
		queue:    newDelayQueue(),
		flushCh:  make(chan *request),
		inFlight: make(map[string]chan struct{}),
	}
	engines[key] = e
	return e, nil
}

// Start starts the wrapped store, then the scheduler and the flush workers.
func (e *Engine) Start() error {
	if !e.started.CompareAndSwap(false, true) {
		return nil
	}
	if err := e.Store.Start(); err != nil {
		return fmt.Errorf("failed to start backing store: %w", err)
	}

	e.schedulerWg.Add(1)
	go e.schedule()
	for i := 0; i < e.workers; i++ {
		e.workerWg.Add(1)
		go e.worker()
	}
	log.Debug().
		Dur("window", e.window).
		Int("workers", e.workers).
		Msg("Write-retention engine started")
	return nil
}

// Stop shuts the engine down: new writes are rejected with ErrStopped, the
// scheduler and workers wind down, and everything still pending is flushed
// single-threaded before Stop returns.
func (e *Engine) Stop() error {
	if !e.stopped.CompareAndSwap(false, true) {
		return nil
	}
	// A stopped engine rejects every write, so it must leave the registry
	// even when it was never started.
	defer func() {
		enginesMu.Lock()
		delete(engines, engineKey{window: e.window, backing: e.Store})
		enginesMu.Unlock()
	}()
	if !e.started.Load() {
		return nil
	}

	e.queue.close()
	e.schedulerWg.Wait()
	close(e.flushCh)
	e.workerWg.Wait()

	remaining := e.queue.drain()
	for _, r := range remaining {
		e.index.CompareAndDelete(r.key, r)
		e.flush(r)
	}

	// The engine owns the backing store's lifecycle when it has one to own.
	var stopErr error
	if closer, ok := e.Store.(interface{ Stop() error }); ok {
		stopErr = closer.Stop()
	}

	log.Debug().
		Int("drained", len(remaining)).
		Msg("Write-retention engine stopped")
	return stopErr
}

func (e *Engine) Name() string {
	return "Write-Retention Engine"
}

// Pending reports how many rows currently hold unflushed mutations.
func (e *Engine) Pending() int {
	return int(e.pending.Load())
}

// Quiesce waits until nothing is pending or the timeout elapses, and reports
// whether the engine is quiescent.
func (e *Engine) Quiesce(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for e.pending.Load() > 0 {
		if !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
	return true
}

// StoreChanges records the mutation against the row's pending request instead
// of writing it through. The physical write happens after the retention
// window, coalesced with everything else recorded for the row meanwhile.
func (e *Engine) StoreChanges(meta *coltable.Meta, table, row string, changed coltable.ColumnChanges, removed coltable.ColumnRemovals, increments coltable.ColumnIncrements) error {
	return e.enqueue(table, row, &mutation{
		changed:    changed,
		removed:    removed,
		increments: increments,
		meta:       meta,
	})
}

// Delete records a whole-row deletion. If no mutation follows it within the
// window, the flush issues a physical delete; otherwise the later mutations
// win and the deletion only erases what preceded it.
func (e *Engine) Delete(meta *coltable.Meta, table, row string) error {
	return e.enqueue(table, row, &mutation{deleteRow: true, meta: meta})
}

func requestKey(table, row string) string {
	return table + "\x00" + row
}

func (e *Engine) enqueue(table, row string, m *mutation) error {
	if e.stopped.Load() {
		return ErrStopped
	}
	key := requestKey(table, row)
	for {
		if v, ok := e.index.Load(key); ok {
			r := v.(*request)
			err := r.record(m)
			if err == nil {
				return nil
			}
			if !errors.Is(err, errAlreadySent) {
				return err
			}
			// The request was sent between our lookup and the recording.
			// Clear it if the scheduler has not already and start over.
			e.index.CompareAndDelete(key, v)
			continue
		}

		r := newRequest(table, row, key, time.Now().Add(e.window))
		actual, loaded := e.index.LoadOrStore(key, r)
		if loaded {
			err := actual.(*request).record(m)
			if err == nil {
				return nil
			}
			if !errors.Is(err, errAlreadySent) {
				return err
			}
			e.index.CompareAndDelete(key, actual)
			continue
		}

		// The request is ours and not yet scheduled, so the recording
		// cannot race a send.
		if err := r.record(m); err != nil {
			e.index.CompareAndDelete(key, r)
			return err
		}
		e.pending.Add(1)
		if e.queue.push(r) {
			return nil
		}
		// Stop closed and drained the queue while this write was between
		// the stopped check and the push; scheduling it would lose it.
		e.pending.Add(-1)
		e.index.CompareAndDelete(key, r)
		return ErrStopped
	}
}

// schedule pulls due requests off the delay queue and hands them to the
// workers. A request leaves the index the moment it becomes due, so new
// mutations for the row open a fresh request even while the flush is still
// running.
func (e *Engine) schedule() {
	defer e.schedulerWg.Done()
	for {
		r, ok := e.queue.take()
		if !ok {
			return
		}
		e.index.CompareAndDelete(r.key, r)
		e.flushCh <- r
	}
}

func (e *Engine) worker() {
	defer e.workerWg.Done()
	for r := range e.flushCh {
		e.flush(r)
	}
}

func (e *Engine) flush(r *request) {
	defer e.pending.Add(-1)

	// At most one flush per row may touch the store at a time, or two
	// coalesced batches could land out of order.
	done := e.lockRow(r.key)
	defer e.unlockRow(r.key, done)

	r.markSent()
	changed, removed, increments, meta, rowDelete := r.flatten()

	flushID := uuid.NewString()
	var err error
	switch {
	case rowDelete:
		err = e.Store.Delete(meta, r.table, r.row)
	case coltable.Empty(changed, removed, increments):
		return
	default:
		err = e.Store.StoreChanges(meta, r.table, r.row, changed, removed, increments)
	}
	if err != nil {
		// The request is consumed either way; the flush is not retried.
		log.Error().
			Err(err).
			Str("flush_id", flushID).
			Str("table", r.table).
			Str("row", r.row).
			Msg("Failed to flush pending mutations")
		return
	}
	log.Debug().
		Str("flush_id", flushID).
		Str("table", r.table).
		Str("row", r.row).
		Bool("row_delete", rowDelete).
		Msg("Flushed pending mutations")
}

// lockRow queues on the row's flush chain: each flush waits on its
// predecessor's done channel, so waiters hand off in arrival order rather
// than racing on wakeup.
func (e *Engine) lockRow(key string) chan struct{} {
	done := make(chan struct{})
	e.inFlightMu.Lock()
	prev := e.inFlight[key]
	e.inFlight[key] = done
	e.inFlightMu.Unlock()
	if prev != nil {
		<-prev
	}
	return done
}

func (e *Engine) unlockRow(key string, done chan struct{}) {
	e.inFlightMu.Lock()
	if e.inFlight[key] == done {
		delete(e.inFlight, key)
	}
	e.inFlightMu.Unlock()
	close(done)
}

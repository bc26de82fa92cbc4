package engine

import (
	"go.uber.org/zap"

	"ridgedb/internal/catalog"
	"ridgedb/internal/page"
)

// State is the engine's transaction state machine: Idle or InTx. Every
// mutating operation runs inside an implicit single-statement
// transaction unless the caller has already opened one with Begin.
type State int

const (
	Idle State = iota
	InTx
)

func (s State) String() string {
	if s == InTx {
		return "in-transaction"
	}
	return "idle"
}

// Engine is the executor façade: one open database file, its catalog,
// and the current transaction state.
type Engine struct {
	pager   *page.Pager
	catalog *catalog.Catalog
	state   State
	log     *zap.Logger
}

// Open opens path, bootstrapping a fresh catalog if the file is new.
func Open(path string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	pgr, err := page.Open(path, log)
	if err != nil {
		return nil, err
	}

	var cat *catalog.Catalog
	if pgr.NumPages() == 0 {
		cat, err = catalog.Bootstrap(pgr, log)
	} else {
		cat, err = catalog.Open(pgr, log)
	}
	if err != nil {
		return nil, err
	}
	return &Engine{pager: pgr, catalog: cat, log: log}, nil
}

// State reports whether the engine is currently inside an explicit
// transaction opened with Begin.
func (e *Engine) State() State { return e.state }

// SetCacheCapacity overrides the underlying pager's resident-page cache
// bound. Intended to be called once, right after Open.
func (e *Engine) SetCacheCapacity(n int) { e.pager.SetCacheCapacity(n) }

// Close flushes and closes the underlying database file.
func (e *Engine) Close() error { return e.pager.Close() }

// runMutation wraps a single mutating operation in an implicit
// transaction when the caller hasn't already opened one explicitly with
// Begin, so a lone Insert/Delete/InsertAsSelect is atomic on its own.
func (e *Engine) runMutation(fn func() error) error {
	if e.state == InTx {
		return fn()
	}
	e.pager.BeginTx()
	if err := fn(); err != nil {
		if rbErr := e.pager.RollbackTx(); rbErr != nil {
			e.log.Error("rollback after failed implicit transaction also failed", zap.Error(rbErr))
		}
		return err
	}
	return e.pager.CommitTx()
}

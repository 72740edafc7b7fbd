package engine

import (
	"context"
	"sync"

	"magasin-api/internal/model"
)

// Store is the persistence hook the ledger writes quantity changes
// through. A nil Store keeps the ledger memory-only (tests).
type Store interface {
	UpdateNombre(ctx context.Context, id int64, nombre int64) error
	UpdateNombres(ctx context.Context, updates []model.StockUpdate) error
}

// StockLedger is the authoritative mapping of equipment id to available
// quantity. All other components read and mutate stock through it; a
// successful mutation is visible to every reader before the call returns.
type StockLedger struct {
	mu    sync.RWMutex
	store Store
	items map[int64]*model.Equipement
	order []int64
}

// NewStockLedger creates an empty ledger. store may be nil.
func NewStockLedger(store Store) *StockLedger {
	return &StockLedger{
		store: store,
		items: make(map[int64]*model.Equipement),
	}
}

// Load replaces the ledger contents with the given catalog.
func (l *StockLedger) Load(equipements []model.Equipement) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = make(map[int64]*model.Equipement, len(equipements))
	l.order = l.order[:0]
	for i := range equipements {
		e := equipements[i]
		e.Disponible = e.Nombre > 0
		l.items[e.ID] = &e
		l.order = append(l.order, e.ID)
	}
}

// Upsert adds or replaces one equipment record.
func (l *StockLedger) Upsert(e model.Equipement) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.Disponible = e.Nombre > 0
	if _, ok := l.items[e.ID]; !ok {
		l.order = append(l.order, e.ID)
	}
	l.items[e.ID] = &e
}

// Get returns a copy of one equipment record.
func (l *StockLedger) Get(id int64) (model.Equipement, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.items[id]
	if !ok {
		return model.Equipement{}, false
	}
	return *e, true
}

// Snapshot returns a consistent copy of the full catalog in load order.
func (l *StockLedger) Snapshot() []model.Equipement {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.Equipement, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.items[id])
	}
	return out
}

// Len returns the number of equipment records.
func (l *StockLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// SetQuantity sets the absolute quantity of one equipment. The change is
// persisted before the in-memory commit; on any failure the ledger is
// left unchanged.
func (l *StockLedger) SetQuantity(ctx context.Context, id int64, nombre int64) (model.Equipement, error) {
	if nombre < 0 {
		return model.Equipement{}, ErrNegativeStock
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.items[id]
	if !ok {
		return model.Equipement{}, ErrNotFound
	}

	if l.store != nil {
		if err := l.store.UpdateNombre(ctx, id, nombre); err != nil {
			return model.Equipement{}, &UpstreamError{Op: "update stock", Err: err}
		}
	}

	e.Nombre = nombre
	e.Disponible = nombre > 0
	return *e, nil
}

// AdjustQuantity applies a signed delta to one equipment's quantity.
// A delta that would drive the quantity below zero is rejected and the
// ledger is left unchanged.
func (l *StockLedger) AdjustQuantity(ctx context.Context, id int64, delta int64) (model.Equipement, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.items[id]
	if !ok {
		return model.Equipement{}, ErrNotFound
	}

	next := e.Nombre + delta
	if next < 0 {
		return model.Equipement{}, ErrNegativeStock
	}

	if l.store != nil {
		if err := l.store.UpdateNombre(ctx, id, next); err != nil {
			return model.Equipement{}, &UpstreamError{Op: "update stock", Err: err}
		}
	}

	e.Nombre = next
	e.Disponible = next > 0
	return *e, nil
}

// ApplyDecrements validates and applies a batch of decrements atomically:
// either every line is decremented (and persisted in one transaction) or
// none is. Used by order placement.
func (l *StockLedger) ApplyDecrements(ctx context.Context, lines []CartLine) ([]model.Equipement, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	updates := make([]model.StockUpdate, 0, len(lines))
	for _, line := range lines {
		e, ok := l.items[line.EquipementID]
		if !ok {
			return nil, ErrNotFound
		}
		if line.Quantity > e.Nombre {
			return nil, ErrInsufficientStock
		}
		updates = append(updates, model.StockUpdate{
			EquipementID: line.EquipementID,
			Nombre:       e.Nombre - line.Quantity,
		})
	}

	if l.store != nil {
		if err := l.store.UpdateNombres(ctx, updates); err != nil {
			return nil, &UpstreamError{Op: "validate order", Err: err}
		}
	}

	updated := make([]model.Equipement, 0, len(updates))
	for _, u := range updates {
		e := l.items[u.EquipementID]
		e.Nombre = u.Nombre
		e.Disponible = u.Nombre > 0
		updated = append(updated, *e)
	}
	return updated, nil
}

package engine

import (
	"context"
	"errors"
	"testing"
)

func TestSetQuantity(t *testing.T) {
	tests := []struct {
		name    string
		id      int64
		nombre  int64
		wantErr error
	}{
		{"sets quantity", 1, 25, nil},
		{"sets to zero", 1, 0, nil},
		{"rejects negative", 1, -1, ErrNegativeStock},
		{"unknown equipment", 99, 5, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := newTestLedger(nil)
			e, err := ledger.SetQuantity(context.Background(), tt.id, tt.nombre)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SetQuantity() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if e.Nombre != tt.nombre {
				t.Errorf("Nombre = %d, want %d", e.Nombre, tt.nombre)
			}
			if e.Disponible != (tt.nombre > 0) {
				t.Errorf("Disponible = %v, want %v", e.Disponible, tt.nombre > 0)
			}
		})
	}
}

func TestSetQuantityPersistsThroughStore(t *testing.T) {
	store := &fakeStore{}
	ledger := newTestLedger(store)

	if _, err := ledger.SetQuantity(context.Background(), 1, 4); err != nil {
		t.Fatalf("SetQuantity() error = %v", err)
	}
	if len(store.singles) != 1 || store.singles[0].EquipementID != 1 || store.singles[0].Nombre != 4 {
		t.Errorf("store writes = %+v, want one write of id=1 nombre=4", store.singles)
	}
}

func TestSetQuantityStoreFailureLeavesLedgerUnchanged(t *testing.T) {
	store := &fakeStore{fail: true}
	ledger := newTestLedger(store)

	_, err := ledger.SetQuantity(context.Background(), 1, 4)
	var uErr *UpstreamError
	if !errors.As(err, &uErr) {
		t.Fatalf("SetQuantity() error = %v, want UpstreamError", err)
	}
	e, _ := ledger.Get(1)
	if e.Nombre != 10 {
		t.Errorf("Nombre = %d, want 10 (unchanged after store failure)", e.Nombre)
	}
}

func TestAdjustQuantityNeverNegative(t *testing.T) {
	ledger := newTestLedger(nil)

	if _, err := ledger.AdjustQuantity(context.Background(), 2, -3); err != nil {
		t.Fatalf("AdjustQuantity(-3) error = %v", err)
	}
	e, _ := ledger.Get(2)
	if e.Nombre != 0 || e.Disponible {
		t.Fatalf("after drain: Nombre = %d Disponible = %v, want 0 false", e.Nombre, e.Disponible)
	}

	if _, err := ledger.AdjustQuantity(context.Background(), 2, -1); !errors.Is(err, ErrNegativeStock) {
		t.Fatalf("AdjustQuantity below zero error = %v, want ErrNegativeStock", err)
	}
	e, _ = ledger.Get(2)
	if e.Nombre != 0 {
		t.Errorf("Nombre = %d, want 0 (unchanged after rejection)", e.Nombre)
	}
}

func TestApplyDecrementsAllOrNothing(t *testing.T) {
	ledger := newTestLedger(nil)

	lines := []CartLine{
		{EquipementID: 1, Quantity: 2},
		{EquipementID: 2, Quantity: 5}, // only 3 in stock
	}
	if _, err := ledger.ApplyDecrements(context.Background(), lines); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("ApplyDecrements() error = %v, want ErrInsufficientStock", err)
	}

	// The valid first line must not have been applied.
	if e, _ := ledger.Get(1); e.Nombre != 10 {
		t.Errorf("Nombre(1) = %d, want 10", e.Nombre)
	}
	if e, _ := ledger.Get(2); e.Nombre != 3 {
		t.Errorf("Nombre(2) = %d, want 3", e.Nombre)
	}
}

func TestApplyDecrementsSuccess(t *testing.T) {
	store := &fakeStore{}
	ledger := newTestLedger(store)

	lines := []CartLine{
		{EquipementID: 1, Quantity: 2},
		{EquipementID: 2, Quantity: 3},
	}
	updated, err := ledger.ApplyDecrements(context.Background(), lines)
	if err != nil {
		t.Fatalf("ApplyDecrements() error = %v", err)
	}
	if len(updated) != 2 {
		t.Fatalf("updated = %d entries, want 2", len(updated))
	}
	if e, _ := ledger.Get(1); e.Nombre != 8 {
		t.Errorf("Nombre(1) = %d, want 8", e.Nombre)
	}
	if e, _ := ledger.Get(2); e.Nombre != 0 || e.Disponible {
		t.Errorf("Nombre(2) = %d Disponible = %v, want 0 false", e.Nombre, e.Disponible)
	}
	if len(store.batches) != 1 || len(store.batches[0]) != 2 {
		t.Errorf("store batches = %+v, want one batch of 2 updates", store.batches)
	}
}

func TestApplyDecrementsStoreFailure(t *testing.T) {
	store := &fakeStore{fail: true}
	ledger := newTestLedger(store)

	_, err := ledger.ApplyDecrements(context.Background(), []CartLine{{EquipementID: 1, Quantity: 2}})
	var uErr *UpstreamError
	if !errors.As(err, &uErr) {
		t.Fatalf("ApplyDecrements() error = %v, want UpstreamError", err)
	}
	if e, _ := ledger.Get(1); e.Nombre != 10 {
		t.Errorf("Nombre(1) = %d, want 10 (unchanged)", e.Nombre)
	}
}

func TestUpsertAndSnapshotOrder(t *testing.T) {
	ledger := newTestLedger(nil)
	snapshot := ledger.Snapshot()
	if len(snapshot) != 4 {
		t.Fatalf("Snapshot() = %d entries, want 4", len(snapshot))
	}
	for i, want := range []int64{1, 2, 3, 4} {
		if snapshot[i].ID != want {
			t.Errorf("snapshot[%d].ID = %d, want %d", i, snapshot[i].ID, want)
		}
	}

	// Snapshot copies must not alias ledger state.
	snapshot[0].Nombre = 999
	if e, _ := ledger.Get(1); e.Nombre != 10 {
		t.Errorf("Nombre(1) = %d after mutating snapshot, want 10", e.Nombre)
	}
}

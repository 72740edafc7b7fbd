package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"magasin-api/internal/model"
)

var errStoreDown = errors.New("store down")

// fakeStore records quantity writes and can be told to fail.
type fakeStore struct {
	mu      sync.Mutex
	fail    bool
	singles []model.StockUpdate
	batches [][]model.StockUpdate
}

func (s *fakeStore) UpdateNombre(ctx context.Context, id int64, nombre int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errStoreDown
	}
	s.singles = append(s.singles, model.StockUpdate{EquipementID: id, Nombre: nombre})
	return nil
}

func (s *fakeStore) UpdateNombres(ctx context.Context, updates []model.StockUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errStoreDown
	}
	batch := make([]model.StockUpdate, len(updates))
	copy(batch, updates)
	s.batches = append(s.batches, batch)
	return nil
}

func (s *fakeStore) setFail(fail bool) {
	s.mu.Lock()
	s.fail = fail
	s.mu.Unlock()
}

// fakeDirectory is an in-memory technician roster with a switchable
// delete failure.
type fakeDirectory struct {
	mu         sync.Mutex
	roster     []model.Technicien
	failDelete bool
	deleted    []int64
}

func (d *fakeDirectory) ListTechniciens(ctx context.Context) ([]model.Technicien, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.Technicien, len(d.roster))
	copy(out, d.roster)
	return out, nil
}

func (d *fakeDirectory) DeleteDemande(ctx context.Context, technicienID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failDelete {
		return errStoreDown
	}
	d.deleted = append(d.deleted, technicienID)
	return nil
}

func testEquipements() []model.Equipement {
	marche := time.Now().AddDate(0, -2, 0)
	garantie := time.Now().AddDate(2, 0, 0)
	return []model.Equipement{
		{ID: 1, CodeIMO: "IMO-001", NomEquipement: "Oscilloscope", Designation: "Tektronix", Categorie: "mesure", Nombre: 10, DateMiseEnMarche: &marche, DateGarantie: &garantie},
		{ID: 2, CodeIMO: "IMO-002", NomEquipement: "Multimètre", Designation: "Fluke 87V", Categorie: "mesure", Nombre: 3, DateMiseEnMarche: &marche, DateGarantie: &garantie},
		{ID: 3, CodeIMO: "IMO-003", NomEquipement: "Alimentation", Designation: "Keysight", Categorie: "alimentation", Nombre: 0, DateMiseEnMarche: &marche, DateGarantie: &garantie},
		{ID: 4, CodeIMO: "IMO-004", NomEquipement: "Générateur", Designation: "Rigol", Categorie: "signal", Nombre: 7},
	}
}

func newTestLedger(store Store) *StockLedger {
	l := NewStockLedger(store)
	l.Load(testEquipements())
	return l
}

// busHasMessage reports whether a live notification contains the
// substring.
func busHasMessage(bus *NotificationBus, substr string) bool {
	for _, n := range bus.List() {
		if strings.Contains(n.Message, substr) {
			return true
		}
	}
	return false
}

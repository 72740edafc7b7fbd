package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"magasin-api/internal/cache"
	"magasin-api/internal/engine"
	"magasin-api/internal/model"
)

type stubRepo struct {
	mu          sync.Mutex
	nextID      int64
	failCreate  bool
	equipements []model.Equipement
	notes       []model.Note
}

func (s *stubRepo) ListEquipements(ctx context.Context) ([]model.Equipement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Equipement, len(s.equipements))
	copy(out, s.equipements)
	return out, nil
}

func (s *stubRepo) GetEquipement(ctx context.Context, id int64) (*model.Equipement, error) {
	return nil, nil
}

func (s *stubRepo) CreateEquipement(ctx context.Context, e *model.Equipement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate {
		return fmt.Errorf("insert failed")
	}
	s.nextID++
	e.ID = s.nextID
	s.equipements = append(s.equipements, *e)
	return nil
}

func (s *stubRepo) UpdateNombre(ctx context.Context, id int64, nombre int64) error { return nil }

func (s *stubRepo) UpdateNombres(ctx context.Context, updates []model.StockUpdate) error { return nil }

func (s *stubRepo) GetStats(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}

func (s *stubRepo) Close() error { return nil }

func (s *stubRepo) ListNotes(ctx context.Context) ([]model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Note, len(s.notes))
	copy(out, s.notes)
	return out, nil
}

func (s *stubRepo) CreateNote(ctx context.Context, n *model.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	n.ID = s.nextID
	s.notes = append(s.notes, *n)
	return nil
}

func newTestService(t *testing.T, repo *stubRepo) *CatalogService {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.NotificationTTL = time.Hour
	cfg.RandomSeed = 23
	eng := engine.New(cfg, repo, nil)
	t.Cleanup(eng.Stop)

	svc := NewCatalogService(repo, repo, cache.NewMemoryCache(), time.Minute, eng)
	if err := svc.LoadLedger(context.Background()); err != nil {
		t.Fatalf("LoadLedger() error = %v", err)
	}
	return svc
}

func validInput() CreateEquipementInput {
	return CreateEquipementInput{
		CodeIMO:       "IMO-100",
		NomTesteur:    "Banc 1",
		NomEquipement: "Oscilloscope",
		Designation:   "Tektronix MSO44",
		Categorie:     "mesure",
		Nombre:        5,
	}
}

func TestCreateEquipementValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateEquipementInput)
		ok     bool
	}{
		{"valid", func(in *CreateEquipementInput) {}, true},
		{"missing code_imo", func(in *CreateEquipementInput) { in.CodeIMO = "  " }, false},
		{"missing nom_testeur", func(in *CreateEquipementInput) { in.NomTesteur = "" }, false},
		{"missing nom_equipement", func(in *CreateEquipementInput) { in.NomEquipement = "" }, false},
		{"missing designation", func(in *CreateEquipementInput) { in.Designation = "" }, false},
		{"missing categorie", func(in *CreateEquipementInput) { in.Categorie = "" }, false},
		{"negative nombre", func(in *CreateEquipementInput) { in.Nombre = -1 }, false},
		{"zero nombre is allowed", func(in *CreateEquipementInput) { in.Nombre = 0 }, true},
		{"bad date", func(in *CreateEquipementInput) { in.DateGarantie = "pas-une-date" }, false},
		{"date only", func(in *CreateEquipementInput) { in.DateGarantie = "2027-06-01" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, &stubRepo{})
			input := validInput()
			tt.mutate(&input)

			e, err := svc.CreateEquipement(context.Background(), input)
			if tt.ok {
				if err != nil {
					t.Fatalf("CreateEquipement() error = %v", err)
				}
				if e.ID == 0 {
					t.Error("created equipment has no id")
				}
				return
			}
			var vErr *engine.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("CreateEquipement() error = %v, want ValidationError", err)
			}
		})
	}
}

func TestCreateEquipementAppearsInLedger(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo)

	e, err := svc.CreateEquipement(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateEquipement() error = %v", err)
	}

	if got, ok := svc.eng.Ledger.Get(e.ID); !ok || got.Nombre != 5 {
		t.Fatalf("Ledger.Get(%d) = %+v %v, want the created equipment", e.ID, got, ok)
	}

	list, err := svc.ListEquipements(context.Background())
	if err != nil {
		t.Fatalf("ListEquipements() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("ListEquipements() = %d entries, want 1", len(list))
	}
}

func TestCreateEquipementUpstreamFailure(t *testing.T) {
	repo := &stubRepo{failCreate: true}
	svc := newTestService(t, repo)

	_, err := svc.CreateEquipement(context.Background(), validInput())
	var uErr *engine.UpstreamError
	if !errors.As(err, &uErr) {
		t.Fatalf("CreateEquipement() error = %v, want UpstreamError", err)
	}
	if svc.eng.Ledger.Len() != 0 {
		t.Error("failed create still reached the ledger")
	}
}

func TestListEquipementsCacheInvalidation(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo)

	if _, err := svc.CreateEquipement(context.Background(), validInput()); err != nil {
		t.Fatalf("CreateEquipement() error = %v", err)
	}
	first, _ := svc.ListEquipements(context.Background())
	if len(first) != 1 {
		t.Fatalf("ListEquipements() = %d, want 1", len(first))
	}

	// A second create must invalidate the cached list.
	second := validInput()
	second.CodeIMO = "IMO-101"
	if _, err := svc.CreateEquipement(context.Background(), second); err != nil {
		t.Fatalf("CreateEquipement() error = %v", err)
	}
	list, _ := svc.ListEquipements(context.Background())
	if len(list) != 2 {
		t.Fatalf("ListEquipements() = %d after second create, want 2", len(list))
	}
}

func TestWithdraw(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo)
	created, err := svc.CreateEquipement(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateEquipement() error = %v", err)
	}

	e, err := svc.Withdraw(context.Background(), created.ID, 2)
	if err != nil {
		t.Fatalf("Withdraw() error = %v", err)
	}
	if e.Nombre != 3 {
		t.Errorf("Nombre = %d, want 3", e.Nombre)
	}

	if _, err := svc.Withdraw(context.Background(), created.ID, 10); !errors.Is(err, engine.ErrInsufficientStock) {
		t.Fatalf("Withdraw(10) error = %v, want ErrInsufficientStock", err)
	}
	if _, err := svc.Withdraw(context.Background(), created.ID, 0); err == nil {
		t.Fatal("Withdraw(0) error = nil, want validation error")
	}
	if _, err := svc.Withdraw(context.Background(), 999, 1); !errors.Is(err, engine.ErrNotFound) {
		t.Fatalf("Withdraw(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestCreateNote(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo)

	if _, err := svc.CreateNote(context.Background(), "   "); err == nil {
		t.Fatal("CreateNote(blank) error = nil, want validation error")
	}

	n, err := svc.CreateNote(context.Background(), "Vérifier l'oscilloscope du banc 2")
	if err != nil {
		t.Fatalf("CreateNote() error = %v", err)
	}
	if n.ID == 0 {
		t.Error("created note has no id")
	}

	notes, err := svc.ListNotes(context.Background())
	if err != nil {
		t.Fatalf("ListNotes() error = %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("ListNotes() = %d, want 1", len(notes))
	}
}

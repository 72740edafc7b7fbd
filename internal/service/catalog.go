package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"magasin-api/internal/cache"
	"magasin-api/internal/engine"
	"magasin-api/internal/model"
	"magasin-api/internal/repository"
)

const catalogCacheKey = "equipements"

// CatalogService handles the equipment catalog and notes: persistence,
// validation, the read cache, and keeping the ledger in sync with
// created records.
type CatalogService struct {
	repo     repository.EquipementRepository
	notes    repository.NoteRepository
	cache    cache.Cache
	cacheTTL time.Duration
	eng      *engine.Engine
}

// NewCatalogService creates a catalog service. cache may be nil to
// disable caching.
func NewCatalogService(
	repo repository.EquipementRepository,
	notes repository.NoteRepository,
	c cache.Cache,
	cacheTTL time.Duration,
	eng *engine.Engine,
) *CatalogService {
	if repo == nil || eng == nil {
		return nil
	}
	return &CatalogService{
		repo:     repo,
		notes:    notes,
		cache:    c,
		cacheTTL: cacheTTL,
		eng:      eng,
	}
}

// LoadLedger seeds the engine's stock ledger from the store. Called once
// at startup.
func (s *CatalogService) LoadLedger(ctx context.Context) error {
	equipements, err := s.repo.ListEquipements(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	s.eng.Ledger.Load(equipements)
	return nil
}

// ListEquipements returns the catalog from the live ledger, serialized
// through the read cache.
func (s *CatalogService) ListEquipements(ctx context.Context) ([]model.Equipement, error) {
	if s.cache == nil {
		return s.eng.Ledger.Snapshot(), nil
	}

	data, err := s.cache.GetOrSet(ctx, catalogCacheKey, s.cacheTTL, func() ([]byte, error) {
		return json.Marshal(s.eng.Ledger.Snapshot())
	})
	if err != nil {
		// Cache trouble must not take the catalog down.
		return s.eng.Ledger.Snapshot(), nil
	}

	var equipements []model.Equipement
	if err := json.Unmarshal(data, &equipements); err != nil {
		return s.eng.Ledger.Snapshot(), nil
	}
	return equipements, nil
}

// InvalidateCatalog drops the cached catalog after a stock mutation.
func (s *CatalogService) InvalidateCatalog(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, catalogCacheKey)
	}
}

// CreateEquipementInput carries the create-equipment form fields.
type CreateEquipementInput struct {
	CodeIMO          string `json:"code_imo"`
	NomTesteur       string `json:"nom_testeur"`
	NomEquipement    string `json:"nom_equipement"`
	Designation      string `json:"designation"`
	Arborescence     string `json:"arborescence"`
	Categorie        string `json:"categorie"`
	Nombre           int64  `json:"nombre"`
	DateMiseEnMarche string `json:"date_mise_en_marche"`
	DateGarantie     string `json:"date_garantie"`
}

// CreateEquipement validates and persists a new equipment, then makes it
// visible in the ledger.
func (s *CatalogService) CreateEquipement(ctx context.Context, input CreateEquipementInput) (*model.Equipement, error) {
	input.CodeIMO = strings.TrimSpace(input.CodeIMO)
	input.NomTesteur = strings.TrimSpace(input.NomTesteur)
	input.NomEquipement = strings.TrimSpace(input.NomEquipement)
	input.Designation = strings.TrimSpace(input.Designation)
	input.Categorie = strings.TrimSpace(input.Categorie)

	if input.CodeIMO == "" || input.NomTesteur == "" || input.NomEquipement == "" ||
		input.Designation == "" || input.Categorie == "" {
		return nil, &engine.ValidationError{Message: "Champs requis manquants."}
	}
	if input.Nombre < 0 {
		return nil, &engine.ValidationError{Field: "nombre", Message: "Nombre invalide."}
	}

	e := &model.Equipement{
		CodeIMO:       input.CodeIMO,
		NomTesteur:    input.NomTesteur,
		NomEquipement: input.NomEquipement,
		Designation:   input.Designation,
		Arborescence:  strings.TrimSpace(input.Arborescence),
		Categorie:     input.Categorie,
		Nombre:        input.Nombre,
	}

	var err error
	if e.DateMiseEnMarche, err = parseDate(input.DateMiseEnMarche, "date_mise_en_marche"); err != nil {
		return nil, err
	}
	if e.DateGarantie, err = parseDate(input.DateGarantie, "date_garantie"); err != nil {
		return nil, err
	}

	if err := s.repo.CreateEquipement(ctx, e); err != nil {
		s.eng.Bus.Publish("Impossible de créer l'équipement.", engine.SeverityError)
		return nil, &engine.UpstreamError{Op: "create equipement", Err: err}
	}

	s.eng.Ledger.Upsert(*e)
	s.InvalidateCatalog(ctx)
	s.eng.Bus.Publish("Équipement ajouté avec succès", engine.SeveritySuccess)
	return e, nil
}

// parseDate accepts an empty, RFC3339, or YYYY-MM-DD date string.
func parseDate(value, field string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, &engine.ValidationError{Field: field, Message: "date invalide"}
}

// UpdateStock sets the absolute quantity of one equipment.
func (s *CatalogService) UpdateStock(ctx context.Context, id int64, nombre int64) (*model.Equipement, error) {
	e, err := s.eng.Ledger.SetQuantity(ctx, id, nombre)
	if err != nil {
		s.publishStockError(err)
		return nil, err
	}
	s.InvalidateCatalog(ctx)
	s.eng.Bus.Publish(fmt.Sprintf("Quantité mise à jour pour l'équipement #%d", id), engine.SeveritySuccess)
	return &e, nil
}

// Withdraw subtracts a quantity from one equipment's stock, rejecting
// withdrawals above the available quantity.
func (s *CatalogService) Withdraw(ctx context.Context, id int64, quantity int64) (*model.Equipement, error) {
	if quantity <= 0 {
		return nil, &engine.ValidationError{Field: "quantity", Message: "must be positive"}
	}

	current, ok := s.eng.Ledger.Get(id)
	if !ok {
		return nil, engine.ErrNotFound
	}
	if quantity > current.Nombre {
		s.eng.Bus.Publish(fmt.Sprintf("Stock insuffisant. Disponible: %d", current.Nombre), engine.SeverityWarning)
		return nil, engine.ErrInsufficientStock
	}

	e, err := s.eng.Ledger.AdjustQuantity(ctx, id, -quantity)
	if err != nil {
		s.publishStockError(err)
		return nil, err
	}
	s.InvalidateCatalog(ctx)
	s.eng.Bus.Publish(fmt.Sprintf("Stock mis à jour pour %s", e.NomEquipement), engine.SeveritySuccess)
	return &e, nil
}

func (s *CatalogService) publishStockError(err error) {
	switch err {
	case engine.ErrNotFound:
		// Stale UI reference, nothing to report.
	default:
		s.eng.Bus.Publish("Erreur lors de la mise à jour du stock", engine.SeverityError)
	}
}

// ListNotes returns all notes.
func (s *CatalogService) ListNotes(ctx context.Context) ([]model.Note, error) {
	if s.notes == nil {
		return []model.Note{}, nil
	}
	return s.notes.ListNotes(ctx)
}

// CreateNote validates and persists a note.
func (s *CatalogService) CreateNote(ctx context.Context, content string) (*model.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &engine.ValidationError{Field: "content", Message: "Le contenu est requis."}
	}
	if s.notes == nil {
		return nil, &engine.UpstreamError{Op: "create note", Err: fmt.Errorf("note store unavailable")}
	}

	n := &model.Note{Content: content}
	if err := s.notes.CreateNote(ctx, n); err != nil {
		return nil, &engine.UpstreamError{Op: "create note", Err: err}
	}
	return n, nil
}

// GetStoreStats returns statistics about the backing store database.
func (s *CatalogService) GetStoreStats(ctx context.Context) (map[string]interface{}, error) {
	return s.repo.GetStats(ctx)
}

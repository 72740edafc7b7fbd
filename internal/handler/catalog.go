package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"magasin-api/internal/engine"
	"magasin-api/internal/service"
	"magasin-api/pkg/apierror"
	"magasin-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// CatalogHandler handles equipment catalog and note HTTP requests.
type CatalogHandler struct {
	catalog *service.CatalogService
	eng     *engine.Engine
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalog *service.CatalogService, eng *engine.Engine) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, eng: eng}
}

// equipementID parses the {id} URL parameter.
func equipementID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.BadRequest("invalid equipment id")
	}
	return id, nil
}

// List handles GET /api/v1/equipements
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	equipements, err := h.catalog.ListEquipements(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	response.OK(w, equipements)
}

// Get handles GET /api/v1/equipements/{id}
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := equipementID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	e, ok := h.eng.Ledger.Get(id)
	if !ok {
		response.Error(w, apierror.NotFound("equipment not found"))
		return
	}
	response.OK(w, e)
}

// Create handles POST /api/v1/equipements
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateEquipementInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	e, err := h.catalog.CreateEquipement(r.Context(), input)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	response.Created(w, e)
}

// UpdateStock handles PUT /api/v1/equipements/{id}/stock
func (h *CatalogHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, err := equipementID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	var body struct {
		Nombre int64 `json:"nombre"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	e, err := h.catalog.UpdateStock(r.Context(), id, body.Nombre)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	response.OK(w, e)
}

// Withdraw handles POST /api/v1/equipements/{id}/retrait
func (h *CatalogHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	id, err := equipementID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	var body struct {
		Quantity int64 `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	e, err := h.catalog.Withdraw(r.Context(), id, body.Quantity)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	response.OK(w, e)
}

// StoreStats handles GET /api/v1/stats/store
func (h *CatalogHandler) StoreStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.catalog.GetStoreStats(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	response.OK(w, stats)
}

// ListNotes handles GET /api/v1/notes
func (h *CatalogHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.catalog.ListNotes(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	response.OK(w, notes)
}

// CreateNote handles POST /api/v1/notes
func (h *CatalogHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	n, err := h.catalog.CreateNote(r.Context(), body.Content)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	response.Created(w, n)
}

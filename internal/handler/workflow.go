package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"magasin-api/internal/engine"
	"magasin-api/internal/model"
	"magasin-api/pkg/apierror"
	"magasin-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// WorkflowHandler handles equipment request and technician panel HTTP
// requests.
type WorkflowHandler struct {
	workflow *engine.RequestWorkflow
}

// NewWorkflowHandler creates a new workflow handler.
func NewWorkflowHandler(workflow *engine.RequestWorkflow) *WorkflowHandler {
	return &WorkflowHandler{workflow: workflow}
}

func technicienID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.BadRequest("invalid technician id")
	}
	return id, nil
}

// ListRequests handles GET /api/v1/demandes
func (h *WorkflowHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.workflow.Requests())
}

// GenerateRequest handles POST /api/v1/demandes/generer
func (h *WorkflowHandler) GenerateRequest(w http.ResponseWriter, r *http.Request) {
	req := h.workflow.Generate()
	if req == nil {
		response.Error(w, apierror.Conflict("no technician or equipment available"))
		return
	}
	response.Created(w, req)
}

// ApproveRequest handles POST /api/v1/demandes/{id}/approuver
func (h *WorkflowHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "id")
	if !h.workflow.Approve(requestID) {
		response.Error(w, apierror.NotFound("no pending request with this id"))
		return
	}
	response.OK(w, map[string]string{"id": requestID, "statut": string(engine.StatusApproved)})
}

// RefuseRequest handles POST /api/v1/demandes/{id}/refuser
func (h *WorkflowHandler) RefuseRequest(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "id")
	if !h.workflow.Refuse(requestID) {
		response.Error(w, apierror.NotFound("no pending request with this id"))
		return
	}
	response.OK(w, map[string]string{"id": requestID, "statut": string(engine.StatusRefused)})
}

// ListTechniciens handles GET /api/v1/techniciens
func (h *WorkflowHandler) ListTechniciens(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.workflow.Roster())
}

// RefreshTechniciens handles POST /api/v1/techniciens/actualiser
func (h *WorkflowHandler) RefreshTechniciens(w http.ResponseWriter, r *http.Request) {
	if err := h.workflow.RefreshRoster(r.Context()); err != nil {
		writeEngineError(w, err)
		return
	}
	response.OK(w, h.workflow.Roster())
}

// ProposeSelection handles POST /api/v1/techniciens/{id}/proposition
func (h *WorkflowHandler) ProposeSelection(w http.ResponseWriter, r *http.Request) {
	if _, err := technicienID(r); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, h.workflow.ProposeAssignment())
}

// ValidateSelection handles POST /api/v1/techniciens/{id}/selection
func (h *WorkflowHandler) ValidateSelection(w http.ResponseWriter, r *http.Request) {
	id, err := technicienID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	var body struct {
		Equipements []model.Equipement `json:"equipements"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if len(body.Equipements) == 0 {
		response.Error(w, apierror.BadRequest("equipements is required"))
		return
	}

	if err := h.workflow.ValidateAssignment(id, body.Equipements); err != nil {
		writeEngineError(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"technicien_id": id, "equipements": body.Equipements})
}

// GetSelection handles GET /api/v1/techniciens/{id}/selection
func (h *WorkflowHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	id, err := technicienID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	equipements, ok := h.workflow.Assignment(id)
	if !ok {
		response.Error(w, apierror.NotFound("no validated selection for this technician"))
		return
	}
	response.OK(w, equipements)
}

// ResolveSelection handles POST /api/v1/techniciens/{id}/resolution
func (h *WorkflowHandler) ResolveSelection(w http.ResponseWriter, r *http.Request) {
	id, err := technicienID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	var body struct {
		Approve bool `json:"approve"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	if err := h.workflow.ResolveAssignment(r.Context(), id, body.Approve); err != nil {
		writeEngineError(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"technicien_id": id, "approved": body.Approve})
}

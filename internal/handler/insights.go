package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"magasin-api/internal/engine"
	"magasin-api/pkg/apierror"
	"magasin-api/pkg/response"
)

// InsightsHandler handles alerts, predictions, stats, favorites,
// maintenance, and rating HTTP requests.
type InsightsHandler struct {
	eng *engine.Engine
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(eng *engine.Engine) *InsightsHandler {
	return &InsightsHandler{eng: eng}
}

// Alerts handles GET /api/v1/alertes
func (h *InsightsHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.eng.Alerts.Alerts())
}

// RefreshAlerts handles POST /api/v1/alertes/actualiser
func (h *InsightsHandler) RefreshAlerts(w http.ResponseWriter, r *http.Request) {
	h.eng.Alerts.Refresh(h.eng.Ledger.Snapshot())
	response.OK(w, h.eng.Alerts.Alerts())
}

// Predictions handles GET /api/v1/predictions
func (h *InsightsHandler) Predictions(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.eng.Predictions.Predictions())
}

// Stats handles GET /api/v1/stats
func (h *InsightsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.eng.Stats())
}

// ToggleFavorite handles POST /api/v1/equipements/{id}/favori
func (h *InsightsHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := equipementID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	fav, err := h.eng.ToggleFavorite(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"equipement_id": id, "favori": fav})
}

// Favorites handles GET /api/v1/favoris
func (h *InsightsHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.eng.Favorites())
}

// ScheduleMaintenance handles POST /api/v1/equipements/{id}/maintenance/planifier
func (h *InsightsHandler) ScheduleMaintenance(w http.ResponseWriter, r *http.Request) {
	id, err := equipementID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	var body struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	date, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		response.Error(w, apierror.BadRequest("date must be YYYY-MM-DD"))
		return
	}

	if err := h.eng.ScheduleMaintenance(id, date); err != nil {
		writeEngineError(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"equipement_id": id, "date": date.Format("2006-01-02")})
}

// AddMaintenance handles POST /api/v1/equipements/{id}/maintenance
func (h *InsightsHandler) AddMaintenance(w http.ResponseWriter, r *http.Request) {
	id, err := equipementID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	var body struct {
		Type        string `json:"type"`
		Description string `json:"description"`
		Technician  string `json:"technician"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	record, err := h.eng.AddMaintenanceRecord(id, engine.MaintenanceType(body.Type), body.Description, body.Technician)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	response.Created(w, record)
}

// MaintenanceHistory handles GET /api/v1/maintenance. An optional
// equipement_id query parameter filters to one equipment.
func (h *InsightsHandler) MaintenanceHistory(w http.ResponseWriter, r *http.Request) {
	var id int64
	if raw := r.URL.Query().Get("equipement_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			response.Error(w, apierror.BadRequest("invalid equipement_id"))
			return
		}
		id = parsed
	}
	response.OK(w, h.eng.MaintenanceHistory(id))
}

// AddRating handles POST /api/v1/equipements/{id}/evaluations
func (h *InsightsHandler) AddRating(w http.ResponseWriter, r *http.Request) {
	id, err := equipementID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	var body struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
		UserID  string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	rating, err := h.eng.AddRating(id, body.Rating, body.Comment, body.UserID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	response.Created(w, rating)
}

// Ratings handles GET /api/v1/equipements/{id}/evaluations
func (h *InsightsHandler) Ratings(w http.ResponseWriter, r *http.Request) {
	id, err := equipementID(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, h.eng.Ratings(id))
}

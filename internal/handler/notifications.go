package handler

import (
	"net/http"

	"magasin-api/internal/engine"
	"magasin-api/pkg/response"
)

// NotificationHandler handles notification HTTP requests.
type NotificationHandler struct {
	bus *engine.NotificationBus
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(bus *engine.NotificationBus) *NotificationHandler {
	return &NotificationHandler{bus: bus}
}

// List handles GET /api/v1/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.bus.List())
}

// MarkAllRead handles POST /api/v1/notifications/lues
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	h.bus.MarkAllRead()
	response.OK(w, h.bus.List())
}

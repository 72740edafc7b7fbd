package handler

import (
	"encoding/json"
	"net/http"

	"magasin-api/internal/engine"
	"magasin-api/pkg/apierror"
	"magasin-api/pkg/response"
)

// CartHandler handles per-session cart HTTP requests. The session is
// identified by the X-Session-ID header.
type CartHandler struct {
	carts *engine.Carts
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts *engine.Carts) *CartHandler {
	return &CartHandler{carts: carts}
}

// cartView is the serialized cart state returned by every cart endpoint.
type cartView struct {
	Lines       []engine.CartLineView `json:"lines"`
	TotalItems  int64                 `json:"total_items"`
	OrderPlaced bool                  `json:"order_placed"`
}

func (h *CartHandler) cart(w http.ResponseWriter, r *http.Request) (*engine.Cart, bool) {
	sessionID := r.Header.Get("X-Session-ID")
	if sessionID == "" {
		response.Error(w, apierror.BadRequest("X-Session-ID header is required"))
		return nil, false
	}
	return h.carts.GetOrCreate(sessionID), true
}

func view(c *engine.Cart) cartView {
	return cartView{
		Lines:       c.Lines(),
		TotalItems:  c.TotalItems(),
		OrderPlaced: c.OrderPlaced(),
	}
}

// Get handles GET /api/v1/panier
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.cart(w, r)
	if !ok {
		return
	}
	response.OK(w, view(c))
}

// Add handles POST /api/v1/panier/{id}
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	c, ok := h.cart(w, r)
	if !ok {
		return
	}
	id, err := equipementID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := c.Add(id); err != nil {
		writeEngineError(w, err)
		return
	}
	response.OK(w, view(c))
}

// UpdateQuantity handles PUT /api/v1/panier/{id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	c, ok := h.cart(w, r)
	if !ok {
		return
	}
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

	if err := c.UpdateQuantity(r.Context(), id, body.Quantity); err != nil {
		writeEngineError(w, err)
		return
	}
	response.OK(w, view(c))
}

// Remove handles DELETE /api/v1/panier/{id}
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	c, ok := h.cart(w, r)
	if !ok {
		return
	}
	id, err := equipementID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := c.Remove(r.Context(), id); err != nil {
		writeEngineError(w, err)
		return
	}
	response.OK(w, view(c))
}

// PlaceOrder handles POST /api/v1/panier/commande
func (h *CartHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	c, ok := h.cart(w, r)
	if !ok {
		return
	}

	if err := c.PlaceOrder(r.Context()); err != nil {
		writeEngineError(w, err)
		return
	}
	response.OK(w, view(c))
}

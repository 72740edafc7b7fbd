package engine

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CartLine is one reserved line item. It references equipment by id only;
// equipment fields are resolved against the ledger at read time.
type CartLine struct {
	EquipementID int64 `json:"equipement_id"`
	Quantity     int64 `json:"quantity"`
}

// CartLineView is a line resolved against the current ledger state, for
// the presentation layer.
type CartLineView struct {
	CartLine
	NomEquipement string `json:"nom_equipement"`
	Designation   string `json:"designation"`
	Categorie     string `json:"categorie"`
	NombreEnStock int64  `json:"nombre_en_stock"`
}

// Cart is one session's reservation list. The cart is optimistic and
// non-reserving: Add and UpdateQuantity validate against current stock
// but the ledger is only decremented at order placement, so two sessions
// can both hold the last unit and the second PlaceOrder fails.
type Cart struct {
	mu           sync.Mutex
	sessionID    string
	ledger       *StockLedger
	bus          *NotificationBus
	resetDelay   time.Duration
	lines        []CartLine
	orderPlaced  bool
	resetTimer   *time.Timer
	lastActivity time.Time
}

func newCart(sessionID string, ledger *StockLedger, bus *NotificationBus, resetDelay time.Duration) *Cart {
	return &Cart{
		sessionID:    sessionID,
		ledger:       ledger,
		bus:          bus,
		resetDelay:   resetDelay,
		lastActivity: time.Now(),
	}
}

func (c *Cart) touch() {
	c.lastActivity = time.Now()
}

// Add puts one unit of the equipment in the cart. Out-of-stock equipment
// is rejected with an error notification; the check is against displayed
// stock only (order placement revalidates).
func (c *Cart) Add(equipementID int64) error {
	e, ok := c.ledger.Get(equipementID)
	if !ok {
		return ErrNotFound
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	if e.Nombre <= 0 {
		c.bus.Publish("Cet équipement n'est plus disponible en stock", SeverityError)
		return ErrInsufficientStock
	}

	for i := range c.lines {
		if c.lines[i].EquipementID == equipementID {
			c.lines[i].Quantity++
			c.bus.Publish(fmt.Sprintf("%s ajouté au panier", e.NomEquipement), SeveritySuccess)
			return nil
		}
	}
	c.lines = append(c.lines, CartLine{EquipementID: equipementID, Quantity: 1})
	c.bus.Publish(fmt.Sprintf("%s ajouté au panier", e.NomEquipement), SeveritySuccess)
	return nil
}

// Remove drops a line and restores its full quantity to the ledger.
// Removing an absent line is a no-op. If the ledger restoration fails the
// cart is left unchanged so cart and ledger never drift.
func (c *Cart) Remove(ctx context.Context, equipementID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	idx := -1
	for i := range c.lines {
		if c.lines[i].EquipementID == equipementID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}

	line := c.lines[idx]
	e, err := c.ledger.AdjustQuantity(ctx, equipementID, line.Quantity)
	if err != nil {
		c.bus.Publish("Erreur lors de la mise à jour du stock", SeverityError)
		return err
	}

	c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	c.bus.Publish(fmt.Sprintf("%s retiré du panier", e.NomEquipement), SeverityInfo)
	return nil
}

// UpdateQuantity sets a line's quantity. A non-positive quantity behaves
// as Remove; a quantity above the currently available stock is rejected
// with a warning and the cart is left unchanged.
func (c *Cart) UpdateQuantity(ctx context.Context, equipementID int64, quantity int64) error {
	if quantity <= 0 {
		return c.Remove(ctx, equipementID)
	}

	e, ok := c.ledger.Get(equipementID)
	if !ok {
		return ErrNotFound
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	if quantity > e.Nombre {
		c.bus.Publish(fmt.Sprintf("Stock insuffisant. Disponible: %d", e.Nombre), SeverityWarning)
		return ErrInsufficientStock
	}

	for i := range c.lines {
		if c.lines[i].EquipementID == equipementID {
			c.lines[i].Quantity = quantity
			c.bus.Publish(fmt.Sprintf("Quantité mise à jour pour %s", e.NomEquipement), SeveritySuccess)
			return nil
		}
	}
	return nil
}

// PlaceOrder validates every line against current stock and applies all
// decrements atomically. If any line fails validation the whole order is
// rejected and no decrement is applied. On success the cart is cleared
// and the confirmation flag auto-resets after the configured delay.
func (c *Cart) PlaceOrder(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	if len(c.lines) == 0 {
		return ErrEmptyCart
	}

	if _, err := c.ledger.ApplyDecrements(ctx, c.lines); err != nil {
		c.bus.Publish("Erreur lors de la validation du panier.", SeverityError)
		return err
	}

	c.lines = nil
	c.orderPlaced = true
	c.bus.Publish("Commande envoyée avec succès!", SeveritySuccess)

	if c.resetTimer != nil {
		c.resetTimer.Stop()
	}
	c.resetTimer = time.AfterFunc(c.resetDelay, func() {
		c.mu.Lock()
		c.orderPlaced = false
		c.mu.Unlock()
	})
	return nil
}

// Lines returns the cart lines resolved against the current ledger.
func (c *Cart) Lines() []CartLineView {
	c.mu.Lock()
	lines := make([]CartLine, len(c.lines))
	copy(lines, c.lines)
	c.mu.Unlock()

	views := make([]CartLineView, 0, len(lines))
	for _, line := range lines {
		v := CartLineView{CartLine: line}
		if e, ok := c.ledger.Get(line.EquipementID); ok {
			v.NomEquipement = e.NomEquipement
			v.Designation = e.Designation
			v.Categorie = e.Categorie
			v.NombreEnStock = e.Nombre
		}
		views = append(views, v)
	}
	return views
}

// TotalItems returns the summed quantity across all lines.
func (c *Cart) TotalItems() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

// OrderPlaced reports whether an order confirmation is currently shown.
func (c *Cart) OrderPlaced() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orderPlaced
}

// Close cancels the pending confirmation reset, if any.
func (c *Cart) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resetTimer != nil {
		c.resetTimer.Stop()
		c.resetTimer = nil
	}
}

// Carts is the per-session cart registry.
type Carts struct {
	mu         sync.Mutex
	ledger     *StockLedger
	bus        *NotificationBus
	resetDelay time.Duration
	sessions   map[string]*Cart
}

// NewCarts creates an empty registry.
func NewCarts(ledger *StockLedger, bus *NotificationBus, resetDelay time.Duration) *Carts {
	return &Carts{
		ledger:     ledger,
		bus:        bus,
		resetDelay: resetDelay,
		sessions:   make(map[string]*Cart),
	}
}

// GetOrCreate returns the session's cart, creating it on first use.
func (cs *Carts) GetOrCreate(sessionID string) *Cart {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if c, ok := cs.sessions[sessionID]; ok {
		return c
	}
	c := newCart(sessionID, cs.ledger, cs.bus, cs.resetDelay)
	cs.sessions[sessionID] = c
	return c
}

// PurgeIdle drops carts with no activity since the threshold. The cart
// never holds a hard reservation, so nothing needs restoring.
func (cs *Carts) PurgeIdle(threshold time.Duration) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cutoff := time.Now().Add(-threshold)
	purged := 0
	for id, c := range cs.sessions {
		c.mu.Lock()
		idle := c.lastActivity.Before(cutoff)
		c.mu.Unlock()
		if idle {
			c.Close()
			delete(cs.sessions, id)
			purged++
		}
	}
	return purged
}

// Len returns the number of live sessions.
func (cs *Carts) Len() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.sessions)
}

// CloseAll tears down every cart's timers.
func (cs *Carts) CloseAll() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for _, c := range cs.sessions {
		c.Close()
	}
}

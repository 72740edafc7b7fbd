package engine

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"magasin-api/internal/model"
	"magasin-api/pkg/uid"
)

// RequestStatus is the lifecycle state of an equipment request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRefused  RequestStatus = "refused"
)

// EquipmentRequest is one technician equipment request. The equipment
// list is an intentional snapshot: it records what was available and
// chosen at creation time, not live references.
type EquipmentRequest struct {
	ID          string             `json:"id"`
	Technicien  model.Technicien   `json:"technicien"`
	Equipements []model.Equipement `json:"equipements"`
	CreatedAt   time.Time          `json:"date_creation"`
	Status      RequestStatus      `json:"statut"`
}

// TechnicienDirectory is the external roster collaborator.
type TechnicienDirectory interface {
	ListTechniciens(ctx context.Context) ([]model.Technicien, error)
	DeleteDemande(ctx context.Context, technicienID int64) error
}

// RequestWorkflow generates, tracks, and resolves technician equipment
// requests. Pending requests persist until acted upon; terminal requests
// are removed after a fixed delay.
type RequestWorkflow struct {
	mu            sync.Mutex
	ledger        *StockLedger
	bus           *NotificationBus
	directory     TechnicienDirectory
	rng           *rand.Rand
	removalDelay  time.Duration
	probability   float64
	roster        []model.Technicien
	requests      map[string]*EquipmentRequest
	order         []string
	removalTimers map[string]*time.Timer
	assignments   map[int64][]model.Equipement
	closed        bool
}

// NewRequestWorkflow creates a workflow. directory may be nil, in which
// case the roster stays empty and no request is ever generated.
func NewRequestWorkflow(ledger *StockLedger, bus *NotificationBus, directory TechnicienDirectory, rng *rand.Rand, removalDelay time.Duration, probability float64) *RequestWorkflow {
	return &RequestWorkflow{
		ledger:        ledger,
		bus:           bus,
		directory:     directory,
		rng:           rng,
		removalDelay:  removalDelay,
		probability:   probability,
		requests:      make(map[string]*EquipmentRequest),
		removalTimers: make(map[string]*time.Timer),
		assignments:   make(map[int64][]model.Equipement),
	}
}

// RefreshRoster reloads the technician roster from the directory.
func (w *RequestWorkflow) RefreshRoster(ctx context.Context) error {
	if w.directory == nil {
		return nil
	}
	roster, err := w.directory.ListTechniciens(ctx)
	if err != nil {
		return &UpstreamError{Op: "list techniciens", Err: err}
	}
	w.mu.Lock()
	w.roster = roster
	w.mu.Unlock()
	return nil
}

// Roster returns the currently loaded technician roster.
func (w *RequestWorkflow) Roster() []model.Technicien {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.Technicien, len(w.roster))
	copy(out, w.roster)
	return out
}

// MaybeGenerate rolls the generation probability and creates one pending
// request on success. Called on each randomized scheduler tick.
func (w *RequestWorkflow) MaybeGenerate() {
	if w.rollProbability() {
		w.Generate()
	}
}

func (w *RequestWorkflow) rollProbability() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rng.Float64() < w.probability
}

// NextGenerationDelay draws the delay before the next generation tick,
// uniform in [min, max).
func (w *RequestWorkflow) NextGenerationDelay(min, max time.Duration) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if max <= min {
		return min
	}
	return min + time.Duration(w.rng.Int63n(int64(max-min)))
}

// Generate creates one pending request for a random technician with 1-4
// random equipment items snapshotted from the current catalog. Returns
// nil when the roster or catalog is empty.
func (w *RequestWorkflow) Generate() *EquipmentRequest {
	snapshot := w.ledger.Snapshot()

	w.mu.Lock()
	if w.closed || len(w.roster) == 0 || len(snapshot) == 0 {
		w.mu.Unlock()
		return nil
	}

	technicien := w.roster[w.rng.Intn(len(w.roster))]
	count := w.rng.Intn(4) + 1
	if count > len(snapshot) {
		count = len(snapshot)
	}
	w.rng.Shuffle(len(snapshot), func(i, j int) {
		snapshot[i], snapshot[j] = snapshot[j], snapshot[i]
	})

	req := &EquipmentRequest{
		ID:          fmt.Sprintf("demande_%d_%s", time.Now().UnixMilli(), uid.Short()),
		Technicien:  technicien,
		Equipements: append([]model.Equipement{}, snapshot[:count]...),
		CreatedAt:   time.Now(),
		Status:      StatusPending,
	}
	w.requests[req.ID] = req
	w.order = append(w.order, req.ID)
	w.mu.Unlock()

	w.bus.Publish(fmt.Sprintf("Nouvelle demande de %s", technicien.FullName()), SeverityInfo)
	return req
}

// Approve transitions a pending request to approved and schedules its
// removal. Absent or already-terminal requests are a no-op.
func (w *RequestWorkflow) Approve(requestID string) bool {
	if !w.transition(requestID, StatusApproved) {
		return false
	}
	w.bus.Publish("Demande approuvée avec succès", SeveritySuccess)
	return true
}

// Refuse transitions a pending request to refused and schedules its
// removal. Absent or already-terminal requests are a no-op.
func (w *RequestWorkflow) Refuse(requestID string) bool {
	if !w.transition(requestID, StatusRefused) {
		return false
	}
	w.bus.Publish("Demande refusée", SeverityError)
	return true
}

func (w *RequestWorkflow) transition(requestID string, status RequestStatus) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	req, ok := w.requests[requestID]
	if !ok || req.Status != StatusPending || w.closed {
		return false
	}
	req.Status = status
	w.removalTimers[requestID] = time.AfterFunc(w.removalDelay, func() {
		w.remove(requestID)
	})
	return true
}

// remove drops a request from the active set. Removing an absent id is a
// no-op so the delayed removal is safe to run after any other path has
// already removed the entry.
func (w *RequestWorkflow) remove(requestID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.removalTimers[requestID]; ok {
		t.Stop()
		delete(w.removalTimers, requestID)
	}
	if _, ok := w.requests[requestID]; !ok {
		return
	}
	delete(w.requests, requestID)
	for i, id := range w.order {
		if id == requestID {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

// Requests returns the active requests in creation order.
func (w *RequestWorkflow) Requests() []EquipmentRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]EquipmentRequest, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, *w.requests[id])
	}
	return out
}

// ProposeAssignment picks 2-3 random equipment items as a candidate
// selection for one technician. The proposal is not stored; it becomes
// an assignment only through ValidateAssignment.
func (w *RequestWorkflow) ProposeAssignment() []model.Equipement {
	snapshot := w.ledger.Snapshot()

	w.mu.Lock()
	defer w.mu.Unlock()
	count := w.rng.Intn(2) + 2
	if count > len(snapshot) {
		count = len(snapshot)
	}
	w.rng.Shuffle(len(snapshot), func(i, j int) {
		snapshot[i], snapshot[j] = snapshot[j], snapshot[i]
	})
	return append([]model.Equipement{}, snapshot[:count]...)
}

// ValidateAssignment stores a curated equipment selection for one
// technician.
func (w *RequestWorkflow) ValidateAssignment(technicienID int64, equipements []model.Equipement) error {
	w.mu.Lock()
	technicien, ok := w.findTechnicien(technicienID)
	if !ok {
		w.mu.Unlock()
		return ErrNotFound
	}
	w.assignments[technicienID] = append([]model.Equipement{}, equipements...)
	w.mu.Unlock()

	w.bus.Publish(fmt.Sprintf("Sélection validée pour %s", technicien.FullName()), SeveritySuccess)
	return nil
}

// Assignment returns the stored selection for one technician, if any.
func (w *RequestWorkflow) Assignment(technicienID int64) ([]model.Equipement, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	a, ok := w.assignments[technicienID]
	if !ok {
		return nil, false
	}
	return append([]model.Equipement{}, a...), true
}

// ResolveAssignment closes a technician's stored assignment: it asks the
// directory to delete the upstream request and removes the local entry
// only on success. approve selects the notification wording. On upstream
// failure the local assignment is preserved.
func (w *RequestWorkflow) ResolveAssignment(ctx context.Context, technicienID int64, approve bool) error {
	w.mu.Lock()
	technicien, ok := w.findTechnicien(technicienID)
	w.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	if w.directory == nil {
		return &UpstreamError{Op: "delete demande", Err: fmt.Errorf("no technician directory configured")}
	}
	if err := w.directory.DeleteDemande(ctx, technicienID); err != nil {
		w.bus.Publish(fmt.Sprintf("Erreur lors de la suppression: %v", err), SeverityError)
		return &UpstreamError{Op: "delete demande", Err: err}
	}

	w.mu.Lock()
	delete(w.assignments, technicienID)
	w.mu.Unlock()

	if approve {
		w.bus.Publish(fmt.Sprintf("Demande validée et supprimée pour %s", technicien.FullName()), SeveritySuccess)
	} else {
		w.bus.Publish(fmt.Sprintf("Demande refusée et supprimée pour %s", technicien.FullName()), SeverityError)
	}
	return nil
}

// findTechnicien looks up a roster member. Caller holds w.mu.
func (w *RequestWorkflow) findTechnicien(id int64) (model.Technicien, bool) {
	for _, t := range w.roster {
		if t.ID == id {
			return t, true
		}
	}
	return model.Technicien{}, false
}

// Close cancels every pending removal timer.
func (w *RequestWorkflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	for id, t := range w.removalTimers {
		t.Stop()
		delete(w.removalTimers, id)
	}
	log.Printf("[RequestWorkflow] Stopped (%d active requests)", len(w.requests))
}

package engine

import (
	"math/rand"
	"sync"
	"time"

	"magasin-api/internal/model"
)

// PredictionEntry is one heuristic stock/maintenance projection. The
// contract is bounded, plausible-looking values, not accuracy.
type PredictionEntry struct {
	EquipementID    int64     `json:"equipement_id"`
	PredictedStock  int64     `json:"predicted_stock"`
	Confidence      float64   `json:"confidence"`
	NextMaintenance time.Time `json:"next_maintenance"`
}

// ComputePredictions derives one entry per equipment from a snapshot.
// predictedStock = max(0, nombre - [0,5)), confidence in [0.8, 1.0),
// nextMaintenance within the next 30 days.
func ComputePredictions(snapshot []model.Equipement, now time.Time, rng *rand.Rand) []PredictionEntry {
	entries := make([]PredictionEntry, 0, len(snapshot))
	for _, e := range snapshot {
		predicted := e.Nombre - rng.Int63n(5)
		if predicted < 0 {
			predicted = 0
		}
		entries = append(entries, PredictionEntry{
			EquipementID:    e.ID,
			PredictedStock:  predicted,
			Confidence:      0.8 + rng.Float64()*0.2,
			NextMaintenance: now.Add(time.Duration(rng.Float64() * 30 * 24 * float64(time.Hour))),
		})
	}
	return entries
}

// PredictionEngine holds the current projection set, replaced wholesale
// on each cycle.
type PredictionEngine struct {
	mu      sync.Mutex
	rng     *rand.Rand
	now     func() time.Time
	entries []PredictionEntry
}

// NewPredictionEngine creates a prediction engine with an injected
// random source so tests can seed it.
func NewPredictionEngine(rng *rand.Rand) *PredictionEngine {
	return &PredictionEngine{rng: rng, now: time.Now}
}

// Refresh recomputes all projections from the snapshot.
func (p *PredictionEngine) Refresh(snapshot []model.Equipement) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = ComputePredictions(snapshot, p.now(), p.rng)
}

// Predictions returns the current projection set.
func (p *PredictionEngine) Predictions() []PredictionEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PredictionEntry, len(p.entries))
	copy(out, p.entries)
	return out
}

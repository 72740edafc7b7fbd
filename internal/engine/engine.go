package engine

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"
)

// Config holds the engine's timings, thresholds, and probabilities.
type Config struct {
	NotificationTTL     time.Duration
	RequestRemovalDelay time.Duration
	OrderResetDelay     time.Duration
	AlertInterval       time.Duration
	PredictionInterval  time.Duration
	RequestMinInterval  time.Duration
	RequestMaxInterval  time.Duration
	RequestProbability  float64
	CartIdleThreshold   time.Duration
	CartSweepInterval   time.Duration
	LowStockThreshold   int64
	MaintenanceMonths   float64
	WarrantyWindowDays  float64
	RandomSeed          int64
}

// DefaultConfig returns the production timings of the store.
func DefaultConfig() Config {
	return Config{
		NotificationTTL:     3 * time.Second,
		RequestRemovalDelay: 3 * time.Second,
		OrderResetDelay:     3 * time.Second,
		AlertInterval:       time.Hour,
		PredictionInterval:  24 * time.Hour,
		RequestMinInterval:  10 * time.Second,
		RequestMaxInterval:  30 * time.Second,
		RequestProbability:  0.3,
		CartIdleThreshold:   30 * time.Minute,
		CartSweepInterval:   5 * time.Minute,
		LowStockThreshold:   5,
		MaintenanceMonths:   6,
		WarrantyWindowDays:  30,
	}
}

// MaintenanceType classifies a maintenance record.
type MaintenanceType string

const (
	MaintenancePreventive MaintenanceType = "preventive"
	MaintenanceCorrective MaintenanceType = "corrective"
)

// MaintenanceRecord is one append-only maintenance history entry.
type MaintenanceRecord struct {
	ID           int64           `json:"id"`
	EquipementID int64           `json:"equipement_id"`
	Date         time.Time       `json:"date"`
	Type         MaintenanceType `json:"type"`
	Description  string          `json:"description"`
	Technician   string          `json:"technician"`
}

// EquipmentRating is one append-only user rating.
type EquipmentRating struct {
	ID           int64     `json:"id"`
	EquipementID int64     `json:"equipement_id"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	UserID       string    `json:"user_id"`
	Date         time.Time `json:"date"`
}

// Stats is the dashboard aggregate derived from the ledger.
type Stats struct {
	TotalEquipements int            `json:"total_equipements"`
	Categories       map[string]int `json:"categories"`
	StockBas         int            `json:"stock_bas"`
	Indisponibles    int            `json:"indisponibles"`
}

// Engine wires the reservation and workflow components together and owns
// their timers.
type Engine struct {
	cfg Config

	Ledger      *StockLedger
	Bus         *NotificationBus
	Alerts      *AlertEngine
	Predictions *PredictionEngine
	Workflow    *RequestWorkflow
	Carts       *Carts

	scheduler *Scheduler

	mu          sync.Mutex
	nextLocalID int64
	favorites   map[int64]bool
	maintenance []MaintenanceRecord
	ratings     []EquipmentRating
}

// New creates an engine. store and directory may be nil (memory-only
// ledger, empty roster).
func New(cfg Config, store Store, directory TechnicienDirectory) *Engine {
	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	ledger := NewStockLedger(store)
	bus := NewNotificationBus(cfg.NotificationTTL)

	e := &Engine{
		cfg:         cfg,
		Ledger:      ledger,
		Bus:         bus,
		Alerts: NewAlertEngine(AlertThresholds{
			LowStock:          cfg.LowStockThreshold,
			MaintenanceMonths: cfg.MaintenanceMonths,
			WarrantyDays:      cfg.WarrantyWindowDays,
		}),
		Predictions: NewPredictionEngine(rand.New(rand.NewSource(seed))),
		Workflow: NewRequestWorkflow(ledger, bus, directory,
			rand.New(rand.NewSource(seed+1)), cfg.RequestRemovalDelay, cfg.RequestProbability),
		Carts:       NewCarts(ledger, bus, cfg.OrderResetDelay),
		scheduler:   NewScheduler(),
		nextLocalID: time.Now().UnixMilli(),
		favorites:   make(map[int64]bool),
	}
	return e
}

// Start runs the initial computations and launches the recurring jobs:
// hourly alerts, daily predictions, randomized request generation, and
// the idle-cart sweep.
func (e *Engine) Start(ctx context.Context) {
	if err := e.Workflow.RefreshRoster(ctx); err != nil {
		log.Printf("[Engine] Roster refresh failed: %v", err)
	}
	e.Alerts.Refresh(e.Ledger.Snapshot())
	e.Predictions.Refresh(e.Ledger.Snapshot())

	e.scheduler.Every("alerts", e.cfg.AlertInterval, func() {
		e.Alerts.Refresh(e.Ledger.Snapshot())
	})
	e.scheduler.Every("predictions", e.cfg.PredictionInterval, func() {
		e.Predictions.Refresh(e.Ledger.Snapshot())
	})
	e.scheduler.EveryFunc("request-generator", func() time.Duration {
		return e.Workflow.NextGenerationDelay(e.cfg.RequestMinInterval, e.cfg.RequestMaxInterval)
	}, e.Workflow.MaybeGenerate)
	e.scheduler.Every("cart-sweep", e.cfg.CartSweepInterval, func() {
		if purged := e.Carts.PurgeIdle(e.cfg.CartIdleThreshold); purged > 0 {
			log.Printf("[Engine] Purged %d idle carts", purged)
		}
	})
	e.scheduler.Start()
	log.Printf("[Engine] Started (%d equipements)", e.Ledger.Len())
}

// Stop tears down every timer the engine owns.
func (e *Engine) Stop() {
	e.scheduler.Stop()
	e.Workflow.Close()
	e.Carts.CloseAll()
	e.Bus.Close()
	log.Printf("[Engine] Stopped")
}

func (e *Engine) localID() int64 {
	e.nextLocalID++
	return e.nextLocalID
}

// ToggleFavorite flips an equipment's favorite flag and returns the new
// state.
func (e *Engine) ToggleFavorite(equipementID int64) (bool, error) {
	if _, ok := e.Ledger.Get(equipementID); !ok {
		return false, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.favorites[equipementID] = !e.favorites[equipementID]
	return e.favorites[equipementID], nil
}

// Favorites returns the ids currently flagged as favorites.
func (e *Engine) Favorites() []int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := []int64{}
	for id, fav := range e.favorites {
		if fav {
			out = append(out, id)
		}
	}
	return out
}

// ScheduleMaintenance announces a planned maintenance date for one
// equipment.
func (e *Engine) ScheduleMaintenance(equipementID int64, date time.Time) error {
	eq, ok := e.Ledger.Get(equipementID)
	if !ok {
		return ErrNotFound
	}
	e.Bus.Publish(fmt.Sprintf("Maintenance planifiée pour %s le %s", eq.NomEquipement, date.Format("02/01/2006")), SeverityInfo)
	return nil
}

// AddMaintenanceRecord appends one maintenance history entry.
func (e *Engine) AddMaintenanceRecord(equipementID int64, mType MaintenanceType, description, technician string) (MaintenanceRecord, error) {
	if _, ok := e.Ledger.Get(equipementID); !ok {
		return MaintenanceRecord{}, ErrNotFound
	}
	if mType != MaintenancePreventive && mType != MaintenanceCorrective {
		return MaintenanceRecord{}, &ValidationError{Field: "type", Message: "must be preventive or corrective"}
	}

	e.mu.Lock()
	record := MaintenanceRecord{
		ID:           e.localID(),
		EquipementID: equipementID,
		Date:         time.Now(),
		Type:         mType,
		Description:  description,
		Technician:   technician,
	}
	e.maintenance = append(e.maintenance, record)
	e.mu.Unlock()

	e.Bus.Publish(fmt.Sprintf("Maintenance %s ajoutée pour l'équipement #%d", mType, equipementID), SeverityInfo)
	return record, nil
}

// MaintenanceHistory returns the maintenance entries for one equipment,
// or all entries when equipementID is 0.
func (e *Engine) MaintenanceHistory(equipementID int64) []MaintenanceRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := []MaintenanceRecord{}
	for _, r := range e.maintenance {
		if equipementID == 0 || r.EquipementID == equipementID {
			out = append(out, r)
		}
	}
	return out
}

// AddRating appends one user rating. Ratings are bounded to 1-5.
func (e *Engine) AddRating(equipementID int64, rating int, comment, userID string) (EquipmentRating, error) {
	if _, ok := e.Ledger.Get(equipementID); !ok {
		return EquipmentRating{}, ErrNotFound
	}
	if rating < 1 || rating > 5 {
		return EquipmentRating{}, &ValidationError{Field: "rating", Message: "must be between 1 and 5"}
	}

	e.mu.Lock()
	r := EquipmentRating{
		ID:           e.localID(),
		EquipementID: equipementID,
		Rating:       rating,
		Comment:      comment,
		UserID:       userID,
		Date:         time.Now(),
	}
	e.ratings = append(e.ratings, r)
	e.mu.Unlock()

	e.Bus.Publish("Note ajoutée avec succès", SeveritySuccess)
	return r, nil
}

// Ratings returns the ratings for one equipment, or all when
// equipementID is 0.
func (e *Engine) Ratings(equipementID int64) []EquipmentRating {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := []EquipmentRating{}
	for _, r := range e.ratings {
		if equipementID == 0 || r.EquipementID == equipementID {
			out = append(out, r)
		}
	}
	return out
}

// Stats derives the dashboard aggregate from the current ledger.
func (e *Engine) Stats() Stats {
	snapshot := e.Ledger.Snapshot()
	stats := Stats{
		TotalEquipements: len(snapshot),
		Categories:       make(map[string]int),
	}
	for _, eq := range snapshot {
		stats.Categories[eq.Categorie]++
		if eq.Nombre <= e.cfg.LowStockThreshold {
			stats.StockBas++
		}
		if !eq.Disponible {
			stats.Indisponibles++
		}
	}
	return stats
}

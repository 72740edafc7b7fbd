package engine

import (
	"fmt"
	"math"
	"sync"
	"time"

	"magasin-api/internal/model"
	"magasin-api/pkg/uid"
)

// AlertCategory classifies a smart alert.
type AlertCategory string

const (
	AlertStock       AlertCategory = "stock"
	AlertMaintenance AlertCategory = "maintenance"
	AlertWarranty    AlertCategory = "warranty"
	AlertUsage       AlertCategory = "usage"
)

// AlertPriority orders alerts for display.
type AlertPriority string

const (
	PriorityHigh   AlertPriority = "high"
	PriorityMedium AlertPriority = "medium"
	PriorityLow    AlertPriority = "low"
)

// SmartAlert is one derived alert. The full set is regenerated wholesale
// on every recomputation; alerts carry no state across cycles.
type SmartAlert struct {
	ID           string        `json:"id"`
	Type         AlertCategory `json:"type"`
	Message      string        `json:"message"`
	Priority     AlertPriority `json:"priority"`
	EquipementID int64         `json:"equipement_id"`
	Date         time.Time     `json:"date"`
}

// AlertThresholds parameterizes alert derivation.
type AlertThresholds struct {
	LowStock          int64   // stock alert when Nombre <= LowStock
	MaintenanceMonths float64 // maintenance alert after this many 30-day months in service
	WarrantyDays      float64 // warranty alert when fewer days remain
}

// ComputeAlerts derives the alert set from an equipment snapshot. Pure
// function of the snapshot and the reference time.
func ComputeAlerts(snapshot []model.Equipement, now time.Time, t AlertThresholds) []SmartAlert {
	alerts := []SmartAlert{}

	for _, e := range snapshot {
		if e.Nombre <= t.LowStock {
			priority := PriorityMedium
			if e.Nombre <= 0 {
				priority = PriorityHigh
			}
			alerts = append(alerts, SmartAlert{
				ID:           uid.New(),
				Type:         AlertStock,
				Message:      fmt.Sprintf("Stock bas pour %s (%d restants)", e.NomEquipement, e.Nombre),
				Priority:     priority,
				EquipementID: e.ID,
				Date:         now,
			})
		}

		if e.DateMiseEnMarche != nil {
			// Months in service, counted in 30-day months.
			months := now.Sub(*e.DateMiseEnMarche).Hours() / (24 * 30)
			if months > t.MaintenanceMonths {
				alerts = append(alerts, SmartAlert{
					ID:           uid.New(),
					Type:         AlertMaintenance,
					Message:      fmt.Sprintf("%s nécessite une maintenance préventive", e.NomEquipement),
					Priority:     PriorityMedium,
					EquipementID: e.ID,
					Date:         now,
				})
			}
		}

		if e.DateGarantie != nil {
			days := e.DateGarantie.Sub(now).Hours() / 24
			if days < t.WarrantyDays {
				message := fmt.Sprintf("La garantie de %s a expiré", e.NomEquipement)
				if days >= 0 {
					message = fmt.Sprintf("La garantie de %s expire dans %d jours", e.NomEquipement, int64(math.Ceil(days)))
				}
				alerts = append(alerts, SmartAlert{
					ID:           uid.New(),
					Type:         AlertWarranty,
					Message:      message,
					Priority:     PriorityHigh,
					EquipementID: e.ID,
					Date:         now,
				})
			}
		}
	}

	return alerts
}

// AlertEngine holds the current alert set and replaces it on each cycle.
type AlertEngine struct {
	mu         sync.RWMutex
	thresholds AlertThresholds
	now        func() time.Time
	alerts     []SmartAlert
}

// NewAlertEngine creates an alert engine with the given thresholds.
func NewAlertEngine(thresholds AlertThresholds) *AlertEngine {
	return &AlertEngine{
		thresholds: thresholds,
		now:        time.Now,
	}
}

// Refresh recomputes the alert set from the snapshot, replacing the
// previous set wholesale.
func (a *AlertEngine) Refresh(snapshot []model.Equipement) {
	alerts := ComputeAlerts(snapshot, a.now(), a.thresholds)
	a.mu.Lock()
	a.alerts = alerts
	a.mu.Unlock()
}

// Alerts returns the current alert set.
func (a *AlertEngine) Alerts() []SmartAlert {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]SmartAlert, len(a.alerts))
	copy(out, a.alerts)
	return out
}

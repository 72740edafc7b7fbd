package engine

import (
	"strings"
	"testing"
	"time"

	"magasin-api/internal/model"
)

var testThresholds = AlertThresholds{
	LowStock:          5,
	MaintenanceMonths: 6,
	WarrantyDays:      30,
}

func alertsOfType(alerts []SmartAlert, typ AlertCategory) []SmartAlert {
	out := []SmartAlert{}
	for _, a := range alerts {
		if a.Type == typ {
			out = append(out, a)
		}
	}
	return out
}

func TestStockAlerts(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name         string
		nombre       int64
		wantAlert    bool
		wantPriority AlertPriority
	}{
		{"zero stock is high priority", 0, true, PriorityHigh},
		{"at threshold is medium", 5, true, PriorityMedium},
		{"below threshold is medium", 2, true, PriorityMedium},
		{"above threshold no alert", 6, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := []model.Equipement{{ID: 1, NomEquipement: "Oscilloscope", Nombre: tt.nombre}}
			got := alertsOfType(ComputeAlerts(snapshot, now, testThresholds), AlertStock)

			if !tt.wantAlert {
				if len(got) != 0 {
					t.Fatalf("got %d stock alerts, want 0", len(got))
				}
				return
			}
			if len(got) != 1 {
				t.Fatalf("got %d stock alerts, want 1", len(got))
			}
			if got[0].Priority != tt.wantPriority {
				t.Errorf("priority = %s, want %s", got[0].Priority, tt.wantPriority)
			}
			if !strings.Contains(got[0].Message, "Stock bas pour Oscilloscope") {
				t.Errorf("message = %q", got[0].Message)
			}
		})
	}
}

func TestMaintenanceAlert(t *testing.T) {
	now := time.Now()

	// 7 months in service: due for preventive maintenance.
	old := now.Add(-7 * 30 * 24 * time.Hour)
	snapshot := []model.Equipement{{ID: 1, NomEquipement: "Multimètre", Nombre: 10, DateMiseEnMarche: &old}}
	got := alertsOfType(ComputeAlerts(snapshot, now, testThresholds), AlertMaintenance)
	if len(got) != 1 {
		t.Fatalf("got %d maintenance alerts, want 1", len(got))
	}
	if got[0].Message != "Multimètre nécessite une maintenance préventive" {
		t.Errorf("message = %q", got[0].Message)
	}
	if got[0].Priority != PriorityMedium {
		t.Errorf("priority = %s, want medium", got[0].Priority)
	}

	// 5 months in service: not yet.
	recent := now.Add(-5 * 30 * 24 * time.Hour)
	snapshot[0].DateMiseEnMarche = &recent
	if got := alertsOfType(ComputeAlerts(snapshot, now, testThresholds), AlertMaintenance); len(got) != 0 {
		t.Fatalf("got %d maintenance alerts, want 0", len(got))
	}

	// No start date: no alert.
	snapshot[0].DateMiseEnMarche = nil
	if got := alertsOfType(ComputeAlerts(snapshot, now, testThresholds), AlertMaintenance); len(got) != 0 {
		t.Fatalf("got %d maintenance alerts without start date, want 0", len(got))
	}
}

func TestWarrantyAlerts(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name        string
		garantie    time.Time
		wantAlert   bool
		wantMessage string
	}{
		{
			"expires in 10 days",
			now.Add(10 * 24 * time.Hour),
			true,
			"La garantie de Alimentation expire dans 10 jours",
		},
		{
			"already expired",
			now.Add(-24 * time.Hour),
			true,
			"La garantie de Alimentation a expiré",
		},
		{
			"well within warranty",
			now.Add(60 * 24 * time.Hour),
			false,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			garantie := tt.garantie
			snapshot := []model.Equipement{{ID: 1, NomEquipement: "Alimentation", Nombre: 10, DateGarantie: &garantie}}
			got := alertsOfType(ComputeAlerts(snapshot, now, testThresholds), AlertWarranty)

			if !tt.wantAlert {
				if len(got) != 0 {
					t.Fatalf("got %d warranty alerts, want 0", len(got))
				}
				return
			}
			if len(got) != 1 {
				t.Fatalf("got %d warranty alerts, want 1", len(got))
			}
			if got[0].Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", got[0].Message, tt.wantMessage)
			}
			if got[0].Priority != PriorityHigh {
				t.Errorf("priority = %s, want high", got[0].Priority)
			}
		})
	}
}

func TestRefreshReplacesWholesale(t *testing.T) {
	eng := NewAlertEngine(testThresholds)

	eng.Refresh([]model.Equipement{{ID: 1, NomEquipement: "A", Nombre: 0}})
	if len(eng.Alerts()) != 1 {
		t.Fatalf("Alerts() = %d, want 1", len(eng.Alerts()))
	}

	// A healthy snapshot clears the previous set completely.
	eng.Refresh([]model.Equipement{{ID: 1, NomEquipement: "A", Nombre: 50}})
	if len(eng.Alerts()) != 0 {
		t.Fatalf("Alerts() = %d after healthy refresh, want 0", len(eng.Alerts()))
	}
}

package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestEngine(t *testing.T, directory TechnicienDirectory) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.NotificationTTL = time.Hour
	cfg.RandomSeed = 5
	e := New(cfg, nil, directory)
	e.Ledger.Load(testEquipements())
	t.Cleanup(e.Stop)
	return e
}

func TestToggleFavorite(t *testing.T) {
	e := newTestEngine(t, nil)

	fav, err := e.ToggleFavorite(1)
	if err != nil || !fav {
		t.Fatalf("ToggleFavorite() = %v, %v; want true, nil", fav, err)
	}
	if got := e.Favorites(); len(got) != 1 || got[0] != 1 {
		t.Errorf("Favorites() = %v, want [1]", got)
	}

	fav, err = e.ToggleFavorite(1)
	if err != nil || fav {
		t.Fatalf("second ToggleFavorite() = %v, %v; want false, nil", fav, err)
	}
	if got := e.Favorites(); len(got) != 0 {
		t.Errorf("Favorites() = %v, want empty", got)
	}

	if _, err := e.ToggleFavorite(99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ToggleFavorite(99) error = %v, want ErrNotFound", err)
	}
}

func TestMaintenanceRecords(t *testing.T) {
	e := newTestEngine(t, nil)

	if _, err := e.AddMaintenanceRecord(1, "invalid", "", ""); err == nil {
		t.Fatal("AddMaintenanceRecord(invalid type) error = nil, want validation error")
	}
	if _, err := e.AddMaintenanceRecord(99, MaintenancePreventive, "", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("AddMaintenanceRecord(99) error = %v, want ErrNotFound", err)
	}

	r1, err := e.AddMaintenanceRecord(1, MaintenancePreventive, "calibration", "Karim")
	if err != nil {
		t.Fatalf("AddMaintenanceRecord() error = %v", err)
	}
	r2, err := e.AddMaintenanceRecord(2, MaintenanceCorrective, "fusible", "Sophie")
	if err != nil {
		t.Fatalf("AddMaintenanceRecord() error = %v", err)
	}
	if r1.ID == r2.ID {
		t.Errorf("record ids collide: %d", r1.ID)
	}

	if got := e.MaintenanceHistory(1); len(got) != 1 || got[0].Description != "calibration" {
		t.Errorf("MaintenanceHistory(1) = %+v, want the calibration record", got)
	}
	if got := e.MaintenanceHistory(0); len(got) != 2 {
		t.Errorf("MaintenanceHistory(0) = %d records, want 2", len(got))
	}
}

func TestScheduleMaintenanceNotifies(t *testing.T) {
	e := newTestEngine(t, nil)

	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	if err := e.ScheduleMaintenance(1, date); err != nil {
		t.Fatalf("ScheduleMaintenance() error = %v", err)
	}
	if !busHasMessage(e.Bus, "Maintenance planifiée pour Oscilloscope le 15/09/2026") {
		t.Errorf("expected scheduling notification, got %+v", e.Bus.List())
	}
}

func TestAddRating(t *testing.T) {
	e := newTestEngine(t, nil)

	tests := []struct {
		name   string
		id     int64
		rating int
		ok     bool
	}{
		{"valid", 1, 4, true},
		{"minimum", 1, 1, true},
		{"maximum", 1, 5, true},
		{"too low", 1, 0, false},
		{"too high", 1, 6, false},
		{"unknown equipment", 99, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.AddRating(tt.id, tt.rating, "", "user-1")
			if (err == nil) != tt.ok {
				t.Fatalf("AddRating(%d, %d) error = %v, want ok=%v", tt.id, tt.rating, err, tt.ok)
			}
		})
	}

	if got := e.Ratings(1); len(got) != 3 {
		t.Errorf("Ratings(1) = %d entries, want 3", len(got))
	}
}

func TestStats(t *testing.T) {
	e := newTestEngine(t, nil)

	stats := e.Stats()
	if stats.TotalEquipements != 4 {
		t.Errorf("TotalEquipements = %d, want 4", stats.TotalEquipements)
	}
	if stats.Categories["mesure"] != 2 {
		t.Errorf("Categories[mesure] = %d, want 2", stats.Categories["mesure"])
	}
	// ids 2 (3 units) and 3 (0 units) sit at or below the threshold of 5.
	if stats.StockBas != 2 {
		t.Errorf("StockBas = %d, want 2", stats.StockBas)
	}
	if stats.Indisponibles != 1 {
		t.Errorf("Indisponibles = %d, want 1", stats.Indisponibles)
	}
}

func TestEngineStartStop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NotificationTTL = time.Hour
	cfg.RandomSeed = 9
	cfg.AlertInterval = 20 * time.Millisecond
	cfg.PredictionInterval = 20 * time.Millisecond
	cfg.RequestMinInterval = 10 * time.Millisecond
	cfg.RequestMaxInterval = 20 * time.Millisecond
	cfg.RequestProbability = 1

	dir := &fakeDirectory{roster: testRoster()}
	e := New(cfg, nil, dir)
	e.Ledger.Load(testEquipements())

	e.Start(context.Background())
	defer e.Stop()

	// Initial computations happen synchronously in Start.
	if len(e.Alerts.Alerts()) == 0 {
		t.Error("no alerts after Start, want the low-stock set")
	}
	if len(e.Predictions.Predictions()) != 4 {
		t.Errorf("Predictions() = %d entries, want 4", len(e.Predictions.Predictions()))
	}
	if len(e.Workflow.Roster()) != 2 {
		t.Errorf("Roster() = %d, want 2", len(e.Workflow.Roster()))
	}

	// With probability 1 and a short interval, a request appears.
	deadline := time.Now().Add(500 * time.Millisecond)
	for len(e.Workflow.Requests()) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if len(e.Workflow.Requests()) == 0 {
		t.Error("no request generated within 500ms at probability 1")
	}
}

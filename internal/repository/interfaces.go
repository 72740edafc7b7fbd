package repository

import (
	"context"

	"magasin-api/internal/model"
)

// EquipementRepository defines equipment data access methods.
type EquipementRepository interface {
	// ListEquipements returns the full catalog, newest first.
	ListEquipements(ctx context.Context) ([]model.Equipement, error)

	// GetEquipement retrieves one equipment by id. Returns nil if absent.
	GetEquipement(ctx context.Context, id int64) (*model.Equipement, error)

	// CreateEquipement inserts a new equipment and returns it with its id.
	CreateEquipement(ctx context.Context, e *model.Equipement) error

	// UpdateNombre sets the absolute quantity of one equipment.
	UpdateNombre(ctx context.Context, id int64, nombre int64) error

	// UpdateNombres applies several quantity updates in one transaction.
	// Either all updates are applied or none.
	UpdateNombres(ctx context.Context, updates []model.StockUpdate) error

	// GetStats returns statistics about the store database.
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Close closes the repository connection.
	Close() error
}

// NoteRepository defines note data access methods.
type NoteRepository interface {
	// ListNotes returns all notes, newest first.
	ListNotes(ctx context.Context) ([]model.Note, error)

	// CreateNote inserts a new note and returns it with its id.
	CreateNote(ctx context.Context, n *model.Note) error
}

// TechnicienRepository defines technician roster access methods.
type TechnicienRepository interface {
	// ListTechniciens returns the full technician roster.
	ListTechniciens(ctx context.Context) ([]model.Technicien, error)

	// DeleteDemande removes the stored equipment request of one technician.
	DeleteDemande(ctx context.Context, technicienID int64) error
}

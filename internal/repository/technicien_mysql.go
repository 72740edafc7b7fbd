package repository

import (
	"context"
	"database/sql"
	"fmt"

	"magasin-api/internal/model"
)

// MySQLTechnicienRepository implements TechnicienRepository using the
// shared staff MySQL database.
type MySQLTechnicienRepository struct {
	db *sql.DB
}

// NewMySQLTechnicienRepository creates a new MySQL technician repository.
func NewMySQLTechnicienRepository(db *sql.DB) *MySQLTechnicienRepository {
	return &MySQLTechnicienRepository{db: db}
}

// ListTechniciens returns the full technician roster.
func (r *MySQLTechnicienRepository) ListTechniciens(ctx context.Context) ([]model.Technicien, error) {
	query := `SELECT id, prenom, nom, email, COALESCE(image, '') FROM techniciens ORDER BY nom, prenom`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list techniciens: %w", err)
	}
	defer rows.Close()

	techniciens := []model.Technicien{}
	for rows.Next() {
		var t model.Technicien
		if err := rows.Scan(&t.ID, &t.Prenom, &t.Nom, &t.Email, &t.Image); err != nil {
			return nil, fmt.Errorf("failed to scan technicien: %w", err)
		}
		techniciens = append(techniciens, t)
	}
	return techniciens, rows.Err()
}

// DeleteDemande removes the stored equipment request of one technician.
// Deleting an absent request is not an error.
func (r *MySQLTechnicienRepository) DeleteDemande(ctx context.Context, technicienID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM demandes_techniciens WHERE technicien_id = ?`, technicienID)
	if err != nil {
		return fmt.Errorf("failed to delete demande for technicien %d: %w", technicienID, err)
	}
	return nil
}

// Ensure MySQLTechnicienRepository implements TechnicienRepository
var _ TechnicienRepository = (*MySQLTechnicienRepository)(nil)

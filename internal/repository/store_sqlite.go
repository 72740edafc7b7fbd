package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"

	"magasin-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteStore implements EquipementRepository and NoteRepository using SQLite.
// Thread-safe with WAL mode for high-concurrency reads.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new SQLite store.
// dbPath is the path to the SQLite database file (e.g., "./data/magasin.db")
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Open with WAL mode and other optimizations
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite connection pool settings
	db.SetMaxOpenConns(1) // SQLite only supports 1 writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0) // Keep connection alive

	if err := createSQLiteTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteStore] Initialized with database: %s", dbPath)
	return &SQLiteStore{db: db}, nil
}

// createSQLiteTables creates the equipment and note tables.
func createSQLiteTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS equipement (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code_imo TEXT NOT NULL,
		nom_testeur TEXT NOT NULL,
		nom_equipement TEXT NOT NULL,
		designation TEXT NOT NULL,
		arborescence TEXT DEFAULT '',
		categorie TEXT NOT NULL,
		nombre INTEGER NOT NULL DEFAULT 0,
		date_mise_en_marche DATETIME,
		date_garantie DATETIME,
		created_at DATETIME NOT NULL DEFAULT (datetime('now'))
	);
	CREATE INDEX IF NOT EXISTS idx_equipement_categorie ON equipement(categorie);
	CREATE TABLE IF NOT EXISTS note (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT (datetime('now'))
	);
	`
	_, err := db.Exec(query)
	return err
}

// ListEquipements returns the full catalog ordered by id desc.
func (r *SQLiteStore) ListEquipements(ctx context.Context) ([]model.Equipement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT id, code_imo, nom_testeur, nom_equipement, designation,
		       arborescence, categorie, nombre, date_mise_en_marche, date_garantie, created_at
		FROM equipement ORDER BY id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipements: %w", err)
	}
	defer rows.Close()

	equipements := []model.Equipement{}
	for rows.Next() {
		e, err := scanEquipement(rows)
		if err != nil {
			return nil, err
		}
		equipements = append(equipements, *e)
	}
	return equipements, rows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEquipement(row rowScanner) (*model.Equipement, error) {
	var e model.Equipement
	var miseEnMarche, garantie sql.NullTime
	err := row.Scan(
		&e.ID, &e.CodeIMO, &e.NomTesteur, &e.NomEquipement, &e.Designation,
		&e.Arborescence, &e.Categorie, &e.Nombre, &miseEnMarche, &garantie, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if miseEnMarche.Valid {
		t := miseEnMarche.Time
		e.DateMiseEnMarche = &t
	}
	if garantie.Valid {
		t := garantie.Time
		e.DateGarantie = &t
	}
	e.Disponible = e.Nombre > 0
	return &e, nil
}

// GetEquipement retrieves one equipment by id. Returns nil if absent.
func (r *SQLiteStore) GetEquipement(ctx context.Context, id int64) (*model.Equipement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT id, code_imo, nom_testeur, nom_equipement, designation,
		       arborescence, categorie, nombre, date_mise_en_marche, date_garantie, created_at
		FROM equipement WHERE id = ?`

	e, err := scanEquipement(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get equipement: %w", err)
	}
	return e, nil
}

// CreateEquipement inserts a new equipment.
func (r *SQLiteStore) CreateEquipement(ctx context.Context, e *model.Equipement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO equipement (code_imo, nom_testeur, nom_equipement, designation,
			arborescence, categorie, nombre, date_mise_en_marche, date_garantie, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))`

	result, err := r.db.ExecContext(ctx, query,
		e.CodeIMO, e.NomTesteur, e.NomEquipement, e.Designation,
		e.Arborescence, e.Categorie, e.Nombre, e.DateMiseEnMarche, e.DateGarantie,
	)
	if err != nil {
		return fmt.Errorf("failed to create equipement: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read equipement id: %w", err)
	}
	e.ID = id
	e.Disponible = e.Nombre > 0
	return nil
}

// UpdateNombre sets the absolute quantity of one equipment.
func (r *SQLiteStore) UpdateNombre(ctx context.Context, id int64, nombre int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, err := r.db.ExecContext(ctx, `UPDATE equipement SET nombre = ? WHERE id = ?`, nombre, id)
	if err != nil {
		return fmt.Errorf("failed to update nombre: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("equipement %d not found", id)
	}
	return nil
}

// UpdateNombres applies several quantity updates in one transaction.
func (r *SQLiteStore) UpdateNombres(ctx context.Context, updates []model.StockUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE equipement SET nombre = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, u := range updates {
		if _, err := stmt.ExecContext(ctx, u.Nombre, u.EquipementID); err != nil {
			return fmt.Errorf("failed to update equipement %d: %w", u.EquipementID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetStats returns statistics about the store database.
func (r *SQLiteStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make(map[string]interface{})

	var count, totalStock int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*), COALESCE(SUM(nombre), 0) FROM equipement").Scan(&count, &totalStock); err != nil {
		return nil, err
	}
	stats["total_equipements"] = count
	stats["total_stock"] = totalStock

	// Database file size (approximate from page count)
	var pageCount, pageSize int64
	r.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	r.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
	stats["db_size_bytes"] = pageCount * pageSize

	return stats, nil
}

// ListNotes returns all notes, newest first.
func (r *SQLiteStore) ListNotes(ctx context.Context) ([]model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx, `SELECT id, content, created_at FROM note ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.Content, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// CreateNote inserts a new note.
func (r *SQLiteStore) CreateNote(ctx context.Context, n *model.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, err := r.db.ExecContext(ctx, `INSERT INTO note (content, created_at) VALUES (?, datetime('now'))`, n.Content)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read note id: %w", err)
	}
	n.ID = id
	return nil
}

// Close closes the database connection.
func (r *SQLiteStore) Close() error {
	return r.db.Close()
}

// Ensure SQLiteStore implements the repository interfaces
var (
	_ EquipementRepository = (*SQLiteStore)(nil)
	_ NoteRepository       = (*SQLiteStore)(nil)
)

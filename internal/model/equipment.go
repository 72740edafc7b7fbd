package model

import "time"

// Equipement represents a piece of lendable equipment.
// Column names follow the legacy store schema (French field names).
type Equipement struct {
	ID               int64      `json:"id"`
	CodeIMO          string     `json:"code_imo"`
	NomTesteur       string     `json:"nom_testeur"`
	NomEquipement    string     `json:"nom_equipement"`
	Designation      string     `json:"designation"`
	Arborescence     string     `json:"arborescence,omitempty"`
	Categorie        string     `json:"categorie"`
	Nombre           int64      `json:"nombre"`
	DateMiseEnMarche *time.Time `json:"date_mise_en_marche,omitempty"`
	DateGarantie     *time.Time `json:"date_garantie,omitempty"`
	Disponible       bool       `json:"disponible"`
	CreatedAt        time.Time  `json:"created_at"`
}

// StockUpdate is a single quantity change applied to the store.
type StockUpdate struct {
	EquipementID int64
	Nombre       int64 // new absolute quantity
}

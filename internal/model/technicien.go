package model

// Technicien is a member of the technician roster, served from the
// shared staff database.
type Technicien struct {
	ID     int64  `json:"id"`
	Prenom string `json:"prenom"`
	Nom    string `json:"nom"`
	Email  string `json:"email"`
	Image  string `json:"image,omitempty"`
}

// FullName returns "Prenom Nom" for notification messages.
func (t Technicien) FullName() string {
	return t.Prenom + " " + t.Nom
}

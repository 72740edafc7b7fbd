package model

import "time"

// Note is a free-form text note (side feature of the store UI).
type Note struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

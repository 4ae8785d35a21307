package model

import "time"

// Group is a named playlist of media items. The scheduling core only ever
// references groups by id; item management lives elsewhere.
type Group struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

package models

import "time"

// Rink is a physical ice facility hosting scheduled sessions. Rinks are
// created by the seed step or upserted by an adapter on first run; adapters
// never delete them.
type Rink struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Location  string    `db:"location" json:"location"`
	Website   *string   `db:"website" json:"website,omitempty"`
	Latitude  *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude *float64  `db:"longitude" json:"longitude,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

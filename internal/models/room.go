package models

import "time"

// Building holds rooms. Latitude/longitude locate it on the campus map.
type Building struct {
	ID        string   `db:"id" json:"id"`
	Name      string   `db:"name" json:"name"`
	Floors    int      `db:"floors" json:"floors"`
	Latitude  *float64 `db:"latitude" json:"latitude,omitempty"`
	Longitude *float64 `db:"longitude" json:"longitude,omitempty"`
}

// Room is a bookable space inside a building.
type Room struct {
	ID         string    `db:"id" json:"id"`
	BuildingID string    `db:"building_id" json:"building_id"`
	Number     string    `db:"number" json:"number"`
	Capacity   int       `db:"capacity" json:"capacity"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

package types

import "time"

// LostFoundCreate is the body of POST /lost-found.
type LostFoundCreate struct {
	Kind        string `json:"kind" binding:"required,oneof=lost found"`
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Contact     string `json:"contact"`
}

// LostFoundView is the public representation of a lost-and-found entry.
type LostFoundView struct {
	ID          uint       `json:"id"`
	Kind        string     `json:"kind"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	Contact     string     `json:"contact"`
	Status      string     `json:"status"`
	ReporterID  uint       `json:"reporter_id"`
	ClaimedByID *uint      `json:"claimed_by_id,omitempty"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

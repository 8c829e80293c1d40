package types

import "encoding/json"

// Envelope is the response wrapper every API endpoint writes.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Details []string        `json:"details,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Pagination describes a page of a listing endpoint.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

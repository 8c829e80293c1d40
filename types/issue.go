package types

import "time"

// Reporter identifies who submitted an issue, as stamped by the client.
type Reporter struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// IssueSubmission is the payload a form produces and POST /issues accepts.
type IssueSubmission struct {
	Category    string            `json:"category" binding:"required"`
	ActionItem  string            `json:"action_item"`
	Type        string            `json:"type" binding:"required"`
	Domain      string            `json:"domain,omitempty"`
	Block       string            `json:"block,omitempty"`
	Floor       string            `json:"floor,omitempty"`
	Room        string            `json:"room,omitempty"`
	Comments    string            `json:"comments,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
	Ratings     map[string]int    `json:"ratings,omitempty"`
	Attachments []string          `json:"attachments,omitempty"`
	Anonymous   bool              `json:"anonymous"`
	RaisedBy    Reporter          `json:"raised_by"`
	Status      string            `json:"status,omitempty"`
	CreatedAt   *time.Time        `json:"created_at,omitempty"`
	UpdatedAt   *time.Time        `json:"updated_at,omitempty"`
}

// IssueView is the server's representation of a stored issue.
type IssueView struct {
	ID          uint              `json:"id"`
	Ticket      string            `json:"ticket"`
	Category    string            `json:"category"`
	ActionItem  string            `json:"action_item"`
	Type        string            `json:"type"`
	IssueCat    string            `json:"issue_cat"`
	Block       string            `json:"block"`
	Floor       string            `json:"floor"`
	Room        string            `json:"room,omitempty"`
	Comments    string            `json:"comments"`
	Fields      map[string]string `json:"fields,omitempty"`
	Ratings     map[string]int    `json:"ratings,omitempty"`
	Attachments []string          `json:"attachments,omitempty"`
	Anonymous   bool              `json:"anonymous"`
	RaisedBy    *Reporter         `json:"raised_by,omitempty"`
	Status      string            `json:"status"`
	Date        time.Time         `json:"date"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// SimilarQuery is the location fingerprint sent to GET /issues/similar.
type SimilarQuery struct {
	ActionItem string
	Block      string
	Floor      string
}

// StatusUpdate is the body of PATCH /issues/:id/status.
type StatusUpdate struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
	// From is the status the caller last saw. When set, the update fails
	// with a conflict if the issue has moved on since.
	From string `json:"from,omitempty"`
}

package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"campus-gms/types"
)

type IssueStatus string

const (
	IssueOpen       IssueStatus = "open"
	IssueInProgress IssueStatus = "in_progress"
	IssueResolved   IssueStatus = "resolved"
	IssueClosed     IssueStatus = "closed"
	IssueRejected   IssueStatus = "rejected"
)

var issueTransitions = map[IssueStatus][]IssueStatus{
	IssueOpen:       {IssueInProgress, IssueResolved, IssueRejected},
	IssueInProgress: {IssueOpen, IssueResolved, IssueRejected},
	IssueResolved:   {IssueInProgress, IssueClosed},
}

// ParseIssueStatus accepts a status name in any case.
func ParseIssueStatus(s string) (IssueStatus, bool) {
	st := IssueStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case IssueOpen, IssueInProgress, IssueResolved, IssueClosed, IssueRejected:
		return st, true
	}
	return "", false
}

// CanTransitionTo reports whether the workflow allows moving to next.
func (s IssueStatus) CanTransitionTo(next IssueStatus) bool {
	for _, allowed := range issueTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsActive reports whether the issue still counts as a possible duplicate.
func (s IssueStatus) IsActive() bool {
	return s == IssueOpen || s == IssueInProgress
}

// ActiveIssueStatuses are the statuses similar-issue lookups match.
var ActiveIssueStatuses = []IssueStatus{IssueOpen, IssueInProgress}

// Issue is a grievance filed by a student.
type Issue struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Ticket      string         `json:"ticket" gorm:"size:20;uniqueIndex;not null"`
	CategoryKey string         `json:"category" gorm:"size:50;not null;index"`
	ActionItem  string         `json:"action_item" gorm:"size:100;not null;index:idx_issue_location"`
	Type        string         `json:"type" gorm:"size:20;not null"`
	Domain      string         `json:"domain" gorm:"size:100"`
	Block       string         `json:"block" gorm:"size:50;index:idx_issue_location"`
	Floor       string         `json:"floor" gorm:"size:20;index:idx_issue_location"`
	Room        string         `json:"room" gorm:"size:50"`
	Comments    string         `json:"comments" gorm:"type:text"`
	Fields      datatypes.JSON `json:"fields,omitempty"`
	Ratings     datatypes.JSON `json:"ratings,omitempty"`
	Attachments datatypes.JSON `json:"attachments,omitempty"`
	Anonymous   bool           `json:"anonymous" gorm:"default:false"`

	RaisedByID   uint   `json:"raised_by_id" gorm:"not null;index"`
	RaisedBy     User   `json:"-" gorm:"foreignKey:RaisedByID"`
	ReporterName string `json:"reporter_name" gorm:"size:255"`
	ReporterID   string `json:"reporter_id" gorm:"size:32"`

	Status     IssueStatus `json:"status" gorm:"type:varchar(20);not null;default:'open';index"`
	ResolvedAt *time.Time  `json:"resolved_at"`
	ClosedAt   *time.Time  `json:"closed_at"`

	// Set for bookkeeping categories from the client's draft timestamps.
	DraftCreatedAt *time.Time `json:"draft_created_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Issue) TableName() string { return "issues" }

// NewTicket returns a short human-readable issue code.
func NewTicket() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "GMS-" + strings.ToUpper(id[:8])
}

// BeforeCreate is a GORM hook that runs before creating an issue
func (i *Issue) BeforeCreate(tx *gorm.DB) error {
	if i.Ticket == "" {
		i.Ticket = NewTicket()
	}
	if i.Status == "" {
		i.Status = IssueOpen
	}
	return nil
}

// SetFields stores the extra form fields.
func (i *Issue) SetFields(fields map[string]string) {
	i.Fields = encodeJSON(fields)
}

// SetRatings stores the feedback ratings.
func (i *Issue) SetRatings(ratings map[string]int) {
	i.Ratings = encodeJSON(ratings)
}

// SetAttachments stores the attachment URLs.
func (i *Issue) SetAttachments(urls []string) {
	i.Attachments = encodeJSON(urls)
}

// IssueCat is the short label shown in lists: the domain for complaints
// and suggestions, the type for feedback.
func (i *Issue) IssueCat() string {
	if i.Domain != "" {
		return i.Domain
	}
	return i.Type
}

// View renders the issue for viewerID. The reporter of an anonymous issue
// is only shown to the reporter themself.
func (i *Issue) View(viewerID uint) types.IssueView {
	v := types.IssueView{
		ID:         i.ID,
		Ticket:     i.Ticket,
		Category:   i.CategoryKey,
		ActionItem: i.ActionItem,
		Type:       i.Type,
		IssueCat:   i.IssueCat(),
		Block:      i.Block,
		Floor:      i.Floor,
		Room:       i.Room,
		Comments:   i.Comments,
		Anonymous:  i.Anonymous,
		Status:     string(i.Status),
		Date:       i.CreatedAt,
		UpdatedAt:  i.UpdatedAt,
	}
	decodeJSON(i.Fields, &v.Fields)
	decodeJSON(i.Ratings, &v.Ratings)
	decodeJSON(i.Attachments, &v.Attachments)

	if !i.Anonymous || viewerID == i.RaisedByID {
		v.RaisedBy = &types.Reporter{Name: i.ReporterName, ID: i.ReporterID}
	}
	return v
}

func encodeJSON(v any) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil || string(data) == "null" {
		return nil
	}
	return datatypes.JSON(data)
}

func decodeJSON(data datatypes.JSON, out any) {
	if len(data) == 0 {
		return
	}
	_ = json.Unmarshal(data, out)
}

package websocket

import (
	"time"

	"campus-gms/models"
)

// IssueBroadcaster pushes issue changes to connected clients. Staff get
// every new report and status change; a reporter hears about their own.
type IssueBroadcaster struct {
	hub *Hub
}

func NewIssueBroadcaster(hub *Hub) *IssueBroadcaster {
	return &IssueBroadcaster{hub: hub}
}

// IssueCreated announces a new report to staff.
func (b *IssueBroadcaster) IssueCreated(issue *models.Issue) {
	b.hub.BroadcastToStaff(&Message{
		Type:      TypeIssueCreated,
		Timestamp: time.Now(),
		Data:      issue.View(0),
	})
}

// IssueStatusChanged announces a workflow move to staff and the reporter.
func (b *IssueBroadcaster) IssueStatusChanged(issue *models.Issue, from models.IssueStatus) {
	now := time.Now()
	b.hub.BroadcastToStaff(&Message{
		Type:      TypeIssueStatus,
		Timestamp: now,
		Data:      map[string]any{"from": from, "issue": issue.View(0)},
	})
	b.hub.publish(&Message{
		Type:      TypeIssueStatus,
		Timestamp: now,
		Data:      map[string]any{"from": from, "issue": issue.View(issue.RaisedByID)},
	}, func(c *Client) bool {
		// staff reporters already got the staff copy
		return c.ID == issue.RaisedByID && c.Role == models.RoleStudent
	})
}

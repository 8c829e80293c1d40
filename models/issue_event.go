package models

import "time"

// IssueEvent records one status change of an issue.
type IssueEvent struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	IssueID    uint        `json:"issue_id" gorm:"not null;index"`
	FromStatus IssueStatus `json:"from_status" gorm:"type:varchar(20)"`
	ToStatus   IssueStatus `json:"to_status" gorm:"type:varchar(20);not null"`
	Note       string      `json:"note" gorm:"type:text"`
	// ActorID is nil for changes made by background jobs.
	ActorID   *uint     `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (IssueEvent) TableName() string { return "issue_events" }

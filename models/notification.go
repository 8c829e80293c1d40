package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification types
const (
	NotificationIssueStatus  = "issue_status"
	NotificationItemClaimed  = "item_claimed"
	NotificationIssueCreated = "issue_created"
)

// Notification is an in-app message for one user.
type Notification struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"not null;index"`
	Title     string         `json:"title" gorm:"size:255;not null"`
	Body      string         `json:"body" gorm:"type:text;not null"`
	Type      string         `json:"type" gorm:"size:50;not null"`
	Data      datatypes.JSON `json:"data,omitempty"`
	Read      bool           `json:"read" gorm:"default:false;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Notification) TableName() string { return "notifications" }

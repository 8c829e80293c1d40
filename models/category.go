package models

import (
	"time"

	"gorm.io/datatypes"
)

// IssueCategory mirrors one catalog definition in the database so staff
// can switch categories off without a redeploy.
type IssueCategory struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Key        string         `json:"key" gorm:"size:50;uniqueIndex;not null"`
	ActionItem string         `json:"action_item" gorm:"size:100;not null"`
	Title      string         `json:"title" gorm:"size:100;not null"`
	Icon       string         `json:"icon" gorm:"size:255"`
	SortOrder  int            `json:"sort_order" gorm:"default:0"`
	IsActive   bool           `json:"is_active" gorm:"default:true"`
	Definition datatypes.JSON `json:"definition"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func (IssueCategory) TableName() string { return "issue_categories" }

// AllModels lists every table the server migrates.
func AllModels() []any {
	return []any{
		&User{},
		&RefreshToken{},
		&IssueCategory{},
		&Issue{},
		&IssueEvent{},
		&LostFoundItem{},
		&Notification{},
	}
}

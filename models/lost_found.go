package models

import (
	"time"

	"gorm.io/gorm"

	"campus-gms/types"
)

const (
	LostFoundLost  = "lost"
	LostFoundFound = "found"

	LostFoundOpen    = "open"
	LostFoundClaimed = "claimed"
)

// LostFoundItem is an entry on the lost-and-found board.
type LostFoundItem struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Kind        string         `json:"kind" gorm:"type:varchar(10);not null;index;check:kind IN ('lost','found')"`
	Title       string         `json:"title" gorm:"size:200;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Location    string         `json:"location" gorm:"size:255"`
	Contact     string         `json:"contact" gorm:"size:255"`
	Status      string         `json:"status" gorm:"type:varchar(10);not null;default:'open';index"`
	ReporterID  uint           `json:"reporter_id" gorm:"not null;index"`
	Reporter    User           `json:"-" gorm:"foreignKey:ReporterID"`
	ClaimedByID *uint          `json:"claimed_by_id"`
	ClaimedAt   *time.Time     `json:"claimed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (LostFoundItem) TableName() string { return "lost_found_items" }

// BeforeCreate is a GORM hook that runs before creating an item
func (l *LostFoundItem) BeforeCreate(tx *gorm.DB) error {
	if l.Status == "" {
		l.Status = LostFoundOpen
	}
	return nil
}

// View returns the public representation of the item.
func (l *LostFoundItem) View() types.LostFoundView {
	return types.LostFoundView{
		ID:          l.ID,
		Kind:        l.Kind,
		Title:       l.Title,
		Description: l.Description,
		Location:    l.Location,
		Contact:     l.Contact,
		Status:      l.Status,
		ReporterID:  l.ReporterID,
		ClaimedByID: l.ClaimedByID,
		ClaimedAt:   l.ClaimedAt,
		CreatedAt:   l.CreatedAt,
	}
}

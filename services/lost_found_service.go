package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-gms/models"
	"campus-gms/types"
)

var (
	ErrItemNotFound    = errors.New("item not found")
	ErrAlreadyClaimed  = errors.New("item already claimed")
	ErrClaimOwnItem    = errors.New("cannot claim your own item")
	ErrInvalidItemKind = errors.New("kind must be lost or found")
)

// LostFoundService runs the lost-and-found board.
type LostFoundService struct {
	db            *gorm.DB
	notifications *NotificationService
	logger        *zap.Logger
	now           func() time.Time
}

func NewLostFoundService(db *gorm.DB, notifications *NotificationService, logger *zap.Logger) *LostFoundService {
	return &LostFoundService{db: db, notifications: notifications, logger: logger, now: time.Now}
}

// List returns board entries, newest first. Empty filters match all.
func (s *LostFoundService) List(ctx context.Context, kind, status string) ([]models.LostFoundItem, error) {
	db := s.db.WithContext(ctx)
	if kind != "" {
		db = db.Where("kind = ?", strings.ToLower(kind))
	}
	if status != "" {
		db = db.Where("status = ?", strings.ToLower(status))
	}
	var items []models.LostFoundItem
	err := db.Order("created_at DESC, id DESC").Limit(100).Find(&items).Error
	return items, err
}

// Create posts an item for reporterID.
func (s *LostFoundService) Create(ctx context.Context, reporterID uint, req types.LostFoundCreate) (*models.LostFoundItem, error) {
	kind := strings.ToLower(strings.TrimSpace(req.Kind))
	if kind != models.LostFoundLost && kind != models.LostFoundFound {
		return nil, ErrInvalidItemKind
	}
	item := models.LostFoundItem{
		Kind:        kind,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
		Contact:     strings.TrimSpace(req.Contact),
		ReporterID:  reporterID,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	s.logger.Info("🔎 Lost & found item posted", zap.Uint("item_id", item.ID), zap.String("kind", kind))
	return &item, nil
}

// Get loads one item.
func (s *LostFoundService) Get(ctx context.Context, id uint) (*models.LostFoundItem, error) {
	var item models.LostFoundItem
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Claim marks an open item as claimed by claimer and tells the reporter.
func (s *LostFoundService) Claim(ctx context.Context, claimer *models.User, id uint) (*models.LostFoundItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.ReporterID == claimer.ID {
		return nil, ErrClaimOwnItem
	}
	if item.Status == models.LostFoundClaimed {
		return nil, ErrAlreadyClaimed
	}

	now := s.now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.LostFoundItem{}).
			Where("id = ? AND status = ?", item.ID, models.LostFoundOpen).
			Updates(map[string]any{"status": models.LostFoundClaimed, "claimed_by_id": claimer.ID, "claimed_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyClaimed
		}
		body := fmt.Sprintf("%s (%s) claimed \"%s\".", claimer.FullName, claimer.StudentID, item.Title)
		return s.notifications.Notify(tx, item.ReporterID, models.NotificationItemClaimed,
			"Item claimed", body, map[string]any{"item_id": item.ID})
	})
	if err != nil {
		return nil, err
	}

	item.Status = models.LostFoundClaimed
	item.ClaimedByID = &claimer.ID
	item.ClaimedAt = &now
	s.logger.Info("🤝 Item claimed", zap.Uint("item_id", item.ID), zap.Uint("claimer_id", claimer.ID))
	return item, nil
}

// Delete removes an item. Only its reporter or an admin may do so.
func (s *LostFoundService) Delete(ctx context.Context, user *models.User, id uint) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if item.ReporterID != user.ID && !user.IsAdmin() {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).Delete(item).Error
}

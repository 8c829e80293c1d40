package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campus-gms/catalog"
	"campus-gms/forms"
	"campus-gms/models"
)

var ErrCategoryDisabled = errors.New("category is not accepting reports")

// CategoryService serves the report catalog, honouring the on/off switch
// staff keep in the issue_categories table.
type CategoryService struct {
	db      *gorm.DB
	catalog *catalog.Catalog
	engine  *forms.Engine
	logger  *zap.Logger
}

func NewCategoryService(db *gorm.DB, c *catalog.Catalog, logger *zap.Logger) *CategoryService {
	return &CategoryService{db: db, catalog: c, engine: forms.NewEngine(c), logger: logger}
}

// Catalog returns the full catalog, disabled categories included.
func (s *CategoryService) Catalog() *catalog.Catalog {
	return s.catalog
}

// Sync writes every catalog definition to the database. Existing rows keep
// their is_active flag.
func (s *CategoryService) Sync(ctx context.Context) error {
	for _, cat := range s.catalog.Categories {
		def, err := json.Marshal(cat)
		if err != nil {
			return fmt.Errorf("encode category %s: %w", cat.Key, err)
		}
		row := models.IssueCategory{
			Key:        cat.Key,
			ActionItem: cat.ActionItem,
			Title:      cat.Title,
			Icon:       cat.Icon,
			SortOrder:  cat.SortOrder,
			IsActive:   true,
			Definition: def,
		}
		err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"action_item", "title", "icon", "sort_order", "definition", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("sync category %s: %w", cat.Key, err)
		}
	}
	s.logger.Info("✅ Categories synced", zap.Int("count", len(s.catalog.Categories)))
	return nil
}

func (s *CategoryService) disabled(ctx context.Context) (map[string]bool, error) {
	var keys []string
	if err := s.db.WithContext(ctx).Model(&models.IssueCategory{}).
		Where("is_active = ?", false).Pluck("key", &keys).Error; err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(keys))
	for _, k := range keys {
		out[k] = true
	}
	return out, nil
}

// Active returns the categories currently accepting reports, in display
// order.
func (s *CategoryService) Active(ctx context.Context) ([]catalog.Category, error) {
	off, err := s.disabled(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Category, 0, len(s.catalog.Categories))
	for _, cat := range s.catalog.Categories {
		if !off[cat.Key] {
			out = append(out, cat)
		}
	}
	return out, nil
}

// Form returns the form engine for an active category.
func (s *CategoryService) Form(ctx context.Context, key string) (*forms.Form, error) {
	f, err := s.engine.Form(key)
	if err != nil {
		return nil, err
	}
	off, err := s.disabled(ctx)
	if err != nil {
		return nil, err
	}
	if off[key] {
		return nil, fmt.Errorf("%w: %s", ErrCategoryDisabled, key)
	}
	return f, nil
}

// SetActive switches a category on or off.
func (s *CategoryService) SetActive(ctx context.Context, key string, active bool) error {
	if _, err := s.catalog.Get(key); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&models.IssueCategory{}).Where("key = ?", key).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %q not synced", catalog.ErrUnknownCategory, key)
	}
	s.logger.Info("🔧 Category toggled", zap.String("key", key), zap.Bool("active", active))
	return nil
}

// All returns the stored category rows with their on/off state.
func (s *CategoryService) All(ctx context.Context) ([]models.IssueCategory, error) {
	var rows []models.IssueCategory
	err := s.db.WithContext(ctx).Order("sort_order ASC, id ASC").Find(&rows).Error
	return rows, err
}

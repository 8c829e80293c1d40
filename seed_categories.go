package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"campus-gms/catalog"
	"campus-gms/services"
)

// loadCatalog reads the category catalog from path, or the built-in one
// when path is empty.
func loadCatalog(path string, logger *zap.Logger) (*catalog.Catalog, error) {
	if path == "" {
		logger.Info("📋 Using built-in category catalog")
		return catalog.Default()
	}
	c, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	logger.Info("📋 Loaded category catalog", zap.String("file", path), zap.Int("categories", len(c.Categories)))
	return c, nil
}

// seedCategories writes the catalog to the database and reports which
// categories an admin has switched off.
func seedCategories(ctx context.Context, svc *services.CategoryService, logger *zap.Logger) error {
	if err := svc.Sync(ctx); err != nil {
		return err
	}
	rows, err := svc.All(ctx)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if !row.IsActive {
			logger.Info("⏭️  Category disabled by admin", zap.String("key", row.Key))
		}
	}
	return nil
}

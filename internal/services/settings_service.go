package services

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cobranzas_app_echo/internal/models"
)

const settingsCacheKey = "system_settings:global"
const settingsCacheTTL = 60 * time.Second

// SettingsService loads and updates the global configuration row.
// Reads go through the cache when one is configured; updates invalidate it.
type SettingsService struct {
	db    *gorm.DB
	cache *RedisCache
}

func NewSettingsService(db *gorm.DB, cache *RedisCache) *SettingsService {
	return &SettingsService{db: db, cache: cache}
}

// Get returns the global settings, falling back to defaults when the row
// does not exist yet. Missing-row fallback is not an error.
func (s *SettingsService) Get(ctx context.Context) (models.SystemSettings, error) {
	if s.cache == nil {
		return s.load(ctx)
	}
	return GetOrSet(s.cache, ctx, settingsCacheKey, settingsCacheTTL, func() (models.SystemSettings, error) {
		return s.load(ctx)
	})
}

func (s *SettingsService) load(ctx context.Context) (models.SystemSettings, error) {
	var settings models.SystemSettings
	err := s.db.WithContext(ctx).First(&settings, "id = ?", models.SystemSettingsID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return models.DefaultSystemSettings(), nil
		}
		return models.SystemSettings{}, err
	}
	return settings, nil
}

// Update upserts the global settings row and invalidates the cache entry
func (s *SettingsService) Update(ctx context.Context, settings models.SystemSettings) error {
	settings.ID = models.SystemSettingsID
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&settings).Error
	if err != nil {
		return err
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, settingsCacheKey)
	}
	return nil
}

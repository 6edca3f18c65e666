package repository

import (
	"context"
	"errors"
	"fmt"

	"talentdesk/models"

	"gorm.io/gorm"
)

// SettingRepository stores system settings. Values pass through as
// stored; encryption of secrets is the caller's job.
type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) List(ctx context.Context, category string) ([]models.SystemSetting, error) {
	query := r.db.WithContext(ctx).Order("category ASC").Order("key ASC")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	settings := make([]models.SystemSetting, 0)
	if err := query.Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return settings, nil
}

func (r *SettingRepository) Get(ctx context.Context, id uint) (*models.SystemSetting, error) {
	var s models.SystemSetting
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, notFound("setting", err)
	}
	return &s, nil
}

func (r *SettingRepository) Create(ctx context.Context, s *models.SystemSetting) error {
	var existing models.SystemSetting
	err := r.db.WithContext(ctx).Where("key = ?", s.Key).First(&existing).Error
	if err == nil {
		return fmt.Errorf("setting %q already exists: %w", s.Key, ErrConflict)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check setting key: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("failed to create setting: %w", err)
	}
	return nil
}

func (r *SettingRepository) Update(ctx context.Context, s *models.SystemSetting) error {
	err := r.db.WithContext(ctx).Model(s).
		Select("value", "is_secret", "category", "description").
		Updates(s).Error
	if err != nil {
		return fmt.Errorf("failed to update setting: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"

	"talentdesk/models"

	"gorm.io/gorm"
)

// ActivityRepository is append-only: there is no update or delete.
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Append(ctx context.Context, entry *models.ActivityLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append activity log: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (r *ActivityRepository) List(ctx context.Context, q ListQuery) ([]models.ActivityLog, int64, error) {
	query := applyFilters(r.db.WithContext(ctx).Model(&models.ActivityLog{}), q.Filters)
	query = applySearch(query, q.Search, []string{"resource_type", "resource_id", "action_type"})
	base := query.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count activity logs: %w", err)
	}

	find := base.Order("created_at DESC").Order("id DESC")
	if q.Skip > 0 {
		find = find.Offset(q.Skip)
	}
	if q.Limit > 0 {
		find = find.Limit(q.Limit)
	}
	logs := make([]models.ActivityLog, 0)
	if err := find.Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list activity logs: %w", err)
	}
	return logs, total, nil
}

func (r *ActivityRepository) Get(ctx context.Context, id uint) (*models.ActivityLog, error) {
	var entry models.ActivityLog
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, notFound("activity log", err)
	}
	return &entry, nil
}

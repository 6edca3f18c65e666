package repository

import (
	"context"
	"fmt"

	"talentdesk/models"

	"gorm.io/gorm"
)

// FieldRepository stores custom field schemas.
type FieldRepository struct {
	db *gorm.DB
}

func NewFieldRepository(db *gorm.DB) *FieldRepository {
	return &FieldRepository{db: db}
}

// ListByEntity returns the live schemas of one entity type in display
// order. Soft-deleted schemas are excluded.
func (r *FieldRepository) ListByEntity(ctx context.Context, entityType string) ([]models.FieldSchema, error) {
	schemas := make([]models.FieldSchema, 0)
	err := r.db.WithContext(ctx).
		Where("entity_type = ?", entityType).
		Order("display_order ASC").
		Order("id ASC").
		Find(&schemas).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s fields: %w", entityType, err)
	}
	return schemas, nil
}

func (r *FieldRepository) Get(ctx context.Context, id uint) (*models.FieldSchema, error) {
	var schema models.FieldSchema
	if err := r.db.WithContext(ctx).First(&schema, id).Error; err != nil {
		return nil, notFound("field", err)
	}
	return &schema, nil
}

// Create rejects a second live schema with the same name for the entity.
func (r *FieldRepository) Create(ctx context.Context, schema *models.FieldSchema) error {
	var existing int64
	if err := r.db.WithContext(ctx).Model(&models.FieldSchema{}).
		Where("entity_type = ? AND name = ?", schema.EntityType, schema.Name).
		Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to check field name: %w", err)
	}
	if existing > 0 {
		return fmt.Errorf("field %q already exists for %s: %w", schema.Name, schema.EntityType, ErrConflict)
	}
	if err := r.db.WithContext(ctx).Create(schema).Error; err != nil {
		return fmt.Errorf("failed to create field: %w", err)
	}
	return nil
}

// Update never touches name or entity_type; the storage key is fixed once
// values may have been saved under it.
func (r *FieldRepository) Update(ctx context.Context, schema *models.FieldSchema) error {
	err := r.db.WithContext(ctx).Model(schema).
		Select("label", "field_type", "options", "is_required", "display_order").
		Updates(schema).Error
	if err != nil {
		return fmt.Errorf("failed to update field: %w", err)
	}
	return nil
}

func (r *FieldRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.FieldSchema{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete field: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("field: %w", ErrNotFound)
	}
	return nil
}

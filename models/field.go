package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Entity types that carry server-defined custom fields.
const (
	FieldEntityScreening  = "screening"
	FieldEntityCounseling = "counseling"
)

// FieldSchema describes one custom form field. Name is the storage key
// inside a record's others map and cannot change once created.
type FieldSchema struct {
	ID         uint                        `gorm:"primaryKey" json:"id"`
	EntityType string                      `gorm:"size:32;not null;index:idx_field_entity_name,priority:1" json:"entity_type"`
	Name       string                      `gorm:"size:100;not null;index:idx_field_entity_name,priority:2" json:"name"`
	Label      string                      `gorm:"size:200;not null" json:"label"`
	FieldType  string                      `gorm:"size:32;not null" json:"field_type"`
	Options    datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"options,omitempty"`
	IsRequired bool                        `gorm:"default:false" json:"is_required"`
	Order      int                         `gorm:"column:display_order;default:0" json:"order"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`

	// Deleted schemas stop rendering but stored values are left untouched.
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

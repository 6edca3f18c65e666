package models

import "time"

// MaskedValue is returned in place of secret setting values.
const MaskedValue = "********"

// SystemSetting is a key/value configuration entry editable from the
// settings screen. Secret values are stored encrypted.
type SystemSetting struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Key         string    `gorm:"size:100;uniqueIndex;not null" json:"key"`
	Value       string    `gorm:"type:text" json:"value"`
	IsSecret    bool      `gorm:"default:false" json:"is_secret"`
	Category    string    `gorm:"size:50;index" json:"category"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

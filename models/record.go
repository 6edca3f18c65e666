package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record is the common header of every CRM and recruitment entity.
// ID is the internal key used for relations; PublicID is the stable
// identifier that appears in URLs and is never reused.
type Record struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PublicID  string         `gorm:"size:36;uniqueIndex;not null" json:"public_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a public id when the caller did not supply one.
func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.PublicID == "" {
		r.PublicID = uuid.NewString()
	}
	return nil
}

// Header returns the record header, letting generic code reach ids
// without reflection.
func (r *Record) Header() *Record {
	return r
}

// Entity is implemented by every model that embeds Record.
type Entity interface {
	Header() *Record
}

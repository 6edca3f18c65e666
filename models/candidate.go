package models

import (
	"time"

	"gorm.io/datatypes"
)

// Candidate pipeline statuses.
const (
	CandidateStatusNew        = "new"
	CandidateStatusScreening  = "screening"
	CandidateStatusCounseling = "counseling"
	CandidateStatusDocuments  = "documents"
	CandidateStatusAllocated  = "allocated"
	CandidateStatusRejected   = "rejected"
)

// Candidate is a trainee moving through intake, screening, counseling,
// document collection and batch allocation.
type Candidate struct {
	Record
	FirstName string            `gorm:"size:100;not null" json:"first_name" validate:"required,max=100"`
	LastName  string            `gorm:"size:100" json:"last_name"`
	Email     string            `gorm:"index" json:"email" validate:"omitempty,mailbox"`
	Phone     string            `gorm:"size:50" json:"phone"`
	Status    string            `gorm:"size:32;default:'new';index" json:"status" validate:"omitempty,oneof=new screening counseling documents allocated rejected"`
	BatchID   *uint             `gorm:"index" json:"batch_id"`
	Others    datatypes.JSONMap `gorm:"type:jsonb" json:"others"`

	Batch *TrainingBatch `gorm:"foreignKey:BatchID" json:"batch,omitempty"`
}

// CandidateScreening holds the screening interview result. Others is
// keyed by the names of the "screening" field schemas.
type CandidateScreening struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	CandidateID uint              `gorm:"uniqueIndex;not null" json:"candidate_id"`
	Outcome     string            `gorm:"size:32" json:"outcome"` // pass, fail, hold
	Notes       string            `gorm:"type:text" json:"notes"`
	Others      datatypes.JSONMap `gorm:"type:jsonb" json:"others"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// CandidateCounseling holds the counseling session result. Others is
// keyed by the names of the "counseling" field schemas.
type CandidateCounseling struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	CandidateID uint              `gorm:"uniqueIndex;not null" json:"candidate_id"`
	Outcome     string            `gorm:"size:32" json:"outcome"`
	Notes       string            `gorm:"type:text" json:"notes"`
	Others      datatypes.JSONMap `gorm:"type:jsonb" json:"others"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TrainingBatch is a cohort candidates are allocated to.
type TrainingBatch struct {
	Record
	Name      string     `gorm:"size:200;not null" json:"name" validate:"required"`
	Code      string     `gorm:"size:50;uniqueIndex;not null" json:"code" validate:"required,max=50"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Capacity  int        `gorm:"default:0" json:"capacity" validate:"gte=0"` // 0 means unlimited
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

// Company is the root CRM account.
type Company struct {
	Record
	Name         string            `gorm:"size:200;not null;index" json:"name" validate:"required,max=200"`
	Industry     string            `gorm:"size:100;index" json:"industry"`
	Status       string            `gorm:"size:32;default:'active';index" json:"status" validate:"omitempty,oneof=active inactive prospect"`
	Website      string            `json:"website"`
	Phone        string            `gorm:"size:50" json:"phone"`
	Email        string            `json:"email" validate:"omitempty,mailbox"`
	Address      string            `gorm:"type:text" json:"address"`
	Notes        string            `gorm:"type:text" json:"notes"`
	CustomFields datatypes.JSONMap `gorm:"type:jsonb" json:"custom_fields"`
}

// Contact is a person, optionally attached to a company.
type Contact struct {
	Record
	CompanyID    *uint             `gorm:"index" json:"company_id"`
	FirstName    string            `gorm:"size:100;not null" json:"first_name" validate:"required,max=100"`
	LastName     string            `gorm:"size:100" json:"last_name"`
	Email        string            `gorm:"index" json:"email" validate:"omitempty,mailbox"`
	Phone        string            `gorm:"size:50" json:"phone"`
	Position     string            `json:"position"`
	Status       string            `gorm:"size:32;default:'active';index" json:"status" validate:"omitempty,oneof=active inactive"`
	CustomFields datatypes.JSONMap `gorm:"type:jsonb" json:"custom_fields"`

	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}

// Lead is an unqualified sales opportunity.
type Lead struct {
	Record
	Title        string            `gorm:"size:200;not null" json:"title" validate:"required,max=200"`
	CompanyID    *uint             `gorm:"index" json:"company_id"`
	ContactID    *uint             `gorm:"index" json:"contact_id"`
	Source       string            `gorm:"size:50;index" json:"source"` // website, referral, campaign, event, other
	Status       string            `gorm:"size:32;default:'new';index" json:"status" validate:"omitempty,oneof=new contacted qualified lost converted"`
	Value        float64           `json:"value"`
	Owner        string            `json:"owner"`
	CustomFields datatypes.JSONMap `gorm:"type:jsonb" json:"custom_fields"`
}

// Deal is a qualified opportunity moving through the pipeline.
type Deal struct {
	Record
	Title             string            `gorm:"size:200;not null" json:"title" validate:"required,max=200"`
	CompanyID         *uint             `gorm:"index" json:"company_id"`
	ContactID         *uint             `gorm:"index" json:"contact_id"`
	Stage             string            `gorm:"size:32;default:'prospecting';index" json:"stage" validate:"omitempty,oneof=prospecting proposal negotiation won lost"`
	Amount            float64           `json:"amount" validate:"gte=0"`
	Probability       int               `json:"probability" validate:"gte=0,lte=100"`
	ExpectedCloseDate *time.Time        `json:"expected_close_date"`
	CustomFields      datatypes.JSONMap `gorm:"type:jsonb" json:"custom_fields"`
}

// Task is a to-do item, optionally related to another record.
type Task struct {
	Record
	Title        string            `gorm:"size:200;not null" json:"title" validate:"required,max=200"`
	Description  string            `gorm:"type:text" json:"description"`
	Status       string            `gorm:"size:32;default:'pending';index" json:"status" validate:"omitempty,oneof=pending in_progress completed"`
	Priority     string            `gorm:"size:16;default:'medium';index" json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate      *time.Time        `gorm:"index" json:"due_date"`
	AssignedTo   string            `gorm:"index" json:"assigned_to"`
	RelatedType  string            `gorm:"size:32" json:"related_type"`
	RelatedID    *uint             `json:"related_id"`
	CompletedAt  *time.Time        `json:"completed_at"`
	CustomFields datatypes.JSONMap `gorm:"type:jsonb" json:"custom_fields"`
}

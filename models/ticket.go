package models

// SupportTicket is raised from the in-app support widget.
type SupportTicket struct {
	Record
	Subject     string `gorm:"size:200;not null" json:"subject" validate:"required,max=200"`
	Description string `gorm:"type:text" json:"description"`
	Priority    string `gorm:"size:16;default:'medium'" json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Status      string `gorm:"size:32;default:'open';index" json:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
	ReporterID  *uint  `gorm:"index" json:"reporter_id"`
}

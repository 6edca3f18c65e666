package models

import (
	"time"

	"gorm.io/datatypes"
)

// Activity log action types.
const (
	ActionCreate   = "CREATE"
	ActionUpdate   = "UPDATE"
	ActionDelete   = "DELETE"
	ActionLogin    = "LOGIN"
	ActionLogout   = "LOGOUT"
	ActionUpload   = "UPLOAD"
	ActionDownload = "DOWNLOAD"
	ActionOther    = "OTHER"
)

// ActivityLog is an append-only audit entry. A nil UserID marks a
// system-initiated action.
type ActivityLog struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       *uint          `gorm:"index" json:"userId"`
	ActionType   string         `gorm:"size:16;not null;index" json:"actionType"`
	ResourceType string         `gorm:"size:50;not null;index:idx_activity_resource,priority:1" json:"resourceType"`
	ResourceID   string         `gorm:"size:64;index:idx_activity_resource,priority:2" json:"resourceId"`
	Metadata     datatypes.JSON `gorm:"type:jsonb" json:"metadata"`
	CreatedAt    time.Time      `gorm:"index" json:"createdAt"`
}

// ValidAction reports whether a is one of the known action types.
func ValidAction(a string) bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionLogin, ActionLogout,
		ActionUpload, ActionDownload, ActionOther:
		return true
	}
	return false
}

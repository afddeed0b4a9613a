package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records who did what to which resource.
type AuditLog struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	UserID      uuid.UUID `gorm:"type:text;not null;index" json:"user_id"`
	Action      string    `gorm:"size:64;not null;index" json:"action"`
	Resource    string    `gorm:"size:128;not null" json:"resource"`
	DetailsJSON string    `gorm:"type:text" json:"details_json"`
	Timestamp   time.Time `gorm:"index" json:"timestamp"`
}

// TableName overrides GORM's pluralized default.
func (AuditLog) TableName() string {
	return "audit_log"
}

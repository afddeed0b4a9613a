package models

import "time"

// Permission represents a guarded action that can be granted to roles.
// Structurally a Group with an extra classification tag.
type Permission struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	PID       uint      `gorm:"column:pid;index" json:"pid"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Code      string    `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Intro     string    `gorm:"size:255" json:"intro"`
	Category  string    `gorm:"size:64;index" json:"category"`
	Status    Status    `gorm:"not null;default:0;index" json:"status"`
	SubStatus SubStatus `gorm:"column:sub_status;not null;default:0" json:"sub_status"`
	Creator   string    `gorm:"size:64" json:"creator,omitempty"`
	Editor    string    `gorm:"size:64" json:"editor,omitempty"`
	Sort      int       `gorm:"not null;default:0" json:"sort"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides GORM's pluralized default.
func (Permission) TableName() string {
	return "permission"
}

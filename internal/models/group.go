package models

import "time"

// Group represents a user group. Groups form a hierarchy through PID and
// are soft-deleted via the status pair rather than removed.
type Group struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	PID       uint      `gorm:"column:pid;index" json:"pid"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Code      string    `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Intro     string    `gorm:"size:255" json:"intro"`
	Status    Status    `gorm:"not null;default:0;index" json:"status"`
	SubStatus SubStatus `gorm:"column:sub_status;not null;default:0" json:"sub_status"`
	Creator   string    `gorm:"size:64" json:"creator,omitempty"`
	Editor    string    `gorm:"size:64" json:"editor,omitempty"`
	Sort      int       `gorm:"not null;default:0" json:"sort"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides GORM's pluralized default.
func (Group) TableName() string {
	return "group"
}

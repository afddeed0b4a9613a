package models

import "time"

// Role is the target of a group binding (admin, operator, viewer).
type Role struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName overrides GORM's pluralized default.
func (Role) TableName() string {
	return "role"
}

package models

import "time"

// GroupRole links a group to a role. Re-binding the same pair inserts a
// new row; no uniqueness is enforced on (group_id, role_id).
type GroupRole struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	GroupID   uint      `gorm:"column:group_id;not null;index" json:"group_id"`
	RoleID    uint      `gorm:"column:role_id;not null;index" json:"role_id"`
	Creator   string    `gorm:"size:64" json:"creator,omitempty"`
	Editor    string    `gorm:"size:64" json:"editor,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides GORM's pluralized default.
func (GroupRole) TableName() string {
	return "group_role"
}

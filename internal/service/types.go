package service

import "github.com/google/uuid"

// Actor is the caller identity recorded as creator/editor and in audit
// entries.
type Actor struct {
	ID   uuid.UUID
	Name string
}

// CreateGroupRequest holds parameters for creating a group.
type CreateGroupRequest struct {
	PID    uint
	Name   string
	Code   string
	Intro  string
	Sort   int
	RoleID uint // optional: bind the new group to this role in the same transaction
}

// EditGroupRequest holds parameters for a partial group update.
// Zero-valued fields mean "no change".
type EditGroupRequest struct {
	PID    uint
	Name   string
	Intro  string
	Sort   int
	RoleID uint
}

// CreatePermissionRequest holds parameters for creating a permission.
type CreatePermissionRequest struct {
	PID      uint
	Name     string
	Code     string
	Intro    string
	Category string
	Sort     int
}

// EditPermissionRequest holds parameters for a partial permission update.
// Zero-valued fields mean "no change".
type EditPermissionRequest struct {
	PID      uint
	Name     string
	Intro    string
	Category string
	Sort     int
}

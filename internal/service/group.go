package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/stackmill/accessd/internal/audit"
	"github.com/stackmill/accessd/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GroupService contains the business logic for group operations. Every
// mutation runs inside one transaction: the row lock taken by the initial
// fetch serializes concurrent transitions on the same id, and the guarded
// update only fires when the row is still in the expected state.
type GroupService struct {
	db       *gorm.DB
	recorder *audit.Recorder
}

// NewGroupService creates a new GroupService.
func NewGroupService(db *gorm.DB, recorder *audit.Recorder) *GroupService {
	return &GroupService{db: db, recorder: recorder}
}

// List returns one page of groups ordered by (sort, id) ascending, plus
// the unfiltered total. Disabled and soft-deleted rows are included.
func (s *GroupService) List(ctx context.Context, page, pageSize int) ([]models.Group, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Group{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var groups []models.Group
	err := s.db.WithContext(ctx).
		Order("sort ASC, id ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&groups).Error
	if err != nil {
		return nil, 0, err
	}
	return groups, total, nil
}

// Create inserts a new group, optionally binding it to a role in the same
// transaction. A duplicate code fails with ConflictError.
func (s *GroupService) Create(ctx context.Context, req CreateGroupRequest, actor Actor) (*models.Group, error) {
	group := models.Group{
		PID:       req.PID,
		Name:      req.Name,
		Code:      req.Code,
		Intro:     req.Intro,
		Sort:      req.Sort,
		Status:    models.StatusValid,
		SubStatus: models.SubStatusValid,
		Creator:   actor.Name,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Fast-path duplicate check for a clear error message; the unique
		// index on code remains the authoritative guard under races.
		var count int64
		if err := tx.Model(&models.Group{}).Where("code = ?", req.Code).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &ConflictError{Message: "code repeat"}
		}

		if err := tx.Create(&group).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Message: "code repeat"}
			}
			return err
		}

		if req.RoleID != 0 {
			return bindGroupRole(tx, group.ID, req.RoleID, actor)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, actor.ID, audit.ActionCreateGroup, fmt.Sprintf("group:%d", group.ID), map[string]interface{}{
		"name": group.Name,
		"code": group.Code,
	})
	return &group, nil
}

// Edit applies a partial update under a row lock. Zero-valued request
// fields are left untouched; editor is always set. Any status may be
// edited. Returns ErrNotFound when the id does not exist.
func (s *GroupService) Edit(ctx context.Context, id uint, req EditGroupRequest, actor Actor) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.Group
		err := forUpdate(tx).Where("id = ?", id).First(&group).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		vals := map[string]interface{}{
			"editor": actor.Name,
		}
		if req.PID != 0 {
			vals["pid"] = req.PID
		}
		if req.Name != "" {
			vals["name"] = req.Name
		}
		if req.Intro != "" {
			vals["intro"] = req.Intro
		}
		if req.Sort != 0 {
			vals["sort"] = req.Sort
		}

		if err := tx.Model(&models.Group{}).Where("id = ?", id).Updates(vals).Error; err != nil {
			return err
		}

		if req.RoleID != 0 {
			return bindGroupRole(tx, id, req.RoleID, actor)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.recorder.Record(ctx, actor.ID, audit.ActionEditGroup, fmt.Sprintf("group:%d", id), nil)
	return nil
}

// Disable transitions a group from (valid, valid) to (invalid, disabled).
// A row in any other state, or a missing row, is left untouched.
func (s *GroupService) Disable(ctx context.Context, id uint, actor Actor) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockGroup(tx, id); err != nil {
			return err
		}
		return tx.Model(&models.Group{}).
			Where("id = ? AND status = ? AND sub_status = ?", id, models.StatusValid, models.SubStatusValid).
			Updates(map[string]interface{}{
				"status":     models.StatusInvalid,
				"sub_status": models.SubStatusDisabled,
			}).Error
	})
	if err != nil {
		return err
	}

	s.recorder.Record(ctx, actor.ID, audit.ActionDisableGroup, fmt.Sprintf("group:%d", id), nil)
	return nil
}

// Enable transitions a group from (invalid, disabled) back to
// (valid, valid). Soft-deleted rows never match the guard.
func (s *GroupService) Enable(ctx context.Context, id uint, actor Actor) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockGroup(tx, id); err != nil {
			return err
		}
		return tx.Model(&models.Group{}).
			Where("id = ? AND status = ? AND sub_status = ?", id, models.StatusInvalid, models.SubStatusDisabled).
			Updates(map[string]interface{}{
				"status":     models.StatusValid,
				"sub_status": models.SubStatusValid,
			}).Error
	})
	if err != nil {
		return err
	}

	s.recorder.Record(ctx, actor.ID, audit.ActionEnableGroup, fmt.Sprintf("group:%d", id), nil)
	return nil
}

// Delete soft-deletes a group. Idempotent: an already-deleted row matches
// nothing and the call still succeeds.
func (s *GroupService) Delete(ctx context.Context, id uint, actor Actor) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockGroup(tx, id); err != nil {
			return err
		}
		return tx.Model(&models.Group{}).
			Where("id = ? AND sub_status <> ?", id, models.SubStatusDeleted).
			Updates(map[string]interface{}{
				"status":     models.StatusInvalid,
				"sub_status": models.SubStatusDeleted,
			}).Error
	})
	if err != nil {
		return err
	}

	s.recorder.Record(ctx, actor.ID, audit.ActionDeleteGroup, fmt.Sprintf("group:%d", id), nil)
	return nil
}

// BindRole links a group to a role as a standalone operation. A single
// insert needs no explicit transaction.
func (s *GroupService) BindRole(ctx context.Context, groupID, roleID uint, actor Actor) error {
	if err := bindGroupRole(s.db.WithContext(ctx), groupID, roleID, actor); err != nil {
		return err
	}

	s.recorder.Record(ctx, actor.ID, audit.ActionBindGroupRole, fmt.Sprintf("group:%d", groupID), map[string]interface{}{
		"role_id": roleID,
	})
	return nil
}

// lockGroup takes the row lock that serializes concurrent transitions on
// one id. A missing row is tolerated: the guarded update that follows
// matches nothing and the command degrades to a no-op.
func lockGroup(tx *gorm.DB, id uint) error {
	var group models.Group
	err := forUpdate(tx).Where("id = ?", id).First(&group).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

// forUpdate applies a row lock on dialects that support it. SQLite has no
// FOR UPDATE syntax and serializes writers on its own.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// bindGroupRole inserts a binding row on the given handle, which may be a
// transaction when called from Create/Edit. Re-binding the same pair
// inserts another row.
func bindGroupRole(db *gorm.DB, groupID, roleID uint, actor Actor) error {
	binding := models.GroupRole{
		GroupID: groupID,
		RoleID:  roleID,
		Creator: actor.Name,
		Editor:  actor.Name,
	}
	return db.Create(&binding).Error
}

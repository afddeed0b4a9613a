package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/stackmill/accessd/internal/audit"
	"github.com/stackmill/accessd/internal/models"
	"gorm.io/gorm"
)

// PermissionService contains the business logic for permission operations.
// Same transactional discipline as GroupService; permissions additionally
// carry a category tag and have no role binding.
type PermissionService struct {
	db       *gorm.DB
	recorder *audit.Recorder
}

// NewPermissionService creates a new PermissionService.
func NewPermissionService(db *gorm.DB, recorder *audit.Recorder) *PermissionService {
	return &PermissionService{db: db, recorder: recorder}
}

// List returns one page of permissions ordered by (sort, id) ascending,
// plus the unfiltered total.
func (s *PermissionService) List(ctx context.Context, page, pageSize int) ([]models.Permission, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Permission{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var perms []models.Permission
	err := s.db.WithContext(ctx).
		Order("sort ASC, id ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&perms).Error
	if err != nil {
		return nil, 0, err
	}
	return perms, total, nil
}

// Create inserts a new permission. A duplicate code fails with
// ConflictError.
func (s *PermissionService) Create(ctx context.Context, req CreatePermissionRequest, actor Actor) (*models.Permission, error) {
	perm := models.Permission{
		PID:       req.PID,
		Name:      req.Name,
		Code:      req.Code,
		Intro:     req.Intro,
		Category:  req.Category,
		Sort:      req.Sort,
		Status:    models.StatusValid,
		SubStatus: models.SubStatusValid,
		Creator:   actor.Name,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Permission{}).Where("code = ?", req.Code).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &ConflictError{Message: "code repeat"}
		}

		if err := tx.Create(&perm).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Message: "code repeat"}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, actor.ID, audit.ActionCreatePermission, fmt.Sprintf("permission:%d", perm.ID), map[string]interface{}{
		"name": perm.Name,
		"code": perm.Code,
	})
	return &perm, nil
}

// Edit applies a partial update under a row lock. Zero-valued request
// fields are left untouched; editor is always set.
func (s *PermissionService) Edit(ctx context.Context, id uint, req EditPermissionRequest, actor Actor) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var perm models.Permission
		err := forUpdate(tx).Where("id = ?", id).First(&perm).Error
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
		if req.Category != "" {
			vals["category"] = req.Category
		}
		if req.Sort != 0 {
			vals["sort"] = req.Sort
		}

		return tx.Model(&models.Permission{}).Where("id = ?", id).Updates(vals).Error
	})
	if err != nil {
		return err
	}

	s.recorder.Record(ctx, actor.ID, audit.ActionEditPermission, fmt.Sprintf("permission:%d", id), nil)
	return nil
}

// Disable transitions a permission from (valid, valid) to
// (invalid, disabled).
func (s *PermissionService) Disable(ctx context.Context, id uint, actor Actor) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPermission(tx, id); err != nil {
			return err
		}
		return tx.Model(&models.Permission{}).
			Where("id = ? AND status = ? AND sub_status = ?", id, models.StatusValid, models.SubStatusValid).
			Updates(map[string]interface{}{
				"status":     models.StatusInvalid,
				"sub_status": models.SubStatusDisabled,
			}).Error
	})
	if err != nil {
		return err
	}

	s.recorder.Record(ctx, actor.ID, audit.ActionDisablePerm, fmt.Sprintf("permission:%d", id), nil)
	return nil
}

// Enable transitions a permission from (invalid, disabled) back to
// (valid, valid). Soft-deleted rows never match the guard.
func (s *PermissionService) Enable(ctx context.Context, id uint, actor Actor) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPermission(tx, id); err != nil {
			return err
		}
		return tx.Model(&models.Permission{}).
			Where("id = ? AND status = ? AND sub_status = ?", id, models.StatusInvalid, models.SubStatusDisabled).
			Updates(map[string]interface{}{
				"status":     models.StatusValid,
				"sub_status": models.SubStatusValid,
			}).Error
	})
	if err != nil {
		return err
	}

	s.recorder.Record(ctx, actor.ID, audit.ActionEnablePerm, fmt.Sprintf("permission:%d", id), nil)
	return nil
}

// Delete soft-deletes a permission. Idempotent.
func (s *PermissionService) Delete(ctx context.Context, id uint, actor Actor) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPermission(tx, id); err != nil {
			return err
		}
		return tx.Model(&models.Permission{}).
			Where("id = ? AND sub_status <> ?", id, models.SubStatusDeleted).
			Updates(map[string]interface{}{
				"status":     models.StatusInvalid,
				"sub_status": models.SubStatusDeleted,
			}).Error
	})
	if err != nil {
		return err
	}

	s.recorder.Record(ctx, actor.ID, audit.ActionDeletePermission, fmt.Sprintf("permission:%d", id), nil)
	return nil
}

func lockPermission(tx *gorm.DB, id uint) error {
	var perm models.Permission
	err := forUpdate(tx).Where("id = ?", id).First(&perm).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stackmill/accessd/internal/models"
)

func permSetup(t *testing.T) (*PermissionService, *GroupService) {
	t.Helper()
	db := testDB(t)
	return NewPermissionService(db, nil), NewGroupService(db, nil)
}

func TestPermissionCreate_DuplicateCode(t *testing.T) {
	svc, _ := permSetup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreatePermissionRequest{Name: "read users", Code: "user:read"}, testActor)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Create(ctx, CreatePermissionRequest{Name: "other", Code: "user:read"}, testActor)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestPermissionCode_IndependentOfGroupCode(t *testing.T) {
	psvc, gsvc := permSetup(t)
	ctx := context.Background()

	if _, err := gsvc.Create(ctx, CreateGroupRequest{Name: "shared", Code: "shared"}, testActor); err != nil {
		t.Fatalf("create group: %v", err)
	}
	// Same code in the permission namespace is fine
	if _, err := psvc.Create(ctx, CreatePermissionRequest{Name: "shared", Code: "shared"}, testActor); err != nil {
		t.Fatalf("create permission with group's code: %v", err)
	}
}

func TestPermissionStateMachine(t *testing.T) {
	svc, _ := permSetup(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreatePermissionRequest{Name: "read users", Code: "user:read", Category: "user"}, testActor)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Disable(ctx, p.ID, testActor); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if err := svc.Enable(ctx, p.ID, testActor); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if err := svc.Delete(ctx, p.ID, testActor); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// Deleted rows never come back
	if err := svc.Enable(ctx, p.ID, testActor); err != nil {
		t.Fatalf("enable after delete: %v", err)
	}

	var stored models.Permission
	if err := svc.db.First(&stored, p.ID).Error; err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if stored.Status != models.StatusInvalid || stored.SubStatus != models.SubStatusDeleted {
		t.Errorf("status=%d sub_status=%d, want invalid/deleted", stored.Status, stored.SubStatus)
	}
}

func TestPermissionEdit_Category(t *testing.T) {
	svc, _ := permSetup(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreatePermissionRequest{Name: "read users", Code: "user:read", Category: "user"}, testActor)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Edit(ctx, p.ID, EditPermissionRequest{Category: "identity"}, testActor); err != nil {
		t.Fatalf("edit: %v", err)
	}

	var stored models.Permission
	if err := svc.db.First(&stored, p.ID).Error; err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if stored.Category != "identity" {
		t.Errorf("category = %q, want identity", stored.Category)
	}
	if stored.Name != "read users" || stored.Code != "user:read" {
		t.Errorf("untouched fields changed: name=%q code=%q", stored.Name, stored.Code)
	}
}

func TestPermissionEdit_NotFound(t *testing.T) {
	svc, _ := permSetup(t)

	err := svc.Edit(context.Background(), 9999, EditPermissionRequest{Name: "ghost"}, testActor)
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

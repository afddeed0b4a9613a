// Package rbac is the permission registry: it answers "does this caller
// hold capability C?" and records grants. It does not compute
// role-permission graphs.
package rbac

import (
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelConf string

var enforcer *casbin.Enforcer

const actInvoke = "invoke"

// InitEnforcer initializes the Casbin enforcer
func InitEnforcer(db *gorm.DB, logger *slog.Logger) error {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	// Load model from embedded string
	m, err := model.NewModelFromString(modelConf)
	if err != nil {
		return fmt.Errorf("failed to parse casbin model: %w", err)
	}

	e, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	// Load policies from database
	if err := e.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to load policies: %w", err)
	}

	enforcer = e
	logger.Info("RBAC enforcer initialized")
	return nil
}

// Authorize checks whether the user holds the capability.
func Authorize(userID uuid.UUID, cap Capability) (bool, error) {
	return enforcer.Enforce(userID.String(), string(cap), actInvoke)
}

// Grant gives the user a capability.
func Grant(userID uuid.UUID, cap Capability) error {
	if _, err := enforcer.AddPolicy(userID.String(), string(cap), actInvoke); err != nil {
		return fmt.Errorf("failed to add policy: %w", err)
	}
	return enforcer.SavePolicy()
}

// Revoke removes a capability from the user.
func Revoke(userID uuid.UUID, cap Capability) error {
	if _, err := enforcer.RemovePolicy(userID.String(), string(cap), actInvoke); err != nil {
		return fmt.Errorf("failed to remove policy: %w", err)
	}
	return enforcer.SavePolicy()
}

// GrantAll gives the user every capability. Used for the bootstrap admin.
func GrantAll(userID uuid.UUID) error {
	for _, c := range All() {
		if _, err := enforcer.AddPolicy(userID.String(), string(c), actInvoke); err != nil {
			return fmt.Errorf("failed to add policy for %s: %w", c, err)
		}
	}
	return enforcer.SavePolicy()
}

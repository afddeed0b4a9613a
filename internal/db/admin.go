package db

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/stackmill/accessd/internal/models"
	"github.com/stackmill/accessd/internal/rbac"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CreateDefaultAdmin creates a default admin user if ADMIN_USERNAME and
// ADMIN_PASSWORD are set and no users exist yet. The new admin is granted
// every capability so a fresh install is immediately operable.
func CreateDefaultAdmin(db *gorm.DB) error {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	email := os.Getenv("ADMIN_EMAIL")

	if username == "" || password == "" {
		slog.Info("No ADMIN_USERNAME or ADMIN_PASSWORD set, skipping default admin creation")
		return nil
	}

	if email == "" {
		email = fmt.Sprintf("%s@accessd.local", username)
	}

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		slog.Info("Users already exist, skipping default admin creation")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	if err := rbac.GrantAll(user.ID); err != nil {
		return fmt.Errorf("failed to grant capabilities to admin: %w", err)
	}

	slog.Info("Created default admin user", "username", username)
	return nil
}

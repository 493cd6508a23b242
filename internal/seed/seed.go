// Package seed creates the first superadmin account on first boot when the
// users table is empty. Every later role change goes through the CLI.
package seed

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/sanandreas/govportal/internal/model"
	"github.com/sanandreas/govportal/internal/policy"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SuperadminOptions configures the seed superadmin user.
type SuperadminOptions struct {
	Email    string
	Password string // if empty, a random password is generated
}

// EnsureSuperadmin creates a seed superadmin user if no users exist.
// A generated password is printed to stdout exactly once; a password supplied
// in opts is used as-is. The function is idempotent and safe to call on
// every startup.
func EnsureSuperadmin(_ context.Context, db *gorm.DB, opts SuperadminOptions, log *slog.Logger) error {
	var count int64
	if err := db.Model(&model.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		log.Info("seed superadmin already exists")
		return nil
	}

	password := opts.Password
	if password == "" {
		var err error
		password, err = generatePassword()
		if err != nil {
			return fmt.Errorf("generate seed password: %w", err)
		}
		fmt.Printf("[govportal] seed superadmin password: %s\n", password)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	u := &model.User{
		Email:        opts.Email,
		PasswordHash: string(hash),
		Roles:        model.StringSlice{policy.RoleSuperadmin},
	}
	if err := db.Create(u).Error; err != nil {
		return fmt.Errorf("insert seed superadmin: %w", err)
	}

	log.Info("seed superadmin created", "email", opts.Email)
	return nil
}

func generatePassword() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

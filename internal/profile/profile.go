// Package profile manages the app-level user profile that sits beside the
// auth account. Profiles are created lazily on first authenticated read and
// never expose role mutation; roles change only through the CLI.
package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/sanandreas/govportal/internal/model"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no user exists for the id.
var ErrNotFound = errors.New("user not found")

// Service reads and updates user profiles.
type Service struct {
	db *gorm.DB
}

// NewService creates a Service backed by the given GORM DB.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GetOrCreate loads the profile for userID, creating an empty one keyed to
// the authenticated identity if it does not exist yet.
func (s *Service) GetOrCreate(ctx context.Context, userID, email string) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).
		Where("id = ?", userID).
		Attrs(model.User{ID: userID, Email: email, Roles: model.StringSlice{}}).
		FirstOrCreate(&u).Error
	if err != nil {
		return nil, fmt.Errorf("get or create profile: %w", err)
	}
	return &u, nil
}

// Update holds the editable profile fields. Nil pointers leave the stored
// value untouched.
type Update struct {
	ICName    *string
	ICPhone   *string
	DiscordID *string
	PhotoURL  *string
	Bio       *string
}

// Apply writes the non-nil fields of upd to the profile. Roles and email are
// deliberately not updatable here.
func (s *Service) Apply(ctx context.Context, userID string, upd Update) (*model.User, error) {
	fields := map[string]any{}
	if upd.ICName != nil {
		fields["ic_name"] = *upd.ICName
	}
	if upd.ICPhone != nil {
		fields["ic_phone"] = *upd.ICPhone
	}
	if upd.DiscordID != nil {
		fields["discord_id"] = *upd.DiscordID
	}
	if upd.PhotoURL != nil {
		fields["photo_url"] = *upd.PhotoURL
	}
	if upd.Bio != nil {
		fields["bio"] = *upd.Bio
	}

	if len(fields) > 0 {
		res := s.db.WithContext(ctx).Model(&model.User{}).
			Where("id = ?", userID).
			Updates(fields)
		if res.Error != nil {
			return nil, fmt.Errorf("update profile: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}

	var u model.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &u, nil
}

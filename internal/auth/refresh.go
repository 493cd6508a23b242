package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/sanandreas/govportal/internal/model"
	"gorm.io/gorm"
)

// RefreshStore manages refresh token persistence via GORM.
type RefreshStore struct {
	db  *gorm.DB
	ttl time.Duration
}

// NewRefreshStore creates a RefreshStore backed by the given GORM DB.
// ttl is applied to every issued and rotated token.
func NewRefreshStore(db *gorm.DB, ttl time.Duration) *RefreshStore {
	return &RefreshStore{db: db, ttl: ttl}
}

// IssueRefreshToken generates a secure random token, stores its SHA-256 hash,
// and returns the plaintext token to the caller (stored nowhere).
func (s *RefreshStore) IssueRefreshToken(ctx context.Context, userID string) (string, error) {
	raw, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}

	rt := &model.RefreshToken{
		UserID:    userID,
		TokenHash: hashToken(raw),
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if err := s.db.WithContext(ctx).Create(rt).Error; err != nil {
		return "", fmt.Errorf("store refresh token: %w", err)
	}
	return raw, nil
}

// RotateRefreshToken validates the given token, revokes it, and issues a new one.
// Returns the new refresh token and the user ID.
func (s *RefreshStore) RotateRefreshToken(ctx context.Context, rawToken string) (token string, userID string, err error) {
	h := hashToken(rawToken)

	var rt model.RefreshToken
	if err := s.db.WithContext(ctx).Where("token_hash = ?", h).First(&rt).Error; err != nil {
		return "", "", fmt.Errorf("refresh token not found: %w", err)
	}
	if rt.RevokedAt != nil {
		return "", "", fmt.Errorf("refresh token has been revoked")
	}
	if time.Now().After(rt.ExpiresAt) {
		return "", "", fmt.Errorf("refresh token has expired")
	}

	// Revoke the old token.
	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&rt).Update("revoked_at", now).Error; err != nil {
		return "", "", fmt.Errorf("revoke old refresh token: %w", err)
	}

	newRaw, err := s.IssueRefreshToken(ctx, rt.UserID)
	if err != nil {
		return "", "", err
	}
	return newRaw, rt.UserID, nil
}

// RevokeRefreshToken marks the given token as revoked.
func (s *RefreshStore) RevokeRefreshToken(ctx context.Context, rawToken string) error {
	h := hashToken(rawToken)
	return s.db.WithContext(ctx).Model(&model.RefreshToken{}).
		Where("token_hash = ?", h).
		Update("revoked_at", time.Now()).Error
}

// PurgeExpired deletes tokens that expired or were revoked before cutoff.
// Called by the background worker; returns the number of rows removed.
func (s *RefreshStore) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)", cutoff, cutoff).
		Delete(&model.RefreshToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge refresh tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

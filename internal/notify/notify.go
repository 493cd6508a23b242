// Package notify derives the unread-complaint view shown to a signed-in
// filer: the badge count and the list behind it.
package notify

import (
	"context"
	"fmt"

	"github.com/sanandreas/govportal/internal/model"
	"gorm.io/gorm"
)

// Projection computes unread complaint state per user.
type Projection struct {
	db *gorm.DB
}

// New creates a Projection backed by the given GORM DB.
func New(db *gorm.DB) *Projection {
	return &Projection{db: db}
}

// Unread is the unread view for one user.
type Unread struct {
	Count int               `json:"count"`
	Items []model.Complaint `json:"items"`
}

// UnreadFor returns the complaints authored by userID that carry official
// activity the filer has not seen yet, newest first.
func (p *Projection) UnreadFor(ctx context.Context, userID string) (*Unread, error) {
	var items []model.Complaint
	err := p.db.WithContext(ctx).
		Where("author_id = ? AND is_read_by_user = ?", userID, false).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list unread complaints: %w", err)
	}
	return &Unread{Count: len(items), Items: items}, nil
}

// MarkAllRead flips is_read_by_user on every unread complaint owned by
// userID in a single statement, so a crash cannot leave the set half-read.
func (p *Projection) MarkAllRead(ctx context.Context, userID string) error {
	err := p.db.WithContext(ctx).Model(&model.Complaint{}).
		Where("author_id = ? AND is_read_by_user = ?", userID, false).
		Update("is_read_by_user", true).Error
	if err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}

// Package directory is the shared CRUD layer behind the flat department
// record types: announcements, job postings, public records, rosters, bar
// members, dockets, and laws. Every type follows the same pattern — a public
// department-filtered list and moderator-gated writes — so one generic store
// serves them all.
package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/sanandreas/govportal/internal/policy"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no record matches the id.
var ErrNotFound = errors.New("record not found")

// Store provides CRUD over one record type.
type Store[T any] struct {
	db *gorm.DB
}

// NewStore creates a Store for T.
func NewStore[T any](db *gorm.DB) *Store[T] {
	return &Store[T]{db: db}
}

// List returns records, newest first, optionally filtered to one department.
func (s *Store[T]) List(ctx context.Context, dept *policy.Department) ([]T, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if dept != nil {
		q = q.Where("department = ?", string(*dept))
	}
	var out []T
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return out, nil
}

// Get loads one record by id.
func (s *Store[T]) Get(ctx context.Context, id string) (*T, error) {
	var rec T
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load record: %w", err)
	}
	return &rec, nil
}

// Create inserts rec and returns it with its assigned id.
func (s *Store[T]) Create(ctx context.Context, rec *T) (*T, error) {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}
	return rec, nil
}

// Update overwrites the stored record with rec, keyed by id.
func (s *Store[T]) Update(ctx context.Context, id string, rec *T) (*T, error) {
	res := s.db.WithContext(ctx).Model(rec).
		Where("id = ?", id).
		Select("*").Omit("id", "created_at").
		Updates(rec)
	if res.Error != nil {
		return nil, fmt.Errorf("update record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes the record. Complaints are the one type that is never
// deleted; they do not go through this store.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	var rec T
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&rec)
	if res.Error != nil {
		return fmt.Errorf("delete record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

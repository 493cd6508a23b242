// Package complaint implements the citizen complaint lifecycle: filing,
// anonymous lookup by access code, threaded replies, status changes, and
// read-flag flips. All invariants the portal relies on are enforced here,
// server-side, not in the client.
package complaint

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sanandreas/govportal/internal/model"
	"github.com/sanandreas/govportal/internal/policy"
	"gorm.io/gorm"
)

// Conventional status values. Status is stored as free-form text; only the
// automatic Pending -> Under Investigation transition and the closed-thread
// reply rejection are enforced.
const (
	StatusPending            = "Pending"
	StatusUnderInvestigation = "Under Investigation"
	StatusResolved           = "Resolved"
	StatusDismissed          = "Dismissed"
)

// Message roles.
const (
	RoleCivilian = "civilian"
	RoleOfficial = "official"
)

var (
	// ErrNotFound is returned when no complaint matches the id or access code.
	ErrNotFound = errors.New("complaint not found")
	// ErrClosed is returned when a civilian replies to a resolved or
	// dismissed complaint.
	ErrClosed = errors.New("complaint is closed")
	// ErrCodeExhausted is returned when access-code generation keeps
	// colliding with existing codes.
	ErrCodeExhausted = errors.New("could not allocate a unique access code")
	// ErrEmptyContent is returned for blank message content.
	ErrEmptyContent = errors.New("message content is empty")
)

// codeAttempts bounds the collision retry loop during filing.
const codeAttempts = 5

// Service is the complaint lifecycle service.
type Service struct {
	db *gorm.DB
}

// NewService creates a Service backed by the given GORM DB.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// NewComplaint is the filing input.
type NewComplaint struct {
	Department policy.Department
	Name       string
	Contact    string
	Details    string // initial narrative, becomes message seq 1
	AuthorID   *string
}

// File creates a complaint with status Pending and seeds the message thread
// with the filing narrative as the first civilian message. The returned
// complaint carries the generated access code; it is shown to the filer once.
func (s *Service) File(ctx context.Context, in NewComplaint) (*model.Complaint, error) {
	if strings.TrimSpace(in.Details) == "" {
		return nil, ErrEmptyContent
	}

	c := &model.Complaint{
		Department:    string(in.Department),
		Status:        StatusPending,
		Name:          in.Name,
		Contact:       in.Contact,
		AuthorID:      in.AuthorID,
		IsReadByAdmin: false,
		IsReadByUser:  true,
	}

	// The access code has no server-side coordination beyond the unique
	// index, so collisions surface as constraint violations; retry with a
	// fresh code a bounded number of times.
	var lastErr error
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := newAccessCode()
		if err != nil {
			return nil, err
		}
		c.AccessCode = code

		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(c).Error; err != nil {
				return err
			}
			msg := &model.ComplaintMessage{
				ComplaintID: c.ID,
				Seq:         1,
				Sender:      in.Name,
				Role:        RoleCivilian,
				Content:     in.Details,
			}
			return tx.Create(msg).Error
		})
		if err == nil {
			return s.Get(ctx, c.ID)
		}
		if !isUniqueViolation(err) {
			return nil, fmt.Errorf("file complaint: %w", err)
		}
		c.ID = "" // regenerate both id and code on retry
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", ErrCodeExhausted, lastErr)
}

// Get loads a complaint and its full message thread in seq order.
func (s *Service) Get(ctx context.Context, id string) (*model.Complaint, error) {
	var c model.Complaint
	err := s.db.WithContext(ctx).
		Preload("Messages", func(tx *gorm.DB) *gorm.DB { return tx.Order("seq ASC") }).
		First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load complaint: %w", err)
	}
	return &c, nil
}

// Lookup is the anonymous read path: it resolves a complaint by its access
// code. The HTTP layer throttles this route.
func (s *Service) Lookup(ctx context.Context, accessCode string) (*model.Complaint, error) {
	code := strings.ToUpper(strings.TrimSpace(accessCode))
	var c model.Complaint
	err := s.db.WithContext(ctx).
		Preload("Messages", func(tx *gorm.DB) *gorm.DB { return tx.Order("seq ASC") }).
		First(&c, "access_code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup complaint: %w", err)
	}
	return &c, nil
}

// ReplyAsCivilian appends a civilian message and marks the thread unread for
// officials. Replies to resolved or dismissed complaints are rejected.
func (s *Service) ReplyAsCivilian(ctx context.Context, id, content string) (*model.Complaint, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := lockComplaint(tx, id)
		if err != nil {
			return err
		}
		if c.Status == StatusResolved || c.Status == StatusDismissed {
			return ErrClosed
		}
		if err := appendMessage(tx, c.ID, c.Name, RoleCivilian, content); err != nil {
			return err
		}
		return tx.Model(c).Update("is_read_by_admin", false).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// ReplyAsOfficial appends an official message, marks the thread unread for
// the filer, and moves a Pending complaint to Under Investigation. The
// transition fires at most once: a complaint that is already past Pending
// keeps its status.
func (s *Service) ReplyAsOfficial(ctx context.Context, id, sender, content string) (*model.Complaint, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := lockComplaint(tx, id)
		if err != nil {
			return err
		}
		if err := appendMessage(tx, c.ID, sender, RoleOfficial, content); err != nil {
			return err
		}
		updates := map[string]any{"is_read_by_user": false}
		if c.Status == StatusPending {
			updates["status"] = StatusUnderInvestigation
		}
		return tx.Model(c).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// SetStatus overwrites the status. There is no transition table: any status
// is reachable from any status, including reopening a resolved complaint.
func (s *Service) SetStatus(ctx context.Context, id, status string) error {
	res := s.db.WithContext(ctx).Model(&model.Complaint{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("set status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkReadByAdmin flips the official-side read flag. Idempotent.
func (s *Service) MarkReadByAdmin(ctx context.Context, id string) error {
	return s.markRead(ctx, id, "is_read_by_admin")
}

// MarkReadByUser flips the filer-side read flag. Idempotent.
func (s *Service) MarkReadByUser(ctx context.Context, id string) error {
	return s.markRead(ctx, id, "is_read_by_user")
}

func (s *Service) markRead(ctx context.Context, id, column string) error {
	res := s.db.WithContext(ctx).Model(&model.Complaint{}).
		Where("id = ?", id).
		Update(column, true)
	if res.Error != nil {
		return fmt.Errorf("mark read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByScope returns complaints visible to the given policy scope, newest
// first, without message threads.
func (s *Service) ListByScope(ctx context.Context, scope policy.Scope) ([]model.Complaint, error) {
	if scope.Empty() {
		return []model.Complaint{}, nil
	}
	q := s.db.WithContext(ctx).Model(&model.Complaint{}).Order("created_at DESC")
	if !scope.All {
		depts := scope.List()
		names := make([]string, len(depts))
		for i, d := range depts {
			names[i] = string(d)
		}
		q = q.Where("department IN ?", names)
	}
	var out []model.Complaint
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	return out, nil
}

func lockComplaint(tx *gorm.DB, id string) (*model.Complaint, error) {
	var c model.Complaint
	err := tx.First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load complaint: %w", err)
	}
	return &c, nil
}

func appendMessage(tx *gorm.DB, complaintID, sender, role, content string) error {
	// next seq is computed inside the surrounding transaction so concurrent
	// appends cannot share a number; the unique (complaint_id, seq) index
	// backstops it.
	var next int
	row := tx.Model(&model.ComplaintMessage{}).
		Where("complaint_id = ?", complaintID).
		Select("COALESCE(MAX(seq), 0) + 1")
	if err := row.Scan(&next).Error; err != nil {
		return fmt.Errorf("next seq: %w", err)
	}
	msg := &model.ComplaintMessage{
		ComplaintID: complaintID,
		Seq:         next,
		Sender:      sender,
		Role:        role,
		Content:     content,
	}
	if err := tx.Create(msg).Error; err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// isUniqueViolation detects unique-constraint errors from both drivers
// without importing driver-specific error types.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

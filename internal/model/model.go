// Package model contains GORM model definitions shared across packages.
// All models are driver-agnostic: they work with both PostgreSQL and SQLite.
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StringSlice is a []string that GORM serialises as JSON for both SQLite
// and PostgreSQL (TEXT column).
type StringSlice []string

// User is the GORM model for the users table. It carries both the account
// credentials and the roleplay profile fields; the profile part is filled in
// lazily after first sign-in.
type User struct {
	ID           string      `gorm:"type:text;primaryKey" json:"id"`
	Email        string      `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string      `gorm:"type:text;not null;default:''" json:"-"`
	Roles        StringSlice `gorm:"type:text;not null;default:'[]';serializer:json" json:"roles"`
	ICName       string      `gorm:"type:text;not null;default:''" json:"ic_name"`
	ICPhone      string      `gorm:"type:text;not null;default:''" json:"ic_phone"`
	DiscordID    string      `gorm:"type:text;not null;default:''" json:"discord_id"`
	PhotoURL     string      `gorm:"type:text;not null;default:''" json:"photo_url"`
	Bio          string      `gorm:"type:text;not null;default:''" json:"bio"`
	CreatedAt    time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"not null" json:"updated_at"`
}

// BeforeCreate generates a UUID primary key if not set.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// RefreshToken is the GORM model for the refresh_tokens table.
type RefreshToken struct {
	ID        string     `gorm:"type:text;primaryKey" json:"id"`
	UserID    string     `gorm:"type:text;not null;index" json:"user_id"`
	TokenHash string     `gorm:"type:text;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
}

// BeforeCreate generates a UUID primary key if not set.
func (rt *RefreshToken) BeforeCreate(_ *gorm.DB) error {
	if rt.ID == "" {
		rt.ID = uuid.New().String()
	}
	return nil
}

// Complaint is a citizen complaint filed against a department. The thread of
// messages lives in complaint_messages; the first message is always the
// filing narrative. Complaints are never hard-deleted.
type Complaint struct {
	ID            string             `gorm:"type:text;primaryKey" json:"id"`
	AccessCode    string             `gorm:"type:text;not null;uniqueIndex" json:"access_code"`
	Department    string             `gorm:"type:text;not null;index" json:"department"`
	Status        string             `gorm:"type:text;not null" json:"status"`
	Name          string             `gorm:"type:text;not null" json:"name"`
	Contact       string             `gorm:"type:text;not null;default:''" json:"contact"`
	AuthorID      *string            `gorm:"type:text;index" json:"author_id,omitempty"` // present iff filed while authenticated
	IsReadByAdmin bool               `gorm:"not null;default:false" json:"is_read_by_admin"`
	IsReadByUser  bool               `gorm:"not null;default:true" json:"is_read_by_user"`
	Messages      []ComplaintMessage `gorm:"foreignKey:ComplaintID" json:"messages,omitempty"`
	CreatedAt     time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time          `gorm:"not null" json:"updated_at"`
}

// BeforeCreate generates a UUID primary key if not set.
func (c *Complaint) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// ComplaintMessage is one entry in a complaint thread. Seq is assigned
// server-side and is monotonic per complaint, so thread order never depends
// on client clocks.
type ComplaintMessage struct {
	ID          string    `gorm:"type:text;primaryKey" json:"id"`
	ComplaintID string    `gorm:"type:text;not null;index:idx_complaint_seq,unique" json:"complaint_id"`
	Seq         int       `gorm:"not null;index:idx_complaint_seq,unique" json:"seq"`
	Sender      string    `gorm:"type:text;not null" json:"sender"`
	Role        string    `gorm:"type:text;not null" json:"role"` // "civilian" or "official"
	Content     string    `gorm:"type:text;not null" json:"content"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

// BeforeCreate generates a UUID primary key if not set.
func (m *ComplaintMessage) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// Announcement is a department news post shown on the public site.
type Announcement struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	Department string    `gorm:"type:text;not null;index" json:"department"`
	Title      string    `gorm:"type:text;not null" json:"title"`
	Body       string    `gorm:"type:text;not null;default:''" json:"body"`
	Author     string    `gorm:"type:text;not null;default:''" json:"author"`
	Pinned     bool      `gorm:"not null;default:false" json:"pinned"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

// BeforeCreate generates a UUID primary key if not set.
func (a *Announcement) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// JobPosting is an open position listed by a department.
type JobPosting struct {
	ID           string    `gorm:"type:text;primaryKey" json:"id"`
	Department   string    `gorm:"type:text;not null;index" json:"department"`
	Title        string    `gorm:"type:text;not null" json:"title"`
	Description  string    `gorm:"type:text;not null;default:''" json:"description"`
	Requirements string    `gorm:"type:text;not null;default:''" json:"requirements"`
	ApplyURL     string    `gorm:"type:text;not null;default:''" json:"apply_url"`
	Open         bool      `gorm:"not null;default:true" json:"open"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

// BeforeCreate generates a UUID primary key if not set.
func (j *JobPosting) BeforeCreate(_ *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	return nil
}

// PublicRecord is a published department record (press release, report, ...).
type PublicRecord struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	Department string    `gorm:"type:text;not null;index" json:"department"`
	Title      string    `gorm:"type:text;not null" json:"title"`
	Body       string    `gorm:"type:text;not null;default:''" json:"body"`
	Category   string    `gorm:"type:text;not null;default:''" json:"category"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

// BeforeCreate generates a UUID primary key if not set.
func (r *PublicRecord) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// RosterMember is a personnel entry on a department roster. There is no
// referential link to a user account.
type RosterMember struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	Department string    `gorm:"type:text;not null;index" json:"department"`
	Name       string    `gorm:"type:text;not null" json:"name"`
	Rank       string    `gorm:"type:text;not null;default:''" json:"rank"`
	Badge      string    `gorm:"type:text;not null;default:''" json:"badge"`
	PhotoURL   string    `gorm:"type:text;not null;default:''" json:"photo_url"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

// BeforeCreate generates a UUID primary key if not set.
func (r *RosterMember) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// BarMember is an entry in the bar-association attorney directory.
type BarMember struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	Department string    `gorm:"type:text;not null;index" json:"department"`
	Name       string    `gorm:"type:text;not null" json:"name"`
	Firm       string    `gorm:"type:text;not null;default:''" json:"firm"`
	Phone      string    `gorm:"type:text;not null;default:''" json:"phone"`
	Specialty  string    `gorm:"type:text;not null;default:''" json:"specialty"`
	PhotoURL   string    `gorm:"type:text;not null;default:''" json:"photo_url"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

// BeforeCreate generates a UUID primary key if not set.
func (b *BarMember) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// Docket is a scheduled court hearing.
type Docket struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	Department string    `gorm:"type:text;not null;index" json:"department"`
	CaseNumber string    `gorm:"type:text;not null" json:"case_number"`
	Title      string    `gorm:"type:text;not null" json:"title"`
	Judge      string    `gorm:"type:text;not null;default:''" json:"judge"`
	Courtroom  string    `gorm:"type:text;not null;default:''" json:"courtroom"`
	HearingAt  time.Time `gorm:"not null" json:"hearing_at"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

// BeforeCreate generates a UUID primary key if not set.
func (d *Docket) BeforeCreate(_ *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// Law is a published statute entry.
type Law struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	Department string    `gorm:"type:text;not null;index" json:"department"`
	Code       string    `gorm:"type:text;not null" json:"code"`
	Title      string    `gorm:"type:text;not null" json:"title"`
	Body       string    `gorm:"type:text;not null;default:''" json:"body"`
	Fine       int       `gorm:"not null;default:0" json:"fine"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

// BeforeCreate generates a UUID primary key if not set.
func (l *Law) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

// Setting is a keyed configuration blob (e.g. "doj_quicklinks"). The value is
// stored as raw JSON; interpretation belongs to the owning package.
type Setting struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	Value     string    `gorm:"type:text;not null;default:''" json:"value"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

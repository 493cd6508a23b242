// Package blob stores uploaded files on local disk and issues the public
// URLs written back onto the owning documents. Path conventions:
//
//	bar_members/{ts}_{filename}
//	rosters/{dept}/{ts}_{filename}
//	profiles/{uid}/avatar.jpg
//	uploads/{ts}_{filename}
//
// The store is an interface so a cloud backend can replace local disk
// without touching handlers.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ErrBadName is returned for filenames that escape the store root.
var ErrBadName = errors.New("invalid file name")

// Store writes uploads and issues their public URLs.
type Store interface {
	// Put writes r under the given kind-specific path and returns the
	// public download URL.
	Put(ctx context.Context, dest string, r io.Reader) (string, error)
	// Root returns the directory served at the public base URL.
	Root() string
}

// DiskStore is the local-filesystem Store.
type DiskStore struct {
	root    string
	baseURL string
	now     func() time.Time
}

// NewDiskStore creates the root directory if needed.
func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{root: root, baseURL: strings.TrimSuffix(baseURL, "/"), now: time.Now}, nil
}

// Root returns the directory served at the public base URL.
func (s *DiskStore) Root() string { return s.root }

// Put writes r to dest under the store root and returns the public URL.
func (s *DiskStore) Put(_ context.Context, dest string, r io.Reader) (string, error) {
	clean := path.Clean("/" + dest)[1:] // strip any ../ escape
	if clean == "" || clean == "." {
		return "", ErrBadName
	}

	full := filepath.Join(s.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create upload subdir: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return s.baseURL + "/" + clean, nil
}

// SanitizeFilename strips path separators and control characters from a
// client-supplied filename, leaving a safe single path element.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" || out == "." || out == ".." {
		return "file"
	}
	return out
}

// BarMemberPath returns the storage path for a bar-member photo.
func (s *DiskStore) BarMemberPath(filename string) string {
	return fmt.Sprintf("bar_members/%d_%s", s.now().UnixMilli(), SanitizeFilename(filename))
}

// RosterPath returns the storage path for a roster photo.
func (s *DiskStore) RosterPath(dept, filename string) string {
	return fmt.Sprintf("rosters/%s/%d_%s", strings.ToLower(dept), s.now().UnixMilli(), SanitizeFilename(filename))
}

// AvatarPath returns the storage path for a profile avatar.
func (s *DiskStore) AvatarPath(uid string) string {
	return fmt.Sprintf("profiles/%s/avatar.jpg", uid)
}

// GenericPath returns the storage path for an uncategorised upload.
func (s *DiskStore) GenericPath(filename string) string {
	return fmt.Sprintf("uploads/%d_%s", s.now().UnixMilli(), SanitizeFilename(filename))
}

// Package links stores the per-department quick-link lists that the public
// site renders. Until an admin saves a list for a setting id, reads fall back
// to a default compiled into the binary; the first save persists and
// permanently overrides the default. There is no reset operation.
package links

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sanandreas/govportal/internal/model"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed defaults.yaml
var defaultsFS embed.FS

// ErrUnknownSetting is returned when a setting id has neither a stored row
// nor a compiled-in default.
var ErrUnknownSetting = errors.New("unknown setting id")

// Link is one quick-link card.
type Link struct {
	Title string `json:"title" yaml:"title"`
	Desc  string `json:"desc" yaml:"desc"`
	URL   string `json:"url" yaml:"url"`
	Icon  string `json:"icon" yaml:"icon"`
	Color string `json:"color" yaml:"color"`
}

// Store reads and writes quick-link sets.
type Store struct {
	db       *gorm.DB
	defaults map[string][]Link
}

// NewStore creates a Store and decodes the embedded defaults.
func NewStore(db *gorm.DB) (*Store, error) {
	raw, err := defaultsFS.ReadFile("defaults.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded defaults: %w", err)
	}
	defaults := make(map[string][]Link)
	if err := yaml.Unmarshal(raw, &defaults); err != nil {
		return nil, fmt.Errorf("decode link defaults: %w", err)
	}
	return &Store{db: db, defaults: defaults}, nil
}

// Get returns the stored link list for settingID, or the compiled-in default
// when nothing has been saved yet.
func (s *Store) Get(ctx context.Context, settingID string) ([]Link, error) {
	var row model.Setting
	err := s.db.WithContext(ctx).First(&row, "id = ?", settingID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if def, ok := s.defaults[settingID]; ok {
			return append([]Link(nil), def...), nil
		}
		return nil, ErrUnknownSetting
	case err != nil:
		return nil, fmt.Errorf("load setting %s: %w", settingID, err)
	}

	var out []Link
	if err := json.Unmarshal([]byte(row.Value), &out); err != nil {
		return nil, fmt.Errorf("decode setting %s: %w", settingID, err)
	}
	return out, nil
}

// Save overwrites the full link list for settingID. No merge, no conflict
// detection: concurrent editors get last write wins.
func (s *Store) Save(ctx context.Context, settingID string, list []Link) error {
	if list == nil {
		list = []Link{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", settingID, err)
	}

	row := model.Setting{ID: settingID, Value: string(raw)}
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("save setting %s: %w", settingID, err)
	}
	return nil
}

// Known reports whether settingID has a compiled-in default, i.e. whether it
// is one of the ids the portal serves.
func (s *Store) Known(settingID string) bool {
	_, ok := s.defaults[settingID]
	return ok
}

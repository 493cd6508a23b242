package handler

import (
	"net/http"
	"os"

	"github.com/sanandreas/govportal/internal/api/jsonapi"
	"github.com/sanandreas/govportal/internal/changelog"
)

// ChangelogHandler serves GET /api/v1/changelog from the project
// CHANGELOG.md. The file is parsed once at startup.
type ChangelogHandler struct {
	entries []changelog.Entry
}

// NewChangelogHandler reads and parses the changelog at path. A missing file
// is not an error; the handler then serves an empty list.
func NewChangelogHandler(path string) (*ChangelogHandler, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ChangelogHandler{}, nil
		}
		return nil, err
	}
	return &ChangelogHandler{entries: changelog.Parse(string(raw))}, nil
}

// List handles GET /api/v1/changelog.
func (h *ChangelogHandler) List(w http.ResponseWriter, r *http.Request) {
	data := make([]any, 0, len(h.entries))
	for _, e := range h.entries {
		data = append(data, jsonapi.ResourceObject{
			Type:       "changelog_entry",
			ID:         e.Version,
			Attributes: e,
		})
	}
	jsonapi.RenderList(w, http.StatusOK, data, jsonapi.Meta{"total": len(h.entries)})
}

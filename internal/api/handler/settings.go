package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sanandreas/govportal/internal/api/jsonapi"
	"github.com/sanandreas/govportal/internal/api/middleware"
	"github.com/sanandreas/govportal/internal/links"
	"github.com/sanandreas/govportal/internal/policy"
)

// SettingsHandler handles the /api/v1/settings/{id}/links routes backing the
// per-department quick-link panels.
type SettingsHandler struct {
	store *links.Store
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(store *links.Store) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// GetLinks handles GET /api/v1/settings/{id}/links. Public; falls back to the
// embedded defaults when no override has been saved.
func (h *SettingsHandler) GetLinks(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	list, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, links.ErrUnknownSetting) {
			jsonapi.RenderError(w, http.StatusNotFound, "not_found", "Not Found", "unknown setting id")
			return
		}
		jsonapi.RenderError(w, http.StatusInternalServerError, "internal", "Internal Server Error", "failed to load links")
		return
	}

	jsonapi.RenderOne(w, http.StatusOK, jsonapi.ResourceObject{
		Type:       "setting_links",
		ID:         id,
		Attributes: map[string]any{"links": list},
	})
}

type putLinksRequest struct {
	Links []links.Link `json:"links"`
}

// PutLinks handles PUT /api/v1/settings/{id}/links. The caller must hold
// moderation rights over the department the setting belongs to; superadmins
// moderate everywhere.
func (h *SettingsHandler) PutLinks(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	claims := middleware.ClaimsFromContext(r.Context())

	if !h.store.Known(id) {
		jsonapi.RenderError(w, http.StatusNotFound, "not_found", "Not Found", "unknown setting id")
		return
	}

	dept, ok := settingDepartment(id)
	if !ok || !policy.CanModerate(claims.Roles, dept) {
		jsonapi.RenderError(w, http.StatusForbidden, "forbidden", "Forbidden", "moderation rights required for this department")
		return
	}

	var req putLinksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonapi.RenderError(w, http.StatusBadRequest, "invalid_body", "Bad Request", "request body must be valid JSON")
		return
	}

	if err := h.store.Save(r.Context(), id, req.Links); err != nil {
		jsonapi.RenderError(w, http.StatusInternalServerError, "internal", "Internal Server Error", "failed to save links")
		return
	}

	jsonapi.RenderOne(w, http.StatusOK, jsonapi.ResourceObject{
		Type:       "setting_links",
		ID:         id,
		Attributes: map[string]any{"links": req.Links},
	})
}

// settingDepartment maps a setting id like "doj_quicklinks" to the department
// that owns it.
func settingDepartment(id string) (policy.Department, bool) {
	prefix, _, found := strings.Cut(id, "_")
	if !found {
		return "", false
	}
	return policy.ParseDepartment(prefix)
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sanandreas/govportal/internal/api/jsonapi"
	"github.com/sanandreas/govportal/internal/api/middleware"
	"github.com/sanandreas/govportal/internal/model"
	"github.com/sanandreas/govportal/internal/profile"
)

// ProfileHandler handles /api/v1/users/me.
type ProfileHandler struct {
	svc *profile.Service
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(svc *profile.Service) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// Me handles GET /api/v1/users/me. The profile row is created on first read.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	u, err := h.svc.GetOrCreate(r.Context(), claims.UserID, claims.Email)
	if err != nil {
		jsonapi.RenderError(w, http.StatusInternalServerError, "internal", "Internal Server Error", "failed to load profile")
		return
	}
	jsonapi.RenderOne(w, http.StatusOK, userResource(u))
}

type profilePatch struct {
	ICName    *string `json:"ic_name"`
	ICPhone   *string `json:"ic_phone"`
	DiscordID *string `json:"discord_id"`
	PhotoURL  *string `json:"photo_url"`
	Bio       *string `json:"bio"`
}

// Update handles PATCH /api/v1/users/me. Only profile fields are writable;
// roles and email never change through this route.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	var patch profilePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		jsonapi.RenderError(w, http.StatusBadRequest, "invalid_body", "Bad Request", "request body must be valid JSON")
		return
	}

	u, err := h.svc.Apply(r.Context(), claims.UserID, profile.Update{
		ICName:    patch.ICName,
		ICPhone:   patch.ICPhone,
		DiscordID: patch.DiscordID,
		PhotoURL:  patch.PhotoURL,
		Bio:       patch.Bio,
	})
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			jsonapi.RenderError(w, http.StatusNotFound, "not_found", "Not Found", "profile does not exist")
			return
		}
		jsonapi.RenderError(w, http.StatusInternalServerError, "internal", "Internal Server Error", "failed to update profile")
		return
	}
	jsonapi.RenderOne(w, http.StatusOK, userResource(u))
}

func userResource(u *model.User) jsonapi.ResourceObject {
	return jsonapi.ResourceObject{Type: "user", ID: u.ID, Attributes: u}
}

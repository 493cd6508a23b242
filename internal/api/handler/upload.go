package handler

import (
	"net/http"

	"github.com/sanandreas/govportal/internal/api/jsonapi"
	"github.com/sanandreas/govportal/internal/api/middleware"
	"github.com/sanandreas/govportal/internal/blob"
	"github.com/sanandreas/govportal/internal/policy"
)

// UploadHandler handles POST /api/v1/uploads: multipart file uploads routed
// into the blob store's path conventions.
type UploadHandler struct {
	store    *blob.DiskStore
	maxBytes int64
}

// NewUploadHandler creates an UploadHandler. maxBytes caps the whole request
// body.
func NewUploadHandler(store *blob.DiskStore, maxBytes int64) *UploadHandler {
	return &UploadHandler{store: store, maxBytes: maxBytes}
}

// Upload accepts a multipart form with a "file" part and an optional "kind"
// ("bar_member", "roster", "avatar", default generic). Roster uploads also
// carry a "department" field. Avatar uploads land on the caller's own
// profile path; the other kinds require staff roles.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		jsonapi.RenderError(w, http.StatusRequestEntityTooLarge, "too_large", "Request Entity Too Large", "upload exceeds the size limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonapi.RenderError(w, http.StatusBadRequest, "missing_file", "Bad Request", "a file part is required")
		return
	}
	defer file.Close()

	name := blob.SanitizeFilename(header.Filename)

	var dest string
	switch kind := r.FormValue("kind"); kind {
	case "avatar":
		dest = h.store.AvatarPath(claims.UserID)
	case "bar_member":
		if policy.VisibleDepartments(claims.Roles).Empty() {
			jsonapi.RenderError(w, http.StatusForbidden, "forbidden", "Forbidden", "staff role required")
			return
		}
		dest = h.store.BarMemberPath(name)
	case "roster":
		dept, ok := policy.ParseDepartment(r.FormValue("department"))
		if !ok {
			jsonapi.RenderError(w, http.StatusUnprocessableEntity, "invalid_department", "Unprocessable Entity", "department must be one of lspd, lsems, safd, doj")
			return
		}
		if !policy.CanModerate(claims.Roles, dept) {
			jsonapi.RenderError(w, http.StatusForbidden, "forbidden", "Forbidden", "moderation rights required for this department")
			return
		}
		dest = h.store.RosterPath(string(dept), name)
	default:
		dest = h.store.GenericPath(name)
	}

	url, err := h.store.Put(r.Context(), dest, file)
	if err != nil {
		jsonapi.RenderError(w, http.StatusInternalServerError, "internal", "Internal Server Error", "failed to store upload")
		return
	}

	jsonapi.RenderOne(w, http.StatusCreated, jsonapi.ResourceObject{
		Type:       "upload",
		ID:         dest,
		Attributes: map[string]string{"url": url, "path": dest},
	})
}

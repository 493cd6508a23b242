package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sanandreas/govportal/internal/api/jsonapi"
	"github.com/sanandreas/govportal/internal/api/middleware"
	"github.com/sanandreas/govportal/internal/directory"
	"github.com/sanandreas/govportal/internal/policy"
)

// DirectoryHandler is the HTTP face of one directory record type. The same
// handler shape serves announcements, job postings, public records, rosters,
// bar members, dockets, and laws: public reads, moderator-gated writes.
type DirectoryHandler[T any] struct {
	store    *directory.Store[T]
	resource string
	id       func(*T) string
	dept     func(*T) string
	setDept  func(*T, string)
}

// NewDirectoryHandler creates a DirectoryHandler. The accessor funcs expose
// the record's id and department fields so the handler can stay generic.
func NewDirectoryHandler[T any](
	store *directory.Store[T],
	resource string,
	id func(*T) string,
	dept func(*T) string,
	setDept func(*T, string),
) *DirectoryHandler[T] {
	return &DirectoryHandler[T]{store: store, resource: resource, id: id, dept: dept, setDept: setDept}
}

// List handles GET on the collection. Public; an optional ?department=
// query narrows to one department.
func (h *DirectoryHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	var dept *policy.Department
	if q := r.URL.Query().Get("department"); q != "" {
		d, ok := policy.ParseDepartment(q)
		if !ok {
			jsonapi.RenderError(w, http.StatusBadRequest, "invalid_department", "Bad Request", "department must be one of lspd, lsems, safd, doj")
			return
		}
		dept = &d
	}

	list, err := h.store.List(r.Context(), dept)
	if err != nil {
		jsonapi.RenderError(w, http.StatusInternalServerError, "internal", "Internal Server Error", "failed to list "+h.resource+"s")
		return
	}

	data := make([]any, 0, len(list))
	for i := range list {
		data = append(data, h.toResource(&list[i]))
	}
	jsonapi.RenderList(w, http.StatusOK, data, jsonapi.Meta{"total": len(list)})
}

// Get handles GET on one record. Public.
func (h *DirectoryHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.renderStoreError(w, err)
		return
	}
	jsonapi.RenderOne(w, http.StatusOK, h.toResource(rec))
}

// Create handles POST on the collection. Requires moderation rights over the
// record's department.
func (h *DirectoryHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var rec T
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		jsonapi.RenderError(w, http.StatusBadRequest, "invalid_body", "Bad Request", "request body must be valid JSON")
		return
	}

	dept, ok := policy.ParseDepartment(h.dept(&rec))
	if !ok {
		jsonapi.RenderError(w, http.StatusUnprocessableEntity, "invalid_department", "Unprocessable Entity", "department must be one of lspd, lsems, safd, doj")
		return
	}
	h.setDept(&rec, string(dept))

	if !h.canModerate(r, dept) {
		jsonapi.RenderError(w, http.StatusForbidden, "forbidden", "Forbidden", "moderation rights required for this department")
		return
	}

	created, err := h.store.Create(r.Context(), &rec)
	if err != nil {
		jsonapi.RenderError(w, http.StatusInternalServerError, "internal", "Internal Server Error", "failed to create "+h.resource)
		return
	}
	jsonapi.RenderOne(w, http.StatusCreated, h.toResource(created))
}

// Update handles PUT on one record. The caller must moderate both the stored
// department and, when the record moves, the new one.
func (h *DirectoryHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.renderStoreError(w, err)
		return
	}
	storedDept, _ := policy.ParseDepartment(h.dept(existing))
	if !h.canModerate(r, storedDept) {
		jsonapi.RenderError(w, http.StatusForbidden, "forbidden", "Forbidden", "moderation rights required for this department")
		return
	}

	var rec T
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		jsonapi.RenderError(w, http.StatusBadRequest, "invalid_body", "Bad Request", "request body must be valid JSON")
		return
	}

	newDept, ok := policy.ParseDepartment(h.dept(&rec))
	if !ok {
		jsonapi.RenderError(w, http.StatusUnprocessableEntity, "invalid_department", "Unprocessable Entity", "department must be one of lspd, lsems, safd, doj")
		return
	}
	h.setDept(&rec, string(newDept))
	if newDept != storedDept && !h.canModerate(r, newDept) {
		jsonapi.RenderError(w, http.StatusForbidden, "forbidden", "Forbidden", "moderation rights required for the target department")
		return
	}

	updated, err := h.store.Update(r.Context(), id, &rec)
	if err != nil {
		h.renderStoreError(w, err)
		return
	}
	jsonapi.RenderOne(w, http.StatusOK, h.toResource(updated))
}

// Delete handles DELETE on one record.
func (h *DirectoryHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.renderStoreError(w, err)
		return
	}
	dept, _ := policy.ParseDepartment(h.dept(existing))
	if !h.canModerate(r, dept) {
		jsonapi.RenderError(w, http.StatusForbidden, "forbidden", "Forbidden", "moderation rights required for this department")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.renderStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DirectoryHandler[T]) canModerate(r *http.Request, dept policy.Department) bool {
	claims := middleware.ClaimsFromContext(r.Context())
	return claims != nil && policy.CanModerate(claims.Roles, dept)
}

func (h *DirectoryHandler[T]) toResource(rec *T) jsonapi.ResourceObject {
	return jsonapi.ResourceObject{Type: h.resource, ID: h.id(rec), Attributes: rec}
}

func (h *DirectoryHandler[T]) renderStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, directory.ErrNotFound) {
		jsonapi.RenderError(w, http.StatusNotFound, "not_found", "Not Found", h.resource+" does not exist")
		return
	}
	jsonapi.RenderError(w, http.StatusInternalServerError, "internal", "Internal Server Error", "storage failure")
}

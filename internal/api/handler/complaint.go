package handler

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/sanandreas/govportal/internal/api/jsonapi"
	"github.com/sanandreas/govportal/internal/api/middleware"
	"github.com/sanandreas/govportal/internal/complaint"
	"github.com/sanandreas/govportal/internal/model"
	"github.com/sanandreas/govportal/internal/policy"
	"github.com/sanandreas/govportal/internal/ratelimit"
)

// ComplaintHandler handles /api/v1/complaints* routes.
type ComplaintHandler struct {
	svc     *complaint.Service
	limiter ratelimit.Limiter
}

// NewComplaintHandler creates a ComplaintHandler. The limiter throttles
// anonymous access-code lookups per client IP.
func NewComplaintHandler(svc *complaint.Service, limiter ratelimit.Limiter) *ComplaintHandler {
	return &ComplaintHandler{svc: svc, limiter: limiter}
}

type fileComplaintRequest struct {
	Department string `json:"department"`
	Name       string `json:"name"`
	Contact    string `json:"contact"`
	Details    string `json:"details"`
}

// File handles POST /api/v1/complaints. The route is public; when a valid
// Bearer token accompanies the request the complaint is attributed to that
// account so it shows up in the author's notification feed.
func (h *ComplaintHandler) File(w http.ResponseWriter, r *http.Request) {
	var req fileComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonapi.RenderError(w, http.StatusBadRequest, "invalid_body", "Bad Request", "request body must be valid JSON")
		return
	}
	dept, ok := policy.ParseDepartment(req.Department)
	if !ok {
		jsonapi.RenderError(w, http.StatusUnprocessableEntity, "invalid_department", "Unprocessable Entity", "department must be one of lspd, lsems, safd, doj")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		jsonapi.RenderError(w, http.StatusUnprocessableEntity, "missing_field", "Unprocessable Entity", "name is required")
		return
	}

	in := complaint.NewComplaint{
		Department: dept,
		Name:       req.Name,
		Contact:    req.Contact,
		Details:    req.Details,
	}
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		in.AuthorID = &claims.UserID
	}

	c, err := h.svc.File(r.Context(), in)
	switch {
	case errors.Is(err, complaint.ErrEmptyContent):
		jsonapi.RenderError(w, http.StatusUnprocessableEntity, "missing_field", "Unprocessable Entity", "details are required")
		return
	case errors.Is(err, complaint.ErrCodeExhausted):
		jsonapi.RenderError(w, http.StatusServiceUnavailable, "code_exhausted", "Service Unavailable", "could not allocate an access code, try again")
		return
	case err != nil:
		jsonapi.RenderError(w, http.StatusInternalServerError, "internal", "Internal Server Error", "failed to file complaint")
		return
	}

	jsonapi.RenderOne(w, http.StatusCreated, complaintResource(c))
}

// Lookup handles GET /api/v1/complaints/lookup?code=CP-XXXXXX. Anonymous and
// throttled per client IP so access codes cannot be enumerated.
func (h *ComplaintHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	if err := h.limiter.Allow(r.Context(), clientIP(r)); err != nil {
		if errors.Is(err, ratelimit.ErrLimited) {
			jsonapi.RenderError(w, http.StatusTooManyRequests, "rate_limited", "Too Many Requests", "too many lookups, slow down")
			return
		}
		jsonapi.RenderError(w, http.StatusInternalServerError, "internal", "Internal Server Error", "lookup failed")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		jsonapi.RenderError(w, http.StatusBadRequest, "missing_code", "Bad Request", "code query parameter is required")
		return
	}

	c, err := h.svc.Lookup(r.Context(), code)
	if err != nil {
		if errors.Is(err, complaint.ErrNotFound) {
			jsonapi.RenderError(w, http.StatusNotFound, "not_found", "Not Found", "no complaint matches that access code")
			return
		}
		jsonapi.RenderError(w, http.StatusInternalServerError, "internal", "Internal Server Error", "lookup failed")
		return
	}

	jsonapi.RenderOne(w, http.StatusOK, complaintResource(c))
}

// List handles GET /api/v1/complaints. Requires auth; results are scoped to
// the departments the caller's roles make visible.
func (h *ComplaintHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	scope := policy.VisibleDepartments(claims.Roles)
	if scope.Empty() {
		jsonapi.RenderError(w, http.StatusForbidden, "forbidden", "Forbidden", "your roles do not grant complaint access")
		return
	}

	list, err := h.svc.ListByScope(r.Context(), scope)
	if err != nil {
		jsonapi.RenderError(w, http.StatusInternalServerError, "internal", "Internal Server Error", "failed to list complaints")
		return
	}

	data := make([]any, 0, len(list))
	for i := range list {
		data = append(data, complaintResource(&list[i]))
	}
	jsonapi.RenderList(w, http.StatusOK, data, jsonapi.Meta{"total": len(list)})
}

// Get handles GET /api/v1/complaints/{id}. Requires auth and department
// visibility over the complaint.
func (h *ComplaintHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadVisible(w, r)
	if !ok {
		return
	}
	jsonapi.RenderOne(w, http.StatusOK, complaintResource(c))
}

type replyRequest struct {
	Content    string `json:"content"`
	AccessCode string `json:"access_code"`
}

// Reply handles POST /api/v1/complaints/{id}/messages. Officials reply with
// a Bearer token; citizens reply by presenting the complaint's access code.
func (h *ComplaintHandler) Reply(w http.ResponseWriter, r *http.Request) {
	var req replyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonapi.RenderError(w, http.StatusBadRequest, "invalid_body", "Bad Request", "request body must be valid JSON")
		return
	}

	id := r.PathValue("id")
	claims := middleware.ClaimsFromContext(r.Context())

	existing, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, complaint.ErrNotFound) {
			jsonapi.RenderError(w, http.StatusNotFound, "not_found", "Not Found", "complaint does not exist")
			return
		}
		jsonapi.RenderError(w, http.StatusInternalServerError, "internal", "Internal Server Error", "failed to load complaint")
		return
	}
	dept, _ := policy.ParseDepartment(existing.Department)

	var c *model.Complaint
	switch {
	case claims != nil && policy.VisibleDepartments(claims.Roles).Allows(dept):
		c, err = h.svc.ReplyAsOfficial(r.Context(), id, claims.Email, req.Content)
	case claims != nil && isAuthor(claims.UserID, existing):
		c, err = h.svc.ReplyAsCivilian(r.Context(), id, req.Content)
	case codeMatches(req.AccessCode, existing.AccessCode):
		// Citizens authenticate to the thread with the access code.
		c, err = h.svc.ReplyAsCivilian(r.Context(), id, req.Content)
	default:
		jsonapi.RenderError(w, http.StatusForbidden, "forbidden", "Forbidden", "access code or staff credentials required")
		return
	}

	switch {
	case errors.Is(err, complaint.ErrNotFound):
		jsonapi.RenderError(w, http.StatusNotFound, "not_found", "Not Found", "complaint does not exist")
	case errors.Is(err, complaint.ErrClosed):
		jsonapi.RenderError(w, http.StatusConflict, "complaint_closed", "Conflict", "complaint is closed and no longer accepts citizen replies")
	case errors.Is(err, complaint.ErrEmptyContent):
		jsonapi.RenderError(w, http.StatusUnprocessableEntity, "missing_field", "Unprocessable Entity", "content is required")
	case err != nil:
		jsonapi.RenderError(w, http.StatusInternalServerError, "internal", "Internal Server Error", "failed to append message")
	default:
		jsonapi.RenderOne(w, http.StatusCreated, complaintResource(c))
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

// SetStatus handles PATCH /api/v1/complaints/{id}/status. Requires moderation
// rights over the complaint's department.
func (h *ComplaintHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadVisible(w, r)
	if !ok {
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	dept, _ := policy.ParseDepartment(c.Department)
	if !policy.CanModerate(claims.Roles, dept) {
		jsonapi.RenderError(w, http.StatusForbidden, "forbidden", "Forbidden", "moderation rights required for this department")
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		jsonapi.RenderError(w, http.StatusBadRequest, "invalid_body", "Bad Request", "status is required")
		return
	}

	if err := h.svc.SetStatus(r.Context(), c.ID, req.Status); err != nil {
		if errors.Is(err, complaint.ErrNotFound) {
			jsonapi.RenderError(w, http.StatusNotFound, "not_found", "Not Found", "complaint does not exist")
			return
		}
		jsonapi.RenderError(w, http.StatusInternalServerError, "internal", "Internal Server Error", "failed to update status")
		return
	}

	updated, err := h.svc.Get(r.Context(), c.ID)
	if err != nil {
		jsonapi.RenderError(w, http.StatusInternalServerError, "internal", "Internal Server Error", "failed to reload complaint")
		return
	}
	jsonapi.RenderOne(w, http.StatusOK, complaintResource(updated))
}

// MarkRead handles POST /api/v1/complaints/{id}/read. Staff with visibility
// clear the admin-side flag; the complaint's author clears the user-side flag.
func (h *ComplaintHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	claims := middleware.ClaimsFromContext(r.Context())

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, complaint.ErrNotFound) {
			jsonapi.RenderError(w, http.StatusNotFound, "not_found", "Not Found", "complaint does not exist")
			return
		}
		jsonapi.RenderError(w, http.StatusInternalServerError, "internal", "Internal Server Error", "failed to load complaint")
		return
	}

	dept, _ := policy.ParseDepartment(c.Department)
	switch {
	case policy.VisibleDepartments(claims.Roles).Allows(dept):
		err = h.svc.MarkReadByAdmin(r.Context(), id)
	case isAuthor(claims.UserID, c):
		err = h.svc.MarkReadByUser(r.Context(), id)
	default:
		jsonapi.RenderError(w, http.StatusForbidden, "forbidden", "Forbidden", "not a participant in this complaint")
		return
	}

	if err != nil {
		jsonapi.RenderError(w, http.StatusInternalServerError, "internal", "Internal Server Error", "failed to mark complaint read")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadVisible fetches the complaint in {id} and verifies the caller's
// department scope covers it. Out-of-scope complaints render as 404 so their
// existence is not revealed.
func (h *ComplaintHandler) loadVisible(w http.ResponseWriter, r *http.Request) (*model.Complaint, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	c, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, complaint.ErrNotFound) {
			jsonapi.RenderError(w, http.StatusNotFound, "not_found", "Not Found", "complaint does not exist")
			return nil, false
		}
		jsonapi.RenderError(w, http.StatusInternalServerError, "internal", "Internal Server Error", "failed to load complaint")
		return nil, false
	}

	dept, _ := policy.ParseDepartment(c.Department)
	if !policy.VisibleDepartments(claims.Roles).Allows(dept) {
		jsonapi.RenderError(w, http.StatusNotFound, "not_found", "Not Found", "complaint does not exist")
		return nil, false
	}
	return c, true
}

func isAuthor(userID string, c *model.Complaint) bool {
	return c != nil && c.AuthorID != nil && *c.AuthorID == userID
}

func codeMatches(submitted, actual string) bool {
	return submitted != "" && strings.ToUpper(strings.TrimSpace(submitted)) == actual
}

func complaintResource(c *model.Complaint) jsonapi.ResourceObject {
	return jsonapi.ResourceObject{Type: "complaint", ID: c.ID, Attributes: c}
}

// clientIP extracts the caller address for rate limiting, preferring the
// leftmost X-Forwarded-For entry when the service sits behind a proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package handler

import (
	"net/http"

	"github.com/sanandreas/govportal/internal/api/jsonapi"
	"github.com/sanandreas/govportal/internal/api/middleware"
	"github.com/sanandreas/govportal/internal/notify"
)

// NotificationHandler handles /api/v1/notifications* routes.
type NotificationHandler struct {
	projection *notify.Projection
}

// NewNotificationHandler creates a NotificationHandler.
func NewNotificationHandler(p *notify.Projection) *NotificationHandler {
	return &NotificationHandler{projection: p}
}

// List handles GET /api/v1/notifications: the caller's complaints with
// unread official activity, newest first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	unread, err := h.projection.UnreadFor(r.Context(), claims.UserID)
	if err != nil {
		jsonapi.RenderError(w, http.StatusInternalServerError, "internal", "Internal Server Error", "failed to load notifications")
		return
	}

	data := make([]any, 0, len(unread.Items))
	for i := range unread.Items {
		data = append(data, complaintResource(&unread.Items[i]))
	}
	jsonapi.RenderList(w, http.StatusOK, data, jsonapi.Meta{"count": unread.Count})
}

// MarkAllRead handles POST /api/v1/notifications/read: clears every unread
// flag owned by the caller in one statement.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	if err := h.projection.MarkAllRead(r.Context(), claims.UserID); err != nil {
		jsonapi.RenderError(w, http.StatusInternalServerError, "internal", "Internal Server Error", "failed to mark notifications read")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

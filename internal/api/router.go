// Package api wires all API routes onto the provided ServeMux.
package api

import (
	"net/http"
	"path/filepath"

	"github.com/sanandreas/govportal/internal/api/handler"
	"github.com/sanandreas/govportal/internal/api/middleware"
	"github.com/sanandreas/govportal/internal/health"
	"github.com/sanandreas/govportal/internal/model"
)

// Handlers collects every route handler the portal serves.
type Handlers struct {
	Health        *health.Handler
	Auth          *handler.AuthHandler
	Complaints    *handler.ComplaintHandler
	Notifications *handler.NotificationHandler
	Settings      *handler.SettingsHandler
	Changelog     *handler.ChangelogHandler
	Profile       *handler.ProfileHandler
	Upload        *handler.UploadHandler

	Announcements *handler.DirectoryHandler[model.Announcement]
	Jobs          *handler.DirectoryHandler[model.JobPosting]
	Records       *handler.DirectoryHandler[model.PublicRecord]
	Rosters       *handler.DirectoryHandler[model.RosterMember]
	BarMembers    *handler.DirectoryHandler[model.BarMember]
	Dockets       *handler.DirectoryHandler[model.Docket]
	Laws          *handler.DirectoryHandler[model.Law]

	// UploadDir is served read-only under /uploads/.
	UploadDir string
}

// RegisterRoutes registers all application routes on mux.
func RegisterRoutes(mux *http.ServeMux, h Handlers, jwtSecret string) {
	protected := middleware.RequireAuth(jwtSecret)
	optional := middleware.OptionalAuth(jwtSecret)

	// Public health endpoints (no auth required)
	mux.HandleFunc("GET /api/v1/health", h.Health.ServeHealth)
	mux.HandleFunc("GET /api/v1/ready", h.Health.ServeReady)

	// Auth endpoints
	mux.HandleFunc("POST /api/v1/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", h.Auth.Refresh)
	mux.Handle("POST /api/v1/auth/logout", protected(http.HandlerFunc(h.Auth.Logout)))

	// Complaints. Filing and replying work both anonymously (access code)
	// and signed-in, so those two routes take optional auth; lookup is
	// anonymous and throttled; the rest is staff or participant only.
	mux.Handle("POST /api/v1/complaints", optional(http.HandlerFunc(h.Complaints.File)))
	mux.HandleFunc("GET /api/v1/complaints/lookup", h.Complaints.Lookup)
	mux.Handle("GET /api/v1/complaints", protected(middleware.RequireStaff(http.HandlerFunc(h.Complaints.List))))
	mux.Handle("GET /api/v1/complaints/{id}", protected(middleware.RequireStaff(http.HandlerFunc(h.Complaints.Get))))
	mux.Handle("POST /api/v1/complaints/{id}/messages", optional(http.HandlerFunc(h.Complaints.Reply)))
	mux.Handle("PATCH /api/v1/complaints/{id}/status", protected(middleware.RequireStaff(http.HandlerFunc(h.Complaints.SetStatus))))
	mux.Handle("POST /api/v1/complaints/{id}/read", protected(http.HandlerFunc(h.Complaints.MarkRead)))

	// Notifications (complaint activity for the signed-in citizen)
	mux.Handle("GET /api/v1/notifications", protected(http.HandlerFunc(h.Notifications.List)))
	mux.Handle("POST /api/v1/notifications/read", protected(http.HandlerFunc(h.Notifications.MarkAllRead)))

	// Department directories: public reads, moderator writes.
	registerDirectory(mux, "/api/v1/announcements", h.Announcements, protected)
	registerDirectory(mux, "/api/v1/jobs", h.Jobs, protected)
	registerDirectory(mux, "/api/v1/records", h.Records, protected)
	registerDirectory(mux, "/api/v1/rosters", h.Rosters, protected)
	registerDirectory(mux, "/api/v1/bar-members", h.BarMembers, protected)
	registerDirectory(mux, "/api/v1/dockets", h.Dockets, protected)
	registerDirectory(mux, "/api/v1/laws", h.Laws, protected)

	// Quick-link settings
	mux.HandleFunc("GET /api/v1/settings/{id}/links", h.Settings.GetLinks)
	mux.Handle("PUT /api/v1/settings/{id}/links", protected(http.HandlerFunc(h.Settings.PutLinks)))

	// Changelog
	mux.HandleFunc("GET /api/v1/changelog", h.Changelog.List)

	// Profile
	mux.Handle("GET /api/v1/users/me", protected(http.HandlerFunc(h.Profile.Me)))
	mux.Handle("PATCH /api/v1/users/me", protected(http.HandlerFunc(h.Profile.Update)))

	// Uploads
	mux.Handle("POST /api/v1/uploads", protected(http.HandlerFunc(h.Upload.Upload)))
	if h.UploadDir != "" {
		fs := http.FileServer(http.Dir(filepath.Clean(h.UploadDir)))
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", fs))
	}

	// Catch-all 404
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
}

func registerDirectory[T any](
	mux *http.ServeMux,
	base string,
	h *handler.DirectoryHandler[T],
	protected func(http.Handler) http.Handler,
) {
	mux.HandleFunc("GET "+base, h.List)
	mux.HandleFunc("GET "+base+"/{id}", h.Get)
	mux.Handle("POST "+base, protected(http.HandlerFunc(h.Create)))
	mux.Handle("PUT "+base+"/{id}", protected(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE "+base+"/{id}", protected(http.HandlerFunc(h.Delete)))
}

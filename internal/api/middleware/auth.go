// Package middleware provides HTTP middleware for the portal API.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sanandreas/govportal/internal/api/jsonapi"
	"github.com/sanandreas/govportal/internal/auth"
	"github.com/sanandreas/govportal/internal/policy"
)

type contextKey string

const claimsKey contextKey = "auth_claims"

// RequireAuth validates the Bearer JWT in the Authorization header.
// On success it injects *auth.Claims into the request context.
// On failure it writes a 401 JSON:API error response.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				jsonapi.RenderError(w, http.StatusUnauthorized,
					"missing_token", "Unauthorized", "Authorization header is required")
				return
			}

			claims, err := auth.ParseAccessToken(token, secret)
			if err != nil {
				jsonapi.RenderError(w, http.StatusUnauthorized,
					"invalid_token", "Unauthorized", "access token is invalid or expired")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth parses a Bearer JWT when one is present and injects the
// claims, but lets unauthenticated requests through untouched. Used on
// routes that serve both citizens and signed-in staff.
func OptionalAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token != "" {
				if claims, err := auth.ParseAccessToken(token, secret); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), claimsKey, claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext extracts Claims from the request context.
// Returns nil if not present.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	v := ctx.Value(claimsKey)
	if v == nil {
		return nil
	}
	c, _ := v.(*auth.Claims)
	return c
}

// RequireStaff rejects requests whose roles map to an empty department
// scope. Must be chained after RequireAuth.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			jsonapi.RenderError(w, http.StatusUnauthorized,
				"missing_token", "Unauthorized", "authentication required")
			return
		}
		if policy.VisibleDepartments(claims.Roles).Empty() {
			jsonapi.RenderError(w, http.StatusForbidden,
				"forbidden", "Forbidden", "your roles do not grant staff access")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSuperadmin restricts a route to superadmin users.
// Must be chained after RequireAuth.
func RequireSuperadmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			jsonapi.RenderError(w, http.StatusUnauthorized,
				"missing_token", "Unauthorized", "authentication required")
			return
		}
		if !policy.IsSuperadmin(claims.Roles) {
			jsonapi.RenderError(w, http.StatusForbidden,
				"forbidden", "Forbidden", "superadmin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractBearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

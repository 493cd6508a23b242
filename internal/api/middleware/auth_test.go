package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sanandreas/govportal/internal/api/middleware"
	"github.com/sanandreas/govportal/internal/auth"
	"github.com/stretchr/testify/assert"
)

const secret = "test-secret-at-least-32-bytes!!!"

func issueToken(t *testing.T, roles []string) string {
	t.Helper()
	tok, err := auth.IssueAccessToken("user-1", "u@example.com", roles, secret, 15*time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	handler := middleware.RequireAuth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_ValidToken(t *testing.T) {
	handler := middleware.RequireAuth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := middleware.ClaimsFromContext(r.Context())
		assert.NotNil(t, claims)
		assert.Equal(t, "user-1", claims.UserID)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, []string{"lspd"}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	handler := middleware.RequireAuth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer this.is.garbage")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireStaff_CivilianForbidden(t *testing.T) {
	chain := middleware.RequireAuth(secret)(
		middleware.RequireStaff(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}),
		),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/complaints", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, nil))
	w := httptest.NewRecorder()
	chain.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireStaff_DepartmentRoleAllowed(t *testing.T) {
	chain := middleware.RequireAuth(secret)(
		middleware.RequireStaff(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}),
		),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/complaints", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, []string{"lsems"}))
	w := httptest.NewRecorder()
	chain.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireSuperadmin_AdminForbidden(t *testing.T) {
	chain := middleware.RequireAuth(secret)(
		middleware.RequireSuperadmin(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}),
		),
	)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings/lspd_quicklinks", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, []string{"admin", "lspd"}))
	w := httptest.NewRecorder()
	chain.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireSuperadmin_Allowed(t *testing.T) {
	chain := middleware.RequireAuth(secret)(
		middleware.RequireSuperadmin(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}),
		),
	)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings/lspd_quicklinks", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, []string{"superadmin"}))
	w := httptest.NewRecorder()
	chain.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	apihttp "koperasi-backend/internal/api/http"
	"koperasi-backend/internal/security"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	tokens := security.NewTokenManager("test-secret-at-least-32-characters", 60, 7*24*60)
	handler := apihttp.Authenticate(tokens)(okHandler())

	t.Run("MissingTokenRejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/members/me", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ValidAccessTokenPasses", func(t *testing.T) {
		access, err := tokens.GenerateAccessToken(1, "budi@example.com", "member")
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/members/me", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("RefreshTokenRejectedOnAPIRoutes", func(t *testing.T) {
		refresh, err := tokens.GenerateRefreshToken(1, "budi@example.com")
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/members/me", nil)
		req.Header.Set("Authorization", "Bearer "+refresh)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("GarbageTokenRejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/members/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	tokens := security.NewTokenManager("test-secret-at-least-32-characters", 60, 7*24*60)
	handler := apihttp.Authenticate(tokens)(apihttp.RequireAdmin(okHandler()))

	t.Run("MemberRoleForbidden", func(t *testing.T) {
		access, err := tokens.GenerateAccessToken(1, "budi@example.com", "member")
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/members", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("AdminRolePasses", func(t *testing.T) {
		access, err := tokens.GenerateAccessToken(9, "admin@example.com", "admin")
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/members", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxoffice/internal/auth"
	"boxoffice/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestVerifyTokenRoundTrip(t *testing.T) {
	raw := signToken(t, jwt.MapClaims{
		"sub":   "user-1",
		"email": "user@demo.it",
		"role":  models.RoleUser,
	})

	user, err := auth.VerifyToken(raw, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "user@demo.it", user.Email)
	assert.False(t, user.IsAdmin())
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	raw := signToken(t, jwt.MapClaims{"sub": "user-1"})
	_, err := auth.VerifyToken(raw, "other-secret")
	assert.Error(t, err)
}

func TestVerifyTokenRequiresSubject(t *testing.T) {
	raw := signToken(t, jwt.MapClaims{"email": "user@demo.it"})
	_, err := auth.VerifyToken(raw, testSecret)
	assert.Error(t, err)
}

func TestMiddlewareInjectsUser(t *testing.T) {
	var seen auth.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.UserFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := auth.Middleware(testSecret)(next)

	raw := signToken(t, jwt.MapClaims{"sub": "user-1", "email": "user@demo.it", "role": models.RoleAdmin})
	req := httptest.NewRequest(http.MethodGet, "/tickets", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", seen.ID)
	assert.True(t, seen.IsAdmin())
}

func TestMiddlewareRejectsMissingOrBadToken(t *testing.T) {
	handler := auth.Middleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/tickets", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/tickets", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := auth.RequireAdmin(next)

	req := httptest.NewRequest(http.MethodPost, "/events", nil)
	req = req.WithContext(auth.WithUser(req.Context(), auth.User{ID: "u", Role: models.RoleUser}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/events", nil)
	req = req.WithContext(auth.WithUser(req.Context(), auth.User{ID: "a", Role: models.RoleAdmin}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

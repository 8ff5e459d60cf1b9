package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"boxoffice/internal/models"
)

type contextKey string

const userKey contextKey = "auth_user"

// User is the authenticated caller as asserted by the identity collaborator's
// token: id, email and role claims.
type User struct {
	ID    string
	Email string
	Role  string
}

func (u User) IsAdmin() bool { return u.Role == models.RoleAdmin }

// Middleware verifies the HMAC-signed bearer token and injects the caller
// into the request context.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			user, err := VerifyToken(rawToken, secret)
			if err != nil {
				http.Error(w, fmt.Sprintf("invalid token: %v", err), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireAdmin guards mutating admin routes. Must run after Middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r.Context())
		if !ok {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		if !user.IsAdmin() {
			http.Error(w, "admin role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// VerifyToken parses and validates an HS256 token, returning the caller it
// describes.
func VerifyToken(rawToken, secret string) (User, error) {
	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return User{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return User{}, fmt.Errorf("unexpected claims type")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return User{}, fmt.Errorf("subject claim missing")
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return User{ID: sub, Email: email, Role: role}, nil
}

// WithUser returns a context carrying the authenticated caller. Exported so
// handler tests can skip token verification.
func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFrom extracts the authenticated caller placed by Middleware.
func UserFrom(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userKey).(User)
	return user, ok
}

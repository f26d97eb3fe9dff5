package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pointsdash/pointsdash/internal/stub/server"
	"github.com/pointsdash/pointsdash/internal/stub/store"
)

// SigningSecret signs the stub backend's bearer tokens. Fixed on purpose:
// the stub exists for local development and tests only.
const SigningSecret = "pointsdash-stub-secret"

// MintToken issues an HS256 bearer token for the given user email.
func MintToken(email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": email,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(SigningSecret))
}

type contextKey string

const userCtxKey contextKey = "user"

// requireAuth validates the bearer token and loads the user into context.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			server.Error(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		raw := strings.TrimPrefix(auth, "Bearer ")

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			return []byte(SigningSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			server.Error(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		email, err := claims.GetSubject()
		if err != nil || email == "" {
			server.Error(w, http.StatusUnauthorized, "token has no subject")
			return
		}
		user, ok := h.store.GetUser(email)
		if !ok {
			server.Error(w, http.StatusUnauthorized, "unknown account")
			return
		}

		ctx := context.WithValue(r.Context(), userCtxKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser extracts the authenticated user from context.
func currentUser(r *http.Request) store.User {
	return r.Context().Value(userCtxKey).(store.User)
}

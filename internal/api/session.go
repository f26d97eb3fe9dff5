package api

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session holds the current credential for authenticated calls. It is the
// one piece of state shared by every panel; the client reads it on each
// authenticated call and this layer never mutates it except via SetToken.
type Session struct {
	mu    sync.RWMutex
	token string
}

// NewSession creates a session with the given bearer token. An empty token
// means unauthenticated.
func NewSession(token string) *Session {
	return &Session{token: token}
}

// Token returns the current credential.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken replaces the credential.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// IsAuthenticated reports whether a usable credential is present. JWTs are
// parsed without signature verification (the client never holds the signing
// key) purely to reject tokens that have already expired before issuing a
// doomed request. Opaque tokens are accepted as-is.
func (s *Session) IsAuthenticated() bool {
	tok := s.Token()
	if tok == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		// Not a JWT; let the backend judge it.
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.After(time.Now())
}

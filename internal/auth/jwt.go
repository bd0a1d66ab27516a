package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/storyhub-app/storyhub-be/internal/apierror"
)

// Claims defines the JWT claims structure.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type contextKey string

const usernameKey = contextKey("authUsername")

// Manager signs and verifies tokens with an injected secret and TTL.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Generate creates a signed token carrying the username.
func (m *Manager) Generate(username string) (string, error) {
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies the token's signature and expiry and returns the username.
func (m *Manager) Parse(tokenStr string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	return claims.Username, nil
}

// UsernameFromContext returns the authenticated username bound by Required.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey).(string)
	return username, ok
}

// errUnauthorized is deliberately uniform: it never reveals which check
// (missing token, bad signature, expiry) actually failed.
func errUnauthorized() *apierror.Error {
	return apierror.Unauthorized("Missing or invalid auth token.")
}

// Required is middleware protecting a route. The token is taken from the
// request body's "token" key or the "token" query parameter, body first.
// The body is re-buffered so downstream handlers can decode it again.
func (m *Manager) Required(respondError func(http.ResponseWriter, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := ""

			if r.Body != nil {
				raw, err := io.ReadAll(r.Body)
				if err != nil {
					respondError(w, errUnauthorized())
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(raw))

				var body map[string]any
				if json.Unmarshal(raw, &body) == nil {
					if t, ok := body["token"].(string); ok {
						tokenStr = t
					}
				}
			}

			if tokenStr == "" {
				tokenStr = r.URL.Query().Get("token")
			}
			if tokenStr == "" {
				respondError(w, errUnauthorized())
				return
			}

			username, err := m.Parse(tokenStr)
			if err != nil {
				respondError(w, errUnauthorized())
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

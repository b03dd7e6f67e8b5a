/*
middleware.go - Authentication and request logging middleware

PURPOSE:
  Resolves the calling principal from a bearer token and logs every
  request with structured fields. Authorization itself lives in the
  authz package; this layer only answers "who is calling".

TOKEN FORMAT:
  Authorization: Bearer <jwt>
  HS256-signed. Claims used:
    sub    user id (required)
    roles  []string, e.g. ["admin"] or ["employee"]

PRINCIPAL RESOLUTION:
  - No Authorization header: anonymous principal (requests still pass;
    row-level policy hides everything from anonymous callers)
  - Malformed or badly signed token: 401, request stops here
  - Valid token: principal with the claimed user and roles on context

SEE ALSO:
  - authz/principal.go: Principal type and context plumbing
  - server.go: Middleware ordering
*/
package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/warp/payroll-engine/authz"
	"github.com/warp/payroll-engine/payroll"
)

// authClaims is the JWT payload we issue and accept.
type authClaims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator returns middleware that resolves the request principal
// from a bearer token signed with secret.
func Authenticator(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				ctx := authz.WithPrincipal(r.Context(), authz.Anonymous())
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				writeError(w, http.StatusUnauthorized, "Invalid Authorization header", nil)
				return
			}

			principal, err := parseToken(token, secret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid token", err)
				return
			}

			ctx := authz.WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseToken(token string, secret []byte) (authz.Principal, error) {
	var claims authClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return authz.Principal{}, err
	}
	if !parsed.Valid || claims.Subject == "" {
		return authz.Principal{}, fmt.Errorf("token missing subject")
	}

	roles := make([]payroll.Role, 0, len(claims.Roles))
	for _, r := range claims.Roles {
		roles = append(roles, payroll.Role(r))
	}
	return authz.Principal{UserID: claims.Subject, Roles: roles}, nil
}

// IssueToken signs a token for the given user and roles. Used by tests
// and by deployments that have no separate identity provider.
func IssueToken(secret []byte, userID string, roles []payroll.Role, ttl time.Duration) (string, error) {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}

	claims := authClaims{
		Roles: names,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// RequestLogger returns middleware that logs each request with
// structured fields once the response is written.
func RequestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				log.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("elapsed", time.Since(start)).
					Str("request_id", middleware.GetReqID(r.Context())).
					Msg("request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// Package authctx provides authentication seams for route guards.
package authctx

import (
	"context"
	"net/http"

	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/sessioncookie"
)

// IsAuthenticated reports whether the current request should access protected routes.
type IsAuthenticated func(*http.Request) bool

// CookieAuth returns a cookie-presence auth strategy. It only checks
// that a session cookie exists; use ValidatedSessionAuth for guards.
func CookieAuth() IsAuthenticated {
	return func(r *http.Request) bool {
		if r == nil {
			return false
		}
		_, ok := sessioncookie.Read(r)
		return ok
	}
}

// ValidatedSessionAuth authenticates requests only through validated
// session cookies. Expired and revoked sessions fail.
func ValidatedSessionAuth(validate func(context.Context, string) bool) IsAuthenticated {
	return func(r *http.Request) bool {
		if r == nil || validate == nil {
			return false
		}
		sessionID, ok := sessioncookie.Read(r)
		if !ok {
			return false
		}
		return validate(r.Context(), sessionID)
	}
}

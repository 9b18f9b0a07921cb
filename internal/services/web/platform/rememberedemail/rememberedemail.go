// Package rememberedemail persists the login form's remembered email.
//
// The cookie is written when a login succeeds with remember-me checked
// and cleared otherwise, so the login form can pre-fill the address.
package rememberedemail

import (
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/requestmeta"
)

// Name is the remembered-email cookie name.
const Name = "tl_login_email"

const maxAge = 90 * 24 * time.Hour

// Read returns the remembered email when present and decodable.
func Read(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(Name)
	if err != nil || cookie == nil {
		return "", false
	}
	decoded, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return "", false
	}
	email := strings.TrimSpace(string(decoded))
	if email == "" {
		return "", false
	}
	return email, true
}

// Write stores the email for future login-form pre-fill.
func Write(w http.ResponseWriter, r *http.Request, policy requestmeta.SchemePolicy, email string) {
	if w == nil {
		return
	}
	email = strings.TrimSpace(email)
	if email == "" {
		Clear(w, r, policy)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     Name,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(email)),
		Path:     "/",
		HttpOnly: true,
		Secure:   policy.IsHTTPS(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge / time.Second),
	})
}

// Clear drops the remembered email.
func Clear(w http.ResponseWriter, r *http.Request, policy requestmeta.SchemePolicy) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   policy.IsHTTPS(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

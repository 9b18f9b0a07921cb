// Package flash carries one-shot notices across a redirect.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/requestmeta"
)

// Name is the flash cookie name.
const Name = "tl_flash"

// Notice kinds map to toast styles in the layout.
const (
	KindSuccess = "success"
	KindInfo    = "info"
	KindWarning = "warning"
	KindError   = "error"
)

// Notice is a localizable one-shot message. Key addresses the web
// message catalog; Message overrides it with pre-localized text.
type Notice struct {
	Kind    string `json:"kind"`
	Key     string `json:"key,omitempty"`
	Message string `json:"message,omitempty"`
}

// Write queues a notice for the next full page render.
func Write(w http.ResponseWriter, r *http.Request, policy requestmeta.SchemePolicy, notice Notice) {
	if w == nil {
		return
	}
	notice.Kind = normalizeKind(notice.Kind)
	encoded, err := json.Marshal(notice)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     Name,
		Value:    base64.RawURLEncoding.EncodeToString(encoded),
		Path:     "/",
		HttpOnly: true,
		Secure:   policy.IsHTTPS(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadAndClear pops the queued notice, expiring its cookie. Undecodable
// cookies are dropped silently.
func ReadAndClear(w http.ResponseWriter, r *http.Request, policy requestmeta.SchemePolicy) (Notice, bool) {
	if r == nil {
		return Notice{}, false
	}
	cookie, err := r.Cookie(Name)
	if err != nil || cookie == nil || strings.TrimSpace(cookie.Value) == "" {
		return Notice{}, false
	}
	Clear(w, r, policy)
	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return Notice{}, false
	}
	var notice Notice
	if err := json.Unmarshal(raw, &notice); err != nil {
		return Notice{}, false
	}
	if notice.Key == "" && notice.Message == "" {
		return Notice{}, false
	}
	notice.Kind = normalizeKind(notice.Kind)
	return notice, true
}

// Clear expires the flash cookie.
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

func normalizeKind(kind string) string {
	switch kind {
	case KindSuccess, KindInfo, KindWarning, KindError:
		return kind
	default:
		return KindInfo
	}
}

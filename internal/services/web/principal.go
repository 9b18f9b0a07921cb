package web

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/PedroJIzGar/timelogic/internal/services/auth/authclient"
	"github.com/PedroJIzGar/timelogic/internal/services/shared/i18nhttp"
	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/httpx"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/sessioncookie"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage"
)

type principalKey struct{}

// principalState caches the resolved viewer for one request so the
// session is validated against the identity service at most once, no
// matter how many handlers and guards ask.
type principalState struct {
	mu       sync.Mutex
	resolved bool
	viewer   module.Viewer
	language string
}

// principalResolver turns the session cookie into a Viewer.
type principalResolver struct {
	auth      *authclient.Client
	employees storage.EmployeeStore
}

func newPrincipalResolver(auth *authclient.Client, employees storage.EmployeeStore) *principalResolver {
	return &principalResolver{auth: auth, employees: employees}
}

// Middleware seeds each request with a per-request principal cache and
// persists an explicit ?lang= choice as a cookie.
func (p *principalResolver) Middleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tag, persist := i18nhttp.ResolveTag(r)
			if persist {
				i18nhttp.SetLanguageCookie(w, tag)
			}
			state := &principalState{language: i18nhttp.Locale(tag)}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, state)))
		})
	}
}

// Viewer resolves the signed-in principal for the request.
func (p *principalResolver) Viewer(r *http.Request) module.Viewer {
	if r == nil {
		return module.Viewer{}
	}
	state := stateFrom(r.Context())
	if state == nil {
		state = &principalState{}
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	if !state.resolved {
		if sessionID, ok := sessioncookie.Read(r); ok {
			state.viewer = p.resolveSession(r.Context(), sessionID)
		}
		state.resolved = true
	}
	return state.viewer
}

// Language reports the request locale resolved by the middleware.
func (p *principalResolver) Language(r *http.Request) string {
	if r == nil {
		return ""
	}
	if state := stateFrom(r.Context()); state != nil && state.language != "" {
		return state.language
	}
	tag, _ := i18nhttp.ResolveTag(r)
	return i18nhttp.Locale(tag)
}

// ValidateSession reports whether the session id names a live session.
// It shares the request's principal cache, so route guards do not add a
// second identity round trip.
func (p *principalResolver) ValidateSession(ctx context.Context, sessionID string) bool {
	if strings.TrimSpace(sessionID) == "" {
		return false
	}
	state := stateFrom(ctx)
	if state == nil {
		_, _, err := p.auth.Session(ctx, sessionID)
		return err == nil
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	if !state.resolved {
		state.viewer = p.resolveSession(ctx, sessionID)
		state.resolved = true
	}
	return state.viewer.SignedIn
}

func (p *principalResolver) resolveSession(ctx context.Context, sessionID string) module.Viewer {
	if p.auth == nil {
		return module.Viewer{}
	}
	_, user, err := p.auth.Session(ctx, sessionID)
	if err != nil {
		return module.Viewer{}
	}
	viewer := module.Viewer{
		SignedIn:    true,
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		Locale:      user.Locale,
	}
	if p.employees != nil {
		if record, err := p.employees.GetEmployeeByUserID(ctx, user.ID); err == nil {
			viewer.EmployeeID = record.ID
		}
	}
	return viewer
}

func stateFrom(ctx context.Context) *principalState {
	if ctx == nil {
		return nil
	}
	state, _ := ctx.Value(principalKey{}).(*principalState)
	return state
}

// Package app composes web modules into a routed HTTP handler.
package app

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/requestmeta"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/sessioncookie"
	"github.com/PedroJIzGar/timelogic/internal/services/web/routepath"
)

// ComposeInput carries module groups and shared composition contracts.
type ComposeInput struct {
	Dependencies     module.Dependencies
	AuthRequired     func(*http.Request) bool
	PublicModules    []module.Module
	ProtectedModules []module.Module
}

// Compose builds a root HTTP handler from module groups. Public modules
// mount as-is; protected modules are wrapped with the auth guard and the
// same-origin check for mutating methods.
func Compose(input ComposeInput) (http.Handler, error) {
	root := http.NewServeMux()
	if input.AuthRequired == nil {
		input.AuthRequired = func(*http.Request) bool { return false }
	}
	seen := make(map[string]string)

	for _, feature := range input.PublicModules {
		if err := mountModule(root, feature, input.Dependencies, seen, false, nil); err != nil {
			return nil, err
		}
	}

	wrap := wrapProtectedModule(input.AuthRequired, input.Dependencies.SchemePolicy)
	for _, feature := range input.ProtectedModules {
		if err := mountModule(root, feature, input.Dependencies, seen, true, wrap); err != nil {
			return nil, err
		}
	}

	return root, nil
}

func mountModule(
	root *http.ServeMux,
	feature module.Module,
	deps module.Dependencies,
	seen map[string]string,
	protected bool,
	wrap func(http.Handler) http.Handler,
) error {
	if feature == nil {
		return fmt.Errorf("module is nil")
	}
	mount, err := feature.Mount(deps)
	if err != nil {
		return fmt.Errorf("mount module %q: %w", feature.ID(), err)
	}
	prefix := strings.TrimSpace(mount.Prefix)
	if prefix == "" || !strings.HasPrefix(prefix, "/") {
		return fmt.Errorf("mount module %q: prefix %q is not rooted", feature.ID(), prefix)
	}
	if mount.Handler == nil {
		return fmt.Errorf("mount module %q: handler is required", feature.ID())
	}
	inAppSpace := strings.HasPrefix(prefix, routepath.AppPrefix) || prefix == routepath.App
	if protected != inAppSpace {
		if protected {
			return fmt.Errorf("module %q must mount under %s, got %q", feature.ID(), routepath.AppPrefix, prefix)
		}
		return fmt.Errorf("module %q has protected prefix %q in public group", feature.ID(), prefix)
	}
	if previous, ok := seen[prefix]; ok {
		return fmt.Errorf("module %q duplicates prefix %q owned by module %q", feature.ID(), prefix, previous)
	}
	seen[prefix] = feature.ID()

	handler := mount.Handler
	if wrap != nil {
		handler = wrap(handler)
	}
	root.Handle(prefix, handler)
	// Subtree mounts also claim the bare path so /app/employees does not
	// bounce through a 301 before reaching the module.
	if bare := strings.TrimSuffix(prefix, "/"); bare != "" && bare != prefix {
		seen[bare] = feature.ID()
		root.Handle(bare, handler)
	}
	return nil
}

func requireAuth(authenticated func(*http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if next == nil {
			return http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authenticated(r) {
				target := ""
				if r != nil && r.URL != nil {
					target = r.URL.Path
					if r.URL.RawQuery != "" {
						target += "?" + r.URL.RawQuery
					}
				}
				http.Redirect(w, r, routepath.LoginWithRedirect(target), http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func wrapProtectedModule(authenticated func(*http.Request) bool, policy requestmeta.SchemePolicy) func(http.Handler) http.Handler {
	authWrap := requireAuth(authenticated)
	csrfWrap := requireCookieSessionSameOrigin(policy)
	return func(next http.Handler) http.Handler {
		return authWrap(csrfWrap(next))
	}
}

func requireCookieSessionSameOrigin(policy requestmeta.SchemePolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isMutationMethod(r) || !hasSessionCookie(r) {
				next.ServeHTTP(w, r)
				return
			}
			if !policy.HasSameOriginProof(r) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isMutationMethod(r *http.Request) bool {
	if r == nil {
		return false
	}
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func hasSessionCookie(r *http.Request) bool {
	_, ok := sessioncookie.Read(r)
	return ok
}

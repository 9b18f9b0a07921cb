// Package module defines the composition contract for web modules.
//
// Each feature area implements Module and receives its collaborators
// through Dependencies at mount time. Modules never open stores or
// dial services themselves.
package module

import (
	"net/http"
	"time"

	"github.com/PedroJIzGar/timelogic/internal/services/auth/authclient"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/requestmeta"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage"
)

// Viewer is the signed-in principal as seen by page templates.
type Viewer struct {
	SignedIn    bool
	UserID      string
	EmployeeID  string
	Email       string
	DisplayName string
	Role        string
	Locale      string
}

// Manager reports whether the viewer can act on other employees.
func (v Viewer) Manager() bool {
	return v.Role == "manager" || v.Role == "admin"
}

// Mount is a module's contribution to the composed handler.
type Mount struct {
	Prefix  string
	Handler http.Handler
}

// Module is a mountable web feature area.
type Module interface {
	ID() string
	Mount(Dependencies) (Mount, error)
}

// Dependencies carries shared collaborators into module mounts. Fields
// may be nil; modules degrade to unavailable gateways rather than panic.
type Dependencies struct {
	Auth          *authclient.Client
	Employees     storage.EmployeeStore
	Shifts        storage.ShiftStore
	Timeclock     storage.TimeclockStore
	Tasks         storage.TaskStore
	Requests      storage.RequestStore
	Notifications storage.NotificationStore

	ResolveViewer   func(*http.Request) Viewer
	ResolveLanguage func(*http.Request) string
	SchemePolicy    requestmeta.SchemePolicy
	Clock           func() time.Time
}

// Now returns the dependency clock, defaulting to time.Now.
func (d Dependencies) Now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now()
}

// Language resolves the request language, defaulting to en-US.
func (d Dependencies) Language(r *http.Request) string {
	if d.ResolveLanguage != nil {
		if lang := d.ResolveLanguage(r); lang != "" {
			return lang
		}
	}
	return "en-US"
}

// Viewer resolves the request viewer, defaulting to signed out.
func (d Dependencies) ViewerFor(r *http.Request) Viewer {
	if d.ResolveViewer != nil {
		return d.ResolveViewer(r)
	}
	return Viewer{}
}

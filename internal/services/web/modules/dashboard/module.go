// Package dashboard serves the /app landing page with its KPI cards
// and the auto-refreshing daily overview.
package dashboard

import (
	"net/http"

	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/web/routepath"
)

// Module mounts the dashboard as the /app/ subtree fallback. Feature
// modules claim their own subtrees with longer patterns, so anything
// unclaimed under /app/ lands here and gets the styled not-found page.
type Module struct{}

// New returns the dashboard module.
func New() Module {
	return Module{}
}

// ID implements module.Module.
func (Module) ID() string { return "dashboard" }

// Mount implements module.Module.
func (Module) Mount(deps module.Dependencies) (module.Mount, error) {
	h := handlers{deps: deps}
	mux := http.NewServeMux()
	mux.HandleFunc(http.MethodGet+" "+routepath.App+"/{$}", h.handleDashboard)
	mux.HandleFunc(http.MethodGet+" "+routepath.App, h.handleDashboard)
	mux.HandleFunc(http.MethodGet+" "+routepath.DashboardOverview, h.handleOverview)
	mux.HandleFunc("/", h.handleNotFound)
	return module.Mount{Prefix: routepath.AppPrefix, Handler: mux}, nil
}

// Package requests serves time-off and shift-swap requests: submitting
// them, tracking their status, and the manager decision queue.
package requests

import (
	"net/http"

	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/web/routepath"
)

// Module mounts the request pages under /app/requests/.
type Module struct{}

// New returns the requests module.
func New() Module {
	return Module{}
}

// ID implements module.Module.
func (Module) ID() string { return "requests" }

// Mount implements module.Module.
func (Module) Mount(deps module.Dependencies) (module.Mount, error) {
	h := handlers{deps: deps}
	mux := http.NewServeMux()
	mux.HandleFunc(http.MethodGet+" "+routepath.AppRequests, h.handlePage)
	mux.HandleFunc(http.MethodGet+" "+routepath.AppRequests+"/{$}", h.handlePage)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppRequests, h.handleCreate)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppRequestDecidePattern, h.handleDecide)
	return module.Mount{Prefix: routepath.RequestsPrefix, Handler: mux}, nil
}

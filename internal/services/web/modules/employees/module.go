// Package employees serves the roster: filtered list, detail pages,
// and the manager-only create and edit forms.
package employees

import (
	"net/http"

	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/web/routepath"
)

// Module mounts the roster pages under /app/employees/.
type Module struct{}

// New returns the employees module.
func New() Module {
	return Module{}
}

// ID implements module.Module.
func (Module) ID() string { return "employees" }

// Mount implements module.Module.
func (Module) Mount(deps module.Dependencies) (module.Mount, error) {
	h := handlers{deps: deps}
	mux := http.NewServeMux()
	mux.HandleFunc(http.MethodGet+" "+routepath.AppEmployees, h.handleList)
	mux.HandleFunc(http.MethodGet+" "+routepath.AppEmployees+"/{$}", h.handleList)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppEmployees, h.handleCreate)
	mux.HandleFunc(http.MethodGet+" "+routepath.AppEmployeesNew, h.handleNewForm)
	mux.HandleFunc(http.MethodGet+" "+routepath.AppEmployeePattern, h.handleDetail)
	mux.HandleFunc(http.MethodGet+" "+routepath.AppEmployeeEditPattern, h.handleEditForm)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppEmployeePattern, h.handleUpdate)
	return module.Mount{Prefix: routepath.EmployeesPrefix, Handler: mux}, nil
}

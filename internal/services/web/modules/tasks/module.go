// Package tasks serves the task board: filtered list, creation,
// assignment, and status transitions.
package tasks

import (
	"net/http"

	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/web/routepath"
)

// Module mounts the task pages under /app/tasks/.
type Module struct{}

// New returns the tasks module.
func New() Module {
	return Module{}
}

// ID implements module.Module.
func (Module) ID() string { return "tasks" }

// Mount implements module.Module.
func (Module) Mount(deps module.Dependencies) (module.Mount, error) {
	h := handlers{deps: deps}
	mux := http.NewServeMux()
	mux.HandleFunc(http.MethodGet+" "+routepath.AppTasks, h.handleList)
	mux.HandleFunc(http.MethodGet+" "+routepath.AppTasks+"/{$}", h.handleList)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppTasks, h.handleCreate)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppTaskAssignPattern, h.handleAssign)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppTaskStatusPattern, h.handleStatus)
	return module.Mount{Prefix: routepath.TasksPrefix, Handler: mux}, nil
}

// Package schedule serves the week view, shift creation, and the
// employee confirm/decline responses.
package schedule

import (
	"net/http"

	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/web/routepath"
)

// Module mounts the schedule pages under /app/schedule/.
type Module struct{}

// New returns the schedule module.
func New() Module {
	return Module{}
}

// ID implements module.Module.
func (Module) ID() string { return "schedule" }

// Mount implements module.Module.
func (Module) Mount(deps module.Dependencies) (module.Mount, error) {
	h := handlers{deps: deps}
	mux := http.NewServeMux()
	mux.HandleFunc(http.MethodGet+" "+routepath.AppSchedule, h.handleWeek)
	mux.HandleFunc(http.MethodGet+" "+routepath.AppSchedule+"/{$}", h.handleWeek)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppScheduleShifts, h.handleCreateShift)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppScheduleConfirmPattern, h.handleConfirm)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppScheduleDeclinePattern, h.handleDecline)
	return module.Mount{Prefix: routepath.SchedulePrefix, Handler: mux}, nil
}

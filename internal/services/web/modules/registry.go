// Package modules wires every web module into the default site layout.
package modules

import (
	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/web/modules/dashboard"
	"github.com/PedroJIzGar/timelogic/internal/services/web/modules/employees"
	"github.com/PedroJIzGar/timelogic/internal/services/web/modules/publicauth"
	"github.com/PedroJIzGar/timelogic/internal/services/web/modules/requests"
	"github.com/PedroJIzGar/timelogic/internal/services/web/modules/schedule"
	"github.com/PedroJIzGar/timelogic/internal/services/web/modules/settings"
	"github.com/PedroJIzGar/timelogic/internal/services/web/modules/tasks"
	"github.com/PedroJIzGar/timelogic/internal/services/web/modules/timeclock"
)

// DefaultPublicModules returns the modules served without a session.
func DefaultPublicModules() []module.Module {
	return []module.Module{
		publicauth.New(),
	}
}

// DefaultProtectedModules returns the modules served under /app/.
// Order is cosmetic; the composed mux routes by pattern length.
func DefaultProtectedModules() []module.Module {
	return []module.Module{
		dashboard.New(),
		employees.New(),
		schedule.New(),
		timeclock.New(),
		tasks.New(),
		requests.New(),
		settings.New(),
	}
}

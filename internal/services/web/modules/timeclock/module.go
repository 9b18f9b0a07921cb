// Package timeclock serves the punch card, the manager live board,
// and the per-second elapsed fragment.
package timeclock

import (
	"net/http"

	"golang.org/x/net/websocket"

	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/web/routepath"
)

// Module mounts the punch-clock pages under /app/timeclock/.
type Module struct{}

// New returns the timeclock module.
func New() Module {
	return Module{}
}

// ID implements module.Module.
func (Module) ID() string { return "timeclock" }

// Mount implements module.Module.
func (Module) Mount(deps module.Dependencies) (module.Mount, error) {
	h := handlers{deps: deps}
	mux := http.NewServeMux()
	mux.HandleFunc(http.MethodGet+" "+routepath.AppTimeclock, h.handlePage)
	mux.HandleFunc(http.MethodGet+" "+routepath.AppTimeclock+"/{$}", h.handlePage)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppTimeclockSignIn, h.handleSignIn)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppTimeclockPause, h.handlePause)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppTimeclockResume, h.handleResume)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppTimeclockSignOut, h.handleSignOut)
	mux.HandleFunc(http.MethodGet+" "+routepath.AppTimeclockElapsed, h.handleElapsed)
	mux.Handle(http.MethodGet+" "+routepath.AppTimeclockLive, websocket.Server{
		Handshake: h.liveBoardHandshake,
		Handler:   h.serveLiveBoard,
	})
	return module.Mount{Prefix: routepath.TimeclockPrefix, Handler: mux}, nil
}

package publicauth

import (
	"net/http"

	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/httpx"
	"github.com/PedroJIzGar/timelogic/internal/services/web/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.Root+"{$}", h.handleRoot)
	mux.HandleFunc(http.MethodGet+" "+routepath.Health, h.handleHealth)

	mux.HandleFunc(http.MethodGet+" "+routepath.Login, h.handleLoginPage)
	mux.HandleFunc(http.MethodPost+" "+routepath.Login, h.handleLoginSubmit)

	mux.HandleFunc(http.MethodGet+" "+routepath.Register, h.handleRegisterPage)
	mux.HandleFunc(http.MethodPost+" "+routepath.Register, h.handleRegisterSubmit)

	mux.HandleFunc(http.MethodGet+" "+routepath.ResetRequest, h.handleResetRequestPage)
	mux.HandleFunc(http.MethodPost+" "+routepath.ResetRequest, h.handleResetRequestSubmit)
	mux.HandleFunc(http.MethodGet+" "+routepath.ResetCompletePattern, h.handleResetCompletePage)
	mux.HandleFunc(http.MethodPost+" "+routepath.ResetCompletePattern, h.handleResetCompleteSubmit)

	mux.HandleFunc(http.MethodPost+" "+routepath.Logout, h.handleLogout)
	mux.HandleFunc(http.MethodGet+" "+routepath.Logout, httpx.MethodNotAllowed(http.MethodPost))

	mux.HandleFunc(http.MethodGet+" /{rest...}", h.handleNotFound)
}

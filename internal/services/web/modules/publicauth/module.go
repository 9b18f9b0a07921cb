// Package publicauth serves the public entry points: login, signup,
// password resets, and logout.
package publicauth

import (
	"context"
	"net/http"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/authclient"
	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/web/routepath"
)

// Module mounts the public auth surface at the site root.
type Module struct{}

// New returns the public auth module.
func New() Module {
	return Module{}
}

// ID implements module.Module.
func (Module) ID() string { return "publicauth" }

// Mount implements module.Module.
func (Module) Mount(deps module.Dependencies) (module.Mount, error) {
	h := handlers{deps: deps, auth: gatewayFor(deps)}
	mux := http.NewServeMux()
	registerRoutes(mux, h)
	return module.Mount{Prefix: routepath.Root, Handler: mux}, nil
}

// authGateway is the slice of the identity client this module needs.
type authGateway interface {
	Login(ctx context.Context, email, password string, opts authclient.LoginOptions) (authclient.LoginResult, error)
	Register(ctx context.Context, input authclient.RegisterInput) (authclient.User, error)
	Logout(ctx context.Context, sessionID string) error
	RequestPasswordReset(ctx context.Context, email string) error
	CompletePasswordReset(ctx context.Context, tokenID, password string) error
}

type unavailableGateway struct{}

var errAuthUnavailable = apperrors.New(apperrors.CodeUnknown, "identity service is not configured")

func (unavailableGateway) Login(context.Context, string, string, authclient.LoginOptions) (authclient.LoginResult, error) {
	return authclient.LoginResult{}, errAuthUnavailable
}

func (unavailableGateway) Register(context.Context, authclient.RegisterInput) (authclient.User, error) {
	return authclient.User{}, errAuthUnavailable
}

func (unavailableGateway) Logout(context.Context, string) error {
	return errAuthUnavailable
}

func (unavailableGateway) RequestPasswordReset(context.Context, string) error {
	return errAuthUnavailable
}

func (unavailableGateway) CompletePasswordReset(context.Context, string, string) error {
	return errAuthUnavailable
}

func gatewayFor(deps module.Dependencies) authGateway {
	if deps.Auth != nil {
		return deps.Auth
	}
	return unavailableGateway{}
}

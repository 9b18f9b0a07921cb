// Package settings serves the account settings pages: profile and
// language, password changes, and passkey management.
package settings

import (
	"context"
	"encoding/json"
	"net/http"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/authclient"
	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/web/routepath"
)

// Module mounts the settings pages under /app/settings/.
type Module struct{}

// New returns the settings module.
func New() Module {
	return Module{}
}

// ID implements module.Module.
func (Module) ID() string { return "settings" }

// Mount implements module.Module.
func (Module) Mount(deps module.Dependencies) (module.Mount, error) {
	h := handlers{deps: deps, auth: gatewayFor(deps)}
	mux := http.NewServeMux()
	mux.HandleFunc(http.MethodGet+" "+routepath.AppSettings, h.handlePage)
	mux.HandleFunc(http.MethodGet+" "+routepath.AppSettings+"/{$}", h.handlePage)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppSettingsProfile, h.handleProfile)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppSettingsPassword, h.handlePassword)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppSettingsPasskeysBegin, h.handlePasskeysBegin)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppSettingsPasskeysFinish, h.handlePasskeysFinish)
	mux.HandleFunc(http.MethodPost+" "+routepath.PasskeyDeletePattern, h.handlePasskeyDelete)
	return module.Mount{Prefix: routepath.SettingsPrefix, Handler: mux}, nil
}

// accountGateway is the slice of the identity client this module needs.
type accountGateway interface {
	UpdateProfile(ctx context.Context, userID string, patch authclient.ProfilePatch) (authclient.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	ListPasskeys(ctx context.Context, userID string) ([]authclient.Passkey, error)
	BeginPasskeyRegistration(ctx context.Context, userID string) (authclient.PasskeyCeremony, error)
	FinishPasskeyRegistration(ctx context.Context, userID, sessionID, name string, credentialResponse json.RawMessage) error
	DeletePasskey(ctx context.Context, credentialID string) error
}

type unavailableGateway struct{}

var errAuthUnavailable = apperrors.New(apperrors.CodeUnknown, "identity service is not configured")

func (unavailableGateway) UpdateProfile(context.Context, string, authclient.ProfilePatch) (authclient.User, error) {
	return authclient.User{}, errAuthUnavailable
}

func (unavailableGateway) ChangePassword(context.Context, string, string, string) error {
	return errAuthUnavailable
}

func (unavailableGateway) ListPasskeys(context.Context, string) ([]authclient.Passkey, error) {
	return nil, errAuthUnavailable
}

func (unavailableGateway) BeginPasskeyRegistration(context.Context, string) (authclient.PasskeyCeremony, error) {
	return authclient.PasskeyCeremony{}, errAuthUnavailable
}

func (unavailableGateway) FinishPasskeyRegistration(context.Context, string, string, string, json.RawMessage) error {
	return errAuthUnavailable
}

func (unavailableGateway) DeletePasskey(context.Context, string) error {
	return errAuthUnavailable
}

func gatewayFor(deps module.Dependencies) accountGateway {
	if deps.Auth != nil {
		return deps.Auth
	}
	return unavailableGateway{}
}

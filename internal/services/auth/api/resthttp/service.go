package resthttp

import (
	"net/http"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"

	"github.com/PedroJIzGar/timelogic/internal/platform/id"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/passkey"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/storage"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/token"
)

const (
	// DefaultSessionTTL bounds a plain browser session.
	DefaultSessionTTL = 24 * time.Hour

	// RememberMeSessionTTL bounds a session created with remember_me.
	RememberMeSessionTTL = 30 * 24 * time.Hour

	// ResetTokenTTL bounds a password reset token.
	ResetTokenTTL = time.Hour

	// BcryptCost is the work factor for stored password hashes.
	BcryptCost = 12

	maxRequestBody = 1 << 20
)

// Service implements the identity JSON API.
//
// It is the stable surface the web app, the worker, and tooling call to
// perform identity actions without directly touching storage details.
type Service struct {
	store              storage.UserStore
	webSessionStore    storage.WebSessionStore
	resetStore         storage.PasswordResetStore
	passkeyStore       storage.PasskeyStore
	txStore            storage.TransactionalStore
	signer             *token.Signer
	passkeyConfig      passkey.Config
	passkeyWebAuthn    passkeyProvider
	passkeyInitErr     error
	passkeyParser      passkeyParser
	clock              func() time.Time
	idGenerator        func() (string, error)
	passkeyIDGenerator func() (string, error)
}

// NewService builds a service with defaults for the auth package.
//
// Optional store capabilities are discovered by type assertion so a single
// SQLite store can back every concern while tests swap in narrow fakes.
func NewService(store storage.UserStore, signer *token.Signer) *Service {
	config := passkey.LoadConfigFromEnv()
	webAuthn, err := webauthn.New(&webauthn.Config{
		RPDisplayName: config.RPDisplayName,
		RPID:          config.RPID,
		RPOrigins:     config.RPOrigins,
	})
	var webSessionStore storage.WebSessionStore
	var resetStore storage.PasswordResetStore
	var passkeyStore storage.PasskeyStore
	var txStore storage.TransactionalStore
	if store != nil {
		if typed, ok := store.(storage.WebSessionStore); ok {
			webSessionStore = typed
		}
		if typed, ok := store.(storage.PasswordResetStore); ok {
			resetStore = typed
		}
		if typed, ok := store.(storage.PasskeyStore); ok {
			passkeyStore = typed
		}
		if typed, ok := store.(storage.TransactionalStore); ok {
			txStore = typed
		}
	}
	return &Service{
		store:              store,
		webSessionStore:    webSessionStore,
		resetStore:         resetStore,
		passkeyStore:       passkeyStore,
		txStore:            txStore,
		signer:             signer,
		passkeyConfig:      config,
		passkeyWebAuthn:    webAuthn,
		passkeyInitErr:     err,
		passkeyParser:      defaultPasskeyParser{},
		clock:              time.Now,
		idGenerator:        id.NewID,
		passkeyIDGenerator: id.NewID,
	}
}

// RegisterRoutes registers identity endpoints on the provided mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	if mux == nil {
		return
	}
	mux.HandleFunc("GET /v1/token-key", s.handleTokenKey)
	mux.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /v1/sessions/{sessionID}", s.handleGetSession)
	mux.HandleFunc("DELETE /v1/sessions/{sessionID}", s.handleRevokeSession)
	mux.HandleFunc("POST /v1/sessions/{sessionID}/token", s.handleMintToken)

	mux.HandleFunc("POST /v1/users", s.handleCreateUser)
	mux.HandleFunc("POST /v1/users/{userID}/password", s.handleChangePassword)
	mux.HandleFunc("PATCH /v1/users/{userID}", s.handleUpdateUser)

	mux.HandleFunc("POST /v1/password-resets", s.handleRequestPasswordReset)
	mux.HandleFunc("POST /v1/password-resets/{tokenID}", s.handleCompletePasswordReset)

	mux.HandleFunc("POST /v1/users/{userID}/passkeys/begin", s.handleBeginPasskeyRegistration)
	mux.HandleFunc("POST /v1/users/{userID}/passkeys/finish", s.handleFinishPasskeyRegistration)
	mux.HandleFunc("GET /v1/users/{userID}/passkeys", s.handleListPasskeys)
	mux.HandleFunc("DELETE /v1/passkeys/{credentialID}", s.handleDeletePasskey)
	mux.HandleFunc("POST /v1/passkeys/login/begin", s.handleBeginPasskeyLogin)
	mux.HandleFunc("POST /v1/passkeys/login/finish", s.handleFinishPasskeyLogin)

	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

// WithClock overrides the service clock for tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	if s == nil || clock == nil {
		return s
	}
	s.clock = clock
	return s
}

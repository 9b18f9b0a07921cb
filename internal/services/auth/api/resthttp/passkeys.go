package resthttp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/passkey"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/storage"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/user"
)

type passkeyProvider interface {
	BeginRegistration(user webauthn.User, opts ...webauthn.RegistrationOption) (*protocol.CredentialCreation, *webauthn.SessionData, error)
	CreateCredential(user webauthn.User, session webauthn.SessionData, response *protocol.ParsedCredentialCreationData) (*webauthn.Credential, error)
	BeginLogin(user webauthn.User, opts ...webauthn.LoginOption) (*protocol.CredentialAssertion, *webauthn.SessionData, error)
	BeginDiscoverableLogin(opts ...webauthn.LoginOption) (*protocol.CredentialAssertion, *webauthn.SessionData, error)
	ValidatePasskeyLogin(handler webauthn.DiscoverableUserHandler, session webauthn.SessionData, response *protocol.ParsedCredentialAssertionData) (webauthn.User, *webauthn.Credential, error)
}

type passkeyParser interface {
	ParseCredentialCreationResponseBytes(data []byte) (*protocol.ParsedCredentialCreationData, error)
	ParseCredentialRequestResponseBytes(data []byte) (*protocol.ParsedCredentialAssertionData, error)
}

type defaultPasskeyParser struct{}

func (defaultPasskeyParser) ParseCredentialCreationResponseBytes(data []byte) (*protocol.ParsedCredentialCreationData, error) {
	return protocol.ParseCredentialCreationResponseBytes(data)
}

func (defaultPasskeyParser) ParseCredentialRequestResponseBytes(data []byte) (*protocol.ParsedCredentialAssertionData, error) {
	return protocol.ParseCredentialRequestResponseBytes(data)
}

var errPasskeyInvalid = apperrors.New(apperrors.CodeAuthPasskeyInvalid, "passkey could not be verified")

func (s *Service) passkeyReady() error {
	if s.passkeyStore == nil {
		return apperrors.New(apperrors.CodeUnknown, "passkey store is not configured")
	}
	if s.passkeyInitErr != nil || s.passkeyWebAuthn == nil {
		return apperrors.New(apperrors.CodeUnknown, "passkey configuration is not available")
	}
	if s.passkeyParser == nil {
		return apperrors.New(apperrors.CodeUnknown, "passkey parser is not configured")
	}
	return nil
}

func (s *Service) handleBeginPasskeyRegistration(w http.ResponseWriter, r *http.Request) {
	if err := s.passkeyReady(); err != nil {
		writeError(w, err)
		return
	}
	userID := strings.TrimSpace(r.PathValue("userID"))
	if userID == "" {
		writeInvalidArgument(w, "user id is required")
		return
	}
	baseUser, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	passkeyUser, err := s.loadPasskeyUser(r.Context(), baseUser)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "load passkey user", err))
		return
	}

	options := []webauthn.RegistrationOption{
		webauthn.WithResidentKeyRequirement(protocol.ResidentKeyRequirementRequired),
	}
	if len(passkeyUser.credentials) > 0 {
		options = append(options, webauthn.WithExclusions(webauthn.Credentials(passkeyUser.credentials).CredentialDescriptors()))
	}

	creation, session, err := s.passkeyWebAuthn.BeginRegistration(passkeyUser, options...)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "begin passkey registration", err))
		return
	}
	sessionID, err := s.newPasskeySessionID()
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "create passkey session", err))
		return
	}
	if err := s.storePasskeySession(r.Context(), sessionID, passkey.SessionKindRegistration, baseUser.ID, session); err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "store passkey session", err))
		return
	}
	writeJSON(w, http.StatusOK, struct {
		SessionID string `json:"session_id"`
		Options   any    `json:"credential_creation_options"`
	}{SessionID: sessionID, Options: creation})
}

type finishPasskeyRegistrationRequest struct {
	SessionID          string          `json:"session_id"`
	Name               string          `json:"name"`
	CredentialResponse json.RawMessage `json:"credential_response"`
}

func (s *Service) handleFinishPasskeyRegistration(w http.ResponseWriter, r *http.Request) {
	if err := s.passkeyReady(); err != nil {
		writeError(w, err)
		return
	}
	var in finishPasskeyRegistrationRequest
	if err := decodeJSON(r, &in); err != nil {
		writeInvalidArgument(w, "request body is not valid JSON")
		return
	}
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		writeInvalidArgument(w, "session id is required")
		return
	}
	if len(in.CredentialResponse) == 0 {
		writeInvalidArgument(w, "credential response is required")
		return
	}

	session, err := s.loadPasskeySession(r.Context(), sessionID, passkey.SessionKindRegistration)
	if err != nil {
		writeError(w, err)
		return
	}
	if session.UserID == "" || session.UserID != strings.TrimSpace(r.PathValue("userID")) {
		writeError(w, errPasskeyInvalid)
		return
	}
	baseUser, err := s.store.GetUser(r.Context(), session.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	passkeyUser, err := s.loadPasskeyUser(r.Context(), baseUser)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "load passkey user", err))
		return
	}

	parsed, err := s.passkeyParser.ParseCredentialCreationResponseBytes(in.CredentialResponse)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeAuthPasskeyInvalid, "parse credential response", err))
		return
	}
	credential, err := s.passkeyWebAuthn.CreateCredential(passkeyUser, session.Data, parsed)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeAuthPasskeyInvalid, "validate credential response", err))
		return
	}

	if err := s.storePasskeyCredential(r.Context(), baseUser.ID, in.Name, *credential, false); err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "store passkey credential", err))
		return
	}
	_ = s.passkeyStore.DeletePasskeySession(r.Context(), sessionID)

	writeJSON(w, http.StatusCreated, struct {
		User         userPayload `json:"user"`
		CredentialID string      `json:"credential_id"`
	}{User: userToPayload(baseUser), CredentialID: encodeCredentialID(credential.ID)})
}

type beginPasskeyLoginRequest struct {
	UserID string `json:"user_id"`
}

func (s *Service) handleBeginPasskeyLogin(w http.ResponseWriter, r *http.Request) {
	if err := s.passkeyReady(); err != nil {
		writeError(w, err)
		return
	}
	var in beginPasskeyLoginRequest
	if err := decodeJSON(r, &in); err != nil {
		writeInvalidArgument(w, "request body is not valid JSON")
		return
	}
	userID := strings.TrimSpace(in.UserID)

	var (
		assertion *protocol.CredentialAssertion
		session   *webauthn.SessionData
		err       error
	)
	if userID == "" {
		assertion, session, err = s.passkeyWebAuthn.BeginDiscoverableLogin()
	} else {
		baseUser, lookupErr := s.store.GetUser(r.Context(), userID)
		if lookupErr != nil {
			writeError(w, lookupErr)
			return
		}
		passkeyUser, loadErr := s.loadPasskeyUser(r.Context(), baseUser)
		if loadErr != nil {
			writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "load passkey user", loadErr))
			return
		}
		assertion, session, err = s.passkeyWebAuthn.BeginLogin(passkeyUser)
	}
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "begin passkey login", err))
		return
	}

	sessionID, err := s.newPasskeySessionID()
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "create passkey session", err))
		return
	}
	if err := s.storePasskeySession(r.Context(), sessionID, passkey.SessionKindLogin, userID, session); err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "store passkey session", err))
		return
	}
	writeJSON(w, http.StatusOK, struct {
		SessionID string `json:"session_id"`
		Options   any    `json:"credential_request_options"`
	}{SessionID: sessionID, Options: assertion})
}

type finishPasskeyLoginRequest struct {
	SessionID          string          `json:"session_id"`
	CredentialResponse json.RawMessage `json:"credential_response"`
	RememberMe         bool            `json:"remember_me"`
}

func (s *Service) handleFinishPasskeyLogin(w http.ResponseWriter, r *http.Request) {
	if err := s.passkeyReady(); err != nil {
		writeError(w, err)
		return
	}
	var in finishPasskeyLoginRequest
	if err := decodeJSON(r, &in); err != nil {
		writeInvalidArgument(w, "request body is not valid JSON")
		return
	}
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		writeInvalidArgument(w, "session id is required")
		return
	}
	if len(in.CredentialResponse) == 0 {
		writeInvalidArgument(w, "credential response is required")
		return
	}

	session, err := s.loadPasskeySession(r.Context(), sessionID, passkey.SessionKindLogin)
	if err != nil {
		writeError(w, err)
		return
	}
	parsed, err := s.passkeyParser.ParseCredentialRequestResponseBytes(in.CredentialResponse)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeAuthPasskeyInvalid, "parse credential response", err))
		return
	}
	validatedUser, validatedCredential, err := s.passkeyWebAuthn.ValidatePasskeyLogin(s.passkeyUserHandler(r.Context()), session.Data, parsed)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeAuthPasskeyInvalid, "validate passkey login", err))
		return
	}
	userRecord, ok := validatedUser.(*passkeyUser)
	if !ok {
		writeError(w, apperrors.New(apperrors.CodeUnknown, "passkey user type mismatch"))
		return
	}
	if userRecord.user.Disabled {
		writeError(w, apperrors.New(apperrors.CodeAuthUserDisabled, "account is disabled"))
		return
	}

	if err := s.storePasskeyCredential(r.Context(), userRecord.user.ID, "", *validatedCredential, true); err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "store passkey credential", err))
		return
	}
	_ = s.passkeyStore.DeletePasskeySession(r.Context(), sessionID)

	// Passkey login issues the same session and token pair as a
	// password login.
	webSession, signed, err := s.issueSession(r.Context(), userRecord.user, in.RememberMe)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{
		Session: sessionToPayload(webSession),
		Token:   signed,
		User:    userToPayload(userRecord.user),
	})
}

type passkeyRecord struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

func (s *Service) handleListPasskeys(w http.ResponseWriter, r *http.Request) {
	if err := s.passkeyReady(); err != nil {
		writeError(w, err)
		return
	}
	userID := strings.TrimSpace(r.PathValue("userID"))
	if userID == "" {
		writeInvalidArgument(w, "user id is required")
		return
	}
	if _, err := s.store.GetUser(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	credentials, err := s.passkeyStore.ListPasskeyCredentials(r.Context(), userID)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "list passkey credentials", err))
		return
	}
	records := make([]passkeyRecord, 0, len(credentials))
	for _, credential := range credentials {
		records = append(records, passkeyRecord{
			ID:         credential.CredentialID,
			Name:       credential.Name,
			CreatedAt:  credential.CreatedAt,
			LastUsedAt: credential.LastUsedAt,
		})
	}
	writeJSON(w, http.StatusOK, struct {
		Passkeys []passkeyRecord `json:"passkeys"`
	}{Passkeys: records})
}

func (s *Service) handleDeletePasskey(w http.ResponseWriter, r *http.Request) {
	if err := s.passkeyReady(); err != nil {
		writeError(w, err)
		return
	}
	credentialID := strings.TrimSpace(r.PathValue("credentialID"))
	if credentialID == "" {
		writeInvalidArgument(w, "credential id is required")
		return
	}
	if err := s.passkeyStore.DeletePasskeyCredential(r.Context(), credentialID); err != nil && err != storage.ErrNotFound {
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "delete passkey credential", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type passkeyUser struct {
	user        user.User
	credentials []webauthn.Credential
}

func (u *passkeyUser) WebAuthnID() []byte {
	return []byte(u.user.ID)
}

func (u *passkeyUser) WebAuthnName() string {
	return u.user.ID
}

func (u *passkeyUser) WebAuthnDisplayName() string {
	return u.user.DisplayName
}

func (u *passkeyUser) WebAuthnIcon() string {
	return ""
}

func (u *passkeyUser) WebAuthnCredentials() []webauthn.Credential {
	return u.credentials
}

func (s *Service) loadPasskeyUser(ctx context.Context, base user.User) (*passkeyUser, error) {
	credentials, err := s.passkeyStore.ListPasskeyCredentials(ctx, base.ID)
	if err != nil {
		return nil, err
	}
	parsed, err := decodeStoredCredentials(credentials)
	if err != nil {
		return nil, err
	}
	return &passkeyUser{user: base, credentials: parsed}, nil
}

func decodeStoredCredentials(records []storage.PasskeyCredential) ([]webauthn.Credential, error) {
	if len(records) == 0 {
		return nil, nil
	}
	credentials := make([]webauthn.Credential, 0, len(records))
	for _, record := range records {
		var credential webauthn.Credential
		if err := json.Unmarshal([]byte(record.CredentialJSON), &credential); err != nil {
			return nil, fmt.Errorf("decode credential %s: %w", record.CredentialID, err)
		}
		credentials = append(credentials, credential)
	}
	return credentials, nil
}

func (s *Service) storePasskeyCredential(ctx context.Context, userID, name string, credential webauthn.Credential, used bool) error {
	credentialID := encodeCredentialID(credential.ID)
	now := s.clock().UTC()
	stored, err := s.passkeyStore.GetPasskeyCredential(ctx, credentialID)
	if err != nil && err != storage.ErrNotFound {
		return err
	}
	if err == storage.ErrNotFound && used {
		return fmt.Errorf("passkey credential not found")
	}

	createdAt := now
	if err == nil {
		createdAt = stored.CreatedAt
		if name == "" {
			name = stored.Name
		}
	}
	credentialJSON, err := json.Marshal(credential)
	if err != nil {
		return err
	}
	var lastUsed *time.Time
	if used {
		value := now
		lastUsed = &value
	} else if stored.LastUsedAt != nil {
		lastUsed = stored.LastUsedAt
	}
	return s.passkeyStore.PutPasskeyCredential(ctx, storage.PasskeyCredential{
		CredentialID:   credentialID,
		UserID:         userID,
		Name:           strings.TrimSpace(name),
		CredentialJSON: string(credentialJSON),
		CreatedAt:      createdAt,
		UpdatedAt:      now,
		LastUsedAt:     lastUsed,
	})
}

func (s *Service) storePasskeySession(ctx context.Context, sessionID string, kind passkey.SessionKind, userID string, session *webauthn.SessionData) error {
	if session == nil {
		return fmt.Errorf("session data is required")
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.passkeyStore.PutPasskeySession(ctx, storage.PasskeySession{
		ID:          sessionID,
		Kind:        string(kind),
		UserID:      userID,
		SessionJSON: string(payload),
		ExpiresAt:   s.clock().UTC().Add(s.passkeyConfig.SessionTTL),
	})
}

type loadedPasskeySession struct {
	Data   webauthn.SessionData
	Kind   passkey.SessionKind
	UserID string
}

func (s *Service) loadPasskeySession(ctx context.Context, sessionID string, expectedKind passkey.SessionKind) (loadedPasskeySession, error) {
	stored, err := s.passkeyStore.GetPasskeySession(ctx, sessionID)
	if err != nil {
		if err == storage.ErrNotFound {
			return loadedPasskeySession{}, errPasskeyInvalid
		}
		return loadedPasskeySession{}, apperrors.Wrap(apperrors.CodeUnknown, "load passkey session", err)
	}
	if stored.Kind != string(expectedKind) {
		return loadedPasskeySession{}, errPasskeyInvalid
	}
	if stored.ExpiresAt.Before(s.clock().UTC()) {
		_ = s.passkeyStore.DeletePasskeySession(ctx, sessionID)
		return loadedPasskeySession{}, errPasskeyInvalid
	}

	var session webauthn.SessionData
	if err := json.Unmarshal([]byte(stored.SessionJSON), &session); err != nil {
		return loadedPasskeySession{}, apperrors.Wrap(apperrors.CodeUnknown, "decode passkey session", err)
	}
	return loadedPasskeySession{Data: session, Kind: expectedKind, UserID: stored.UserID}, nil
}

func (s *Service) passkeyUserHandler(ctx context.Context) webauthn.DiscoverableUserHandler {
	return func(_, userHandle []byte) (webauthn.User, error) {
		userID := string(userHandle)
		if strings.TrimSpace(userID) == "" {
			return nil, fmt.Errorf("user handle is required")
		}
		baseUser, err := s.store.GetUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		return s.loadPasskeyUser(ctx, baseUser)
	}
}

func (s *Service) newPasskeySessionID() (string, error) {
	if s.passkeyIDGenerator != nil {
		return s.passkeyIDGenerator()
	}
	return s.idGenerator()
}

func encodeCredentialID(raw []byte) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}

package resthttp

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/storage"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/token"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/user"
)

// decoyPasswordHash is compared against when login hits an unknown email
// so the failure costs the same bcrypt work as a wrong password. The
// comparison can never succeed.
const decoyPasswordHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

var errInvalidCredentials = apperrors.New(apperrors.CodeAuthInvalidCredentials, "email or password is incorrect")

// errSessionExpired covers missing, revoked, and expired sessions alike
// so a token refresh cannot probe which one it was.
var errSessionExpired = apperrors.New(apperrors.CodeAuthSessionExpired, "session is no longer valid")

type createSessionRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

type sessionResponse struct {
	Session sessionPayload `json:"session"`
	Token   string         `json:"token"`
	User    userPayload    `json:"user"`
}

// handleTokenKey publishes the token verification key so other services
// can check ID tokens without a network round trip per request.
func (s *Service) handleTokenKey(w http.ResponseWriter, _ *http.Request) {
	public := s.signer.PublicKey()
	if len(public) == 0 {
		writeError(w, apperrors.New(apperrors.CodeUnknown, "token signer is not configured"))
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Algorithm string `json:"algorithm"`
		PublicKey string `json:"public_key"`
	}{Algorithm: "EdDSA", PublicKey: base64.RawStdEncoding.EncodeToString(public)})
}

func (s *Service) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var in createSessionRequest
	if err := decodeJSON(r, &in); err != nil {
		writeInvalidArgument(w, "request body is not valid JSON")
		return
	}
	email, err := user.NormalizeEmail(in.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	if in.Password == "" {
		writeError(w, errInvalidCredentials)
		return
	}

	found, err := s.store.GetUserByEmail(r.Context(), email)
	if err != nil {
		if err == storage.ErrNotFound {
			_ = bcrypt.CompareHashAndPassword([]byte(decoyPasswordHash), []byte(in.Password))
			writeError(w, errInvalidCredentials)
			return
		}
		writeError(w, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(in.Password)); err != nil {
		writeError(w, errInvalidCredentials)
		return
	}
	if found.Disabled {
		writeError(w, apperrors.New(apperrors.CodeAuthUserDisabled, "account is disabled"))
		return
	}

	session, signed, err := s.issueSession(r.Context(), found, in.RememberMe)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{
		Session: sessionToPayload(session),
		Token:   signed,
		User:    userToPayload(found),
	})
}

// issueSession creates a durable web session and mints the first ID
// token for it. Password and passkey logins share this path.
func (s *Service) issueSession(ctx context.Context, u user.User, rememberMe bool) (storage.WebSession, string, error) {
	if s.webSessionStore == nil {
		return storage.WebSession{}, "", apperrors.New(apperrors.CodeUnknown, "web session store is not configured")
	}
	sessionID, err := s.idGenerator()
	if err != nil {
		return storage.WebSession{}, "", apperrors.Wrap(apperrors.CodeUnknown, "generate session id", err)
	}
	ttl := DefaultSessionTTL
	if rememberMe {
		ttl = RememberMeSessionTTL
	}
	now := s.clock().UTC()
	session := storage.WebSession{
		ID:        sessionID,
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.webSessionStore.PutWebSession(ctx, session); err != nil {
		return storage.WebSession{}, "", apperrors.Wrap(apperrors.CodeUnknown, "put web session", err)
	}
	signed, err := s.signer.Issue(u)
	if err != nil {
		return storage.WebSession{}, "", apperrors.Wrap(apperrors.CodeUnknown, "issue id token", err)
	}
	return session, signed, nil
}

func (s *Service) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, found, err := s.resolveSession(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		if apperrors.GetCode(err) == apperrors.CodeAuthSessionExpired {
			writeError(w, storage.ErrNotFound)
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Session sessionPayload `json:"session"`
		User    userPayload    `json:"user"`
	}{Session: sessionToPayload(session), User: userToPayload(found)})
}

func (s *Service) handleRevokeSession(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	if sessionID == "" {
		writeInvalidArgument(w, "session id is required")
		return
	}
	if s.webSessionStore == nil {
		writeError(w, apperrors.New(apperrors.CodeUnknown, "web session store is not configured"))
		return
	}
	// Revoking a missing or already-revoked session succeeds so logout
	// can always be retried.
	if err := s.webSessionStore.RevokeWebSession(r.Context(), sessionID, s.clock().UTC()); err != nil && err != storage.ErrNotFound {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleMintToken(w http.ResponseWriter, r *http.Request) {
	_, found, err := s.resolveSession(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	signed, err := s.signer.Issue(found)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "issue id token", err))
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}{Token: signed, ExpiresAt: s.clock().UTC().Add(token.TTL)})
}

// resolveSession loads a live session and its user. Revoked and expired
// sessions are indistinguishable from absent ones.
func (s *Service) resolveSession(ctx context.Context, rawID string) (storage.WebSession, user.User, error) {
	sessionID := strings.TrimSpace(rawID)
	if sessionID == "" {
		return storage.WebSession{}, user.User{}, errSessionExpired
	}
	if s.webSessionStore == nil {
		return storage.WebSession{}, user.User{}, apperrors.New(apperrors.CodeUnknown, "web session store is not configured")
	}
	session, err := s.webSessionStore.GetWebSession(ctx, sessionID)
	if err != nil {
		if err == storage.ErrNotFound {
			return storage.WebSession{}, user.User{}, errSessionExpired
		}
		return storage.WebSession{}, user.User{}, apperrors.Wrap(apperrors.CodeUnknown, "get web session", err)
	}
	now := s.clock().UTC()
	if session.RevokedAt != nil || !session.ExpiresAt.After(now) {
		return storage.WebSession{}, user.User{}, errSessionExpired
	}
	found, err := s.store.GetUser(ctx, session.UserID)
	if err != nil {
		if err == storage.ErrNotFound {
			return storage.WebSession{}, user.User{}, errSessionExpired
		}
		return storage.WebSession{}, user.User{}, apperrors.Wrap(apperrors.CodeUnknown, "get user", err)
	}
	if found.Disabled {
		return storage.WebSession{}, user.User{}, apperrors.New(apperrors.CodeAuthUserDisabled, "account is disabled")
	}
	return session, found, nil
}

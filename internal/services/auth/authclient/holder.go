package authclient

import (
	"context"
	"crypto/ed25519"
	"sync"
	"time"

	"github.com/PedroJIzGar/timelogic/internal/services/auth/token"
)

// TokenHolder mirrors the current ID token for one authenticated
// session. It hands out the held token while it stays fresh and mints a
// replacement through the durable session once the token is within the
// refresh leeway of expiry. Safe for concurrent use.
type TokenHolder struct {
	mu        sync.Mutex
	client    *Client
	sessionID string
	token     string
	public    ed25519.PublicKey
	clock     func() time.Time
}

// NewTokenHolder binds a holder to a session and its first token.
//
// When public is non-nil held tokens are signature-checked before being
// handed out; otherwise only their claims are inspected, which is enough
// for tokens received straight from the identity API.
func NewTokenHolder(client *Client, sessionID, firstToken string, public ed25519.PublicKey) *TokenHolder {
	return &TokenHolder{
		client:    client,
		sessionID: sessionID,
		token:     firstToken,
		public:    public,
		clock:     time.Now,
	}
}

// WithClock overrides the holder clock for tests.
func (h *TokenHolder) WithClock(clock func() time.Time) *TokenHolder {
	if h == nil || clock == nil {
		return h
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clock = clock
	return h
}

// SessionID returns the durable session backing this holder.
func (h *TokenHolder) SessionID() string {
	if h == nil {
		return ""
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessionID
}

// Token returns the currently held ID token without any network call.
// Empty when the holder is cleared.
func (h *TokenHolder) Token() string {
	if h == nil {
		return ""
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.token
}

// Set replaces the held token.
func (h *TokenHolder) Set(tokenString string) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = tokenString
}

// Clear drops the held token and session binding.
func (h *TokenHolder) Clear() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = ""
	h.sessionID = ""
}

// ValidToken returns the held token when it still verifies and is not
// within the refresh leeway of expiry; otherwise it mints a fresh token
// from the session and returns that. Returns a session-expired error
// once the backing session is revoked or past its TTL.
func (h *TokenHolder) ValidToken(ctx context.Context) (string, error) {
	if h == nil {
		return "", token.ErrInvalid
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if claims, err := h.verify(h.token); err == nil && !claims.Stale(h.clock().UTC()) {
		return h.token, nil
	}
	if h.client == nil || h.sessionID == "" {
		return "", token.ErrInvalid
	}
	fresh, err := h.client.MintToken(ctx, h.sessionID)
	if err != nil {
		return "", err
	}
	h.token = fresh
	return fresh, nil
}

// Role returns the role claim of the held token, or empty when no valid
// token is held.
func (h *TokenHolder) Role() string {
	if h == nil {
		return ""
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	claims, err := h.verify(h.token)
	if err != nil {
		return ""
	}
	return claims.Role
}

// UserID returns the subject claim of the held token, or empty when no
// valid token is held.
func (h *TokenHolder) UserID() string {
	if h == nil {
		return ""
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	claims, err := h.verify(h.token)
	if err != nil {
		return ""
	}
	return claims.Subject
}

func (h *TokenHolder) verify(tokenString string) (token.Claims, error) {
	if h.public != nil {
		return token.VerifyWithKey(tokenString, h.public, h.clock)
	}
	claims, err := token.ParseUnverified(tokenString)
	if err != nil {
		return token.Claims{}, err
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.Time.After(h.clock().UTC()) {
		return token.Claims{}, token.ErrExpired
	}
	return claims, nil
}

package authclient

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/platform/timeouts"
)

// User mirrors the identity API's user payload.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	Locale      string    `json:"locale"`
	Disabled    bool      `json:"disabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Session mirrors the identity API's session payload.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginResult is the session, first ID token, and user from a login.
type LoginResult struct {
	Session Session `json:"session"`
	Token   string  `json:"token"`
	User    User    `json:"user"`
}

// Passkey mirrors a stored passkey summary.
type Passkey struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

// LoginOptions tune session issuance.
type LoginOptions struct {
	RememberMe bool
}

// RegisterInput describes a signup request.
type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role,omitempty"`
	Locale      string `json:"locale,omitempty"`
}

// Client is a thin wrapper over the identity provider's JSON API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a client for the identity API rooted at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeouts.APIRequest},
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	if c == nil || httpClient == nil {
		return c
	}
	c.httpClient = httpClient
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL
}

// Login exchanges credentials for a session and first ID token.
func (c *Client) Login(ctx context.Context, email, password string, opts LoginOptions) (LoginResult, error) {
	var out LoginResult
	err := c.call(ctx, http.MethodPost, "/v1/sessions", struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		RememberMe bool   `json:"remember_me"`
	}{Email: email, Password: password, RememberMe: opts.RememberMe}, &out)
	return out, err
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, input RegisterInput) (User, error) {
	var out struct {
		User User `json:"user"`
	}
	err := c.call(ctx, http.MethodPost, "/v1/users", input, &out)
	return out.User, err
}

// Logout revokes a session. Revoking a missing session succeeds.
func (c *Client) Logout(ctx context.Context, sessionID string) error {
	return c.call(ctx, http.MethodDelete, "/v1/sessions/"+sessionID, nil, nil)
}

// Session resolves a live session and its user. Revoked and expired
// sessions come back as not found.
func (c *Client) Session(ctx context.Context, sessionID string) (Session, User, error) {
	var out struct {
		Session Session `json:"session"`
		User    User    `json:"user"`
	}
	err := c.call(ctx, http.MethodGet, "/v1/sessions/"+sessionID, nil, &out)
	return out.Session, out.User, err
}

// MintToken mints a fresh ID token from a durable session.
func (c *Client) MintToken(ctx context.Context, sessionID string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.call(ctx, http.MethodPost, "/v1/sessions/"+sessionID+"/token", nil, &out)
	return out.Token, err
}

// TokenPublicKey fetches the token verification key.
func (c *Client) TokenPublicKey(ctx context.Context) (ed25519.PublicKey, error) {
	var out struct {
		Algorithm string `json:"algorithm"`
		PublicKey string `json:"public_key"`
	}
	if err := c.call(ctx, http.MethodGet, "/v1/token-key", nil, &out); err != nil {
		return nil, err
	}
	raw, err := base64.RawStdEncoding.DecodeString(out.PublicKey)
	if err != nil {
		raw, err = base64.StdEncoding.DecodeString(out.PublicKey)
	}
	if err != nil {
		return nil, fmt.Errorf("decode token public key: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("token public key has %d bytes, want %d", len(raw), ed25519.PublicKeySize)
	}
	return ed25519.PublicKey(raw), nil
}

// RequestPasswordReset asks for a reset email. The identity provider
// answers identically whether or not the address maps to an account.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.call(ctx, http.MethodPost, "/v1/password-resets", struct {
		Email string `json:"email"`
	}{Email: email}, nil)
}

// CompletePasswordReset sets a new password from a single-use token.
func (c *Client) CompletePasswordReset(ctx context.Context, tokenID, password string) error {
	return c.call(ctx, http.MethodPost, "/v1/password-resets/"+tokenID, struct {
		Password string `json:"password"`
	}{Password: password}, nil)
}

// ChangePassword rotates a password given the current one.
func (c *Client) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	return c.call(ctx, http.MethodPost, "/v1/users/"+userID+"/password", struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}{CurrentPassword: currentPassword, NewPassword: newPassword}, nil)
}

// ProfilePatch carries optional profile updates; nil fields are untouched.
type ProfilePatch struct {
	DisplayName *string `json:"display_name,omitempty"`
	Locale      *string `json:"locale,omitempty"`
}

// UpdateProfile applies a partial profile update.
func (c *Client) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (User, error) {
	var out struct {
		User User `json:"user"`
	}
	err := c.call(ctx, http.MethodPatch, "/v1/users/"+userID, patch, &out)
	return out.User, err
}

// PasskeyCeremony is a started WebAuthn ceremony: the server-side session
// id plus the browser options blob to hand to navigator.credentials.
type PasskeyCeremony struct {
	SessionID string          `json:"session_id"`
	Options   json.RawMessage `json:"options"`
}

// BeginPasskeyRegistration starts a passkey enrollment ceremony.
func (c *Client) BeginPasskeyRegistration(ctx context.Context, userID string) (PasskeyCeremony, error) {
	var out struct {
		SessionID string          `json:"session_id"`
		Options   json.RawMessage `json:"credential_creation_options"`
	}
	err := c.call(ctx, http.MethodPost, "/v1/users/"+userID+"/passkeys/begin", struct{}{}, &out)
	return PasskeyCeremony{SessionID: out.SessionID, Options: out.Options}, err
}

// FinishPasskeyRegistration completes a passkey enrollment ceremony.
func (c *Client) FinishPasskeyRegistration(ctx context.Context, userID, sessionID, name string, credentialResponse json.RawMessage) error {
	return c.call(ctx, http.MethodPost, "/v1/users/"+userID+"/passkeys/finish", struct {
		SessionID          string          `json:"session_id"`
		Name               string          `json:"name"`
		CredentialResponse json.RawMessage `json:"credential_response"`
	}{SessionID: sessionID, Name: name, CredentialResponse: credentialResponse}, nil)
}

// BeginPasskeyLogin starts a passkey login ceremony. An empty userID
// starts a discoverable-credential ceremony.
func (c *Client) BeginPasskeyLogin(ctx context.Context, userID string) (PasskeyCeremony, error) {
	var out struct {
		SessionID string          `json:"session_id"`
		Options   json.RawMessage `json:"credential_request_options"`
	}
	err := c.call(ctx, http.MethodPost, "/v1/passkeys/login/begin", struct {
		UserID string `json:"user_id,omitempty"`
	}{UserID: userID}, &out)
	return PasskeyCeremony{SessionID: out.SessionID, Options: out.Options}, err
}

// FinishPasskeyLogin completes a passkey login ceremony, issuing the
// same session and token pair as a password login.
func (c *Client) FinishPasskeyLogin(ctx context.Context, sessionID string, credentialResponse json.RawMessage, opts LoginOptions) (LoginResult, error) {
	var out LoginResult
	err := c.call(ctx, http.MethodPost, "/v1/passkeys/login/finish", struct {
		SessionID          string          `json:"session_id"`
		CredentialResponse json.RawMessage `json:"credential_response"`
		RememberMe         bool            `json:"remember_me"`
	}{SessionID: sessionID, CredentialResponse: credentialResponse, RememberMe: opts.RememberMe}, &out)
	return out, err
}

// ListPasskeys lists a user's enrolled passkeys.
func (c *Client) ListPasskeys(ctx context.Context, userID string) ([]Passkey, error) {
	var out struct {
		Passkeys []Passkey `json:"passkeys"`
	}
	err := c.call(ctx, http.MethodGet, "/v1/users/"+userID+"/passkeys", nil, &out)
	return out.Passkeys, err
}

// DeletePasskey removes an enrolled passkey. Removing a missing passkey
// succeeds.
func (c *Client) DeletePasskey(ctx context.Context, credentialID string) error {
	return c.call(ctx, http.MethodDelete, "/v1/passkeys/"+credentialID, nil, nil)
}

// call performs one API round trip, decoding error envelopes back into
// domain errors so callers localize them like in-process failures.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	if c == nil || c.httpClient == nil {
		return fmt.Errorf("auth client is not configured")
	}
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return decodeErrorEnvelope(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

func decodeErrorEnvelope(resp *http.Response) error {
	var envelope struct {
		Error struct {
			Code     string            `json:"code"`
			Message  string            `json:"message"`
			Metadata map[string]string `json:"metadata"`
		} `json:"error"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || json.Unmarshal(raw, &envelope) != nil || envelope.Error.Code == "" {
		return apperrors.New(apperrors.CodeUnknown, fmt.Sprintf("identity API returned status %d", resp.StatusCode))
	}
	return apperrors.WithMetadata(apperrors.Code(envelope.Error.Code), envelope.Error.Message, envelope.Error.Metadata)
}

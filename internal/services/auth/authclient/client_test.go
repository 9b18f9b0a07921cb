package authclient

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/token"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/user"
)

func TestLoginDecodesResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/sessions" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var in struct {
			Email      string `json:"email"`
			RememberMe bool   `json:"remember_me"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if in.Email != "ana@example.com" || !in.RememberMe {
			t.Fatalf("request = %+v", in)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(LoginResult{
			Session: Session{ID: "session-1", UserID: "user-1"},
			Token:   "token-1",
			User:    User{ID: "user-1", Email: "ana@example.com"},
		})
	}))
	defer server.Close()

	client := New(server.URL)
	result, err := client.Login(context.Background(), "ana@example.com", "correct horse", LoginOptions{RememberMe: true})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Session.ID != "session-1" || result.Token != "token-1" {
		t.Fatalf("result = %+v", result)
	}
}

func TestCallDecodesErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"AUTH_PASSWORD_TOO_SHORT","message":"password is too short","metadata":{"MinLength":"8"}}}`))
	}))
	defer server.Close()

	_, err := New(server.URL).Register(context.Background(), RegisterInput{Email: "ana@example.com", Password: "short"})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := apperrors.GetCode(err); got != apperrors.CodeAuthPasswordTooShort {
		t.Fatalf("code = %q", got)
	}
	if got := apperrors.GetMetadata(err)["MinLength"]; got != "8" {
		t.Fatalf("metadata MinLength = %q", got)
	}
}

func TestCallUnknownErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	err := New(server.URL).Logout(context.Background(), "session-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := apperrors.GetCode(err); got != apperrors.CodeUnknown {
		t.Fatalf("code = %q", got)
	}
}

func newTestSigner(t *testing.T, clock func() time.Time) *token.Signer {
	t.Helper()
	_, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	signer, err := token.NewSigner(private)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	return signer.WithClock(clock)
}

func TestTokenHolderReturnsFreshTokenWithoutNetwork(t *testing.T) {
	now := time.Now().UTC()
	signer := newTestSigner(t, func() time.Time { return now })
	issued, err := signer.Issue(user.User{ID: "user-1", Email: "ana@example.com", Role: user.RoleManager})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// nil client: any network attempt would fail the test.
	holder := NewTokenHolder(nil, "session-1", issued, signer.PublicKey())
	holder.WithClock(func() time.Time { return now })

	got, err := holder.ValidToken(context.Background())
	if err != nil {
		t.Fatalf("valid token: %v", err)
	}
	if got != issued {
		t.Fatal("expected the held token back")
	}
	if holder.Role() != string(user.RoleManager) {
		t.Fatalf("role = %q", holder.Role())
	}
	if holder.UserID() != "user-1" {
		t.Fatalf("user id = %q", holder.UserID())
	}
}

func TestTokenHolderRefreshesStaleToken(t *testing.T) {
	now := time.Now().UTC()
	signer := newTestSigner(t, func() time.Time { return now })
	stale, err := signer.Issue(user.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	later := now.Add(token.TTL - 10*time.Second)
	fresh, err := signer.WithClock(func() time.Time { return later }).Issue(user.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("issue fresh: %v", err)
	}

	minted := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/sessions/session-1/token" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		minted++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Token string `json:"token"`
		}{Token: fresh})
	}))
	defer server.Close()

	holder := NewTokenHolder(New(server.URL), "session-1", stale, signer.PublicKey())
	holder.WithClock(func() time.Time { return later })

	got, err := holder.ValidToken(context.Background())
	if err != nil {
		t.Fatalf("valid token: %v", err)
	}
	if got != fresh || minted != 1 {
		t.Fatalf("token refreshed = %v, minted = %d", got == fresh, minted)
	}
	if holder.Token() != fresh {
		t.Fatal("holder did not keep the fresh token")
	}
}

func TestTokenHolderSessionExpired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"AUTH_SESSION_EXPIRED","message":"session is no longer valid"}}`))
	}))
	defer server.Close()

	holder := NewTokenHolder(New(server.URL), "session-1", "", nil)
	if _, err := holder.ValidToken(context.Background()); apperrors.GetCode(err) != apperrors.CodeAuthSessionExpired {
		t.Fatalf("err = %v", err)
	}
}

func TestTokenHolderClear(t *testing.T) {
	holder := NewTokenHolder(nil, "session-1", "token-1", nil)
	holder.Clear()
	if holder.Token() != "" || holder.SessionID() != "" {
		t.Fatal("clear did not drop state")
	}
	if holder.Role() != "" {
		t.Fatalf("role = %q, want empty", holder.Role())
	}
}

type recordingTransport struct {
	headers []string
}

func (r *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r.headers = append(r.headers, req.Header.Get("Authorization"))
	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusOK)
	return rec.Result(), nil
}

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestBearerTransportScopesToAPIBase(t *testing.T) {
	recorder := &recordingTransport{}
	transport := NewBearerTransport(recorder, "http://auth.internal:8084/v1", staticToken("token-1"))
	client := &http.Client{Transport: transport}

	for _, target := range []string{
		"http://auth.internal:8084/v1/sessions",
		"http://auth.internal:8084/v1",
		"http://auth.internal:8084/other",
		"http://elsewhere.example.com/v1/sessions",
	} {
		req, err := http.NewRequest(http.MethodGet, target, nil)
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("do request: %v", err)
		}
		_ = resp.Body.Close()
		if req.Header.Get("Authorization") != "" {
			t.Fatal("original request was mutated")
		}
	}

	want := []string{"Bearer token-1", "Bearer token-1", "", ""}
	if len(recorder.headers) != len(want) {
		t.Fatalf("recorded %d requests", len(recorder.headers))
	}
	for i, header := range want {
		if recorder.headers[i] != header {
			t.Fatalf("request %d header = %q, want %q", i, recorder.headers[i], header)
		}
	}
}

func TestBearerTransportSkipsWithoutToken(t *testing.T) {
	recorder := &recordingTransport{}
	transport := NewBearerTransport(recorder, "http://auth.internal:8084", staticToken(""))
	req := httptest.NewRequest(http.MethodGet, "http://auth.internal:8084/v1/sessions", nil)
	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	_ = resp.Body.Close()
	if recorder.headers[0] != "" {
		t.Fatalf("header = %q, want empty", recorder.headers[0])
	}
}

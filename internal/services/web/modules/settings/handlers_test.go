package settings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PedroJIzGar/timelogic/internal/services/auth/authclient"
	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
)

type recordingGateway struct {
	passkeys []authclient.Passkey

	profileErr  error
	passwordErr error

	lastPatch       authclient.ProfilePatch
	lastPasswordNew string
	deletedID       string
	finishedName    string
}

func (g *recordingGateway) UpdateProfile(_ context.Context, _ string, patch authclient.ProfilePatch) (authclient.User, error) {
	g.lastPatch = patch
	return authclient.User{}, g.profileErr
}

func (g *recordingGateway) ChangePassword(_ context.Context, _, _, newPassword string) error {
	g.lastPasswordNew = newPassword
	return g.passwordErr
}

func (g *recordingGateway) ListPasskeys(context.Context, string) ([]authclient.Passkey, error) {
	return g.passkeys, nil
}

func (g *recordingGateway) BeginPasskeyRegistration(context.Context, string) (authclient.PasskeyCeremony, error) {
	return authclient.PasskeyCeremony{
		SessionID: "ceremony-1",
		Options:   json.RawMessage(`{"publicKey":{"challenge":"abc"}}`),
	}, nil
}

func (g *recordingGateway) FinishPasskeyRegistration(_ context.Context, _, _, name string, _ json.RawMessage) error {
	g.finishedName = name
	return nil
}

func (g *recordingGateway) DeletePasskey(_ context.Context, credentialID string) error {
	g.deletedID = credentialID
	return nil
}

func testHandlers(gateway accountGateway) handlers {
	return handlers{
		deps: module.Dependencies{
			ResolveViewer: func(*http.Request) module.Viewer {
				return module.Viewer{SignedIn: true, UserID: "user-1", Email: "ana@example.com", DisplayName: "Ana"}
			},
			Clock: func() time.Time { return time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC) },
		},
		auth: gateway,
	}
}

func postForm(t *testing.T, path string, form url.Values) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestPageListsPasskeys(t *testing.T) {
	t.Parallel()

	used := time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC)
	h := testHandlers(&recordingGateway{passkeys: []authclient.Passkey{
		{ID: "cred-1", Name: "work laptop", CreatedAt: used.AddDate(0, -1, 0), LastUsedAt: &used},
	}})

	rec := httptest.NewRecorder()
	h.handlePage(rec, httptest.NewRequest(http.MethodGet, "/app/settings", nil))

	body := rec.Body.String()
	if !strings.Contains(body, "work laptop") {
		t.Fatal("passkey row missing")
	}
	if !strings.Contains(body, "/app/settings/passkeys/cred-1/delete") {
		t.Fatal("delete action missing")
	}
	if !strings.Contains(body, `data-begin-url="/app/settings/passkeys/begin"`) {
		t.Fatal("begin URL missing")
	}
}

func TestProfileUpdateSendsPatchAndSetsLanguage(t *testing.T) {
	t.Parallel()

	gateway := &recordingGateway{}
	h := testHandlers(gateway)

	rec := httptest.NewRecorder()
	h.handleProfile(rec, postForm(t, "/app/settings/profile", url.Values{
		"display_name": {"Ana García"},
		"locale":       {"es-ES"},
	}))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302: %s", rec.Code, rec.Body.String())
	}
	if gateway.lastPatch.DisplayName == nil || *gateway.lastPatch.DisplayName != "Ana García" {
		t.Fatalf("display name patch = %+v", gateway.lastPatch.DisplayName)
	}
	if gateway.lastPatch.Locale == nil || *gateway.lastPatch.Locale != "es-ES" {
		t.Fatalf("locale patch = %+v", gateway.lastPatch.Locale)
	}
	var langCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "tl_lang" {
			langCookie = c
		}
	}
	if langCookie == nil || langCookie.Value != "es-ES" {
		t.Fatalf("language cookie = %+v", langCookie)
	}
	if got := rec.Header().Get("Location"); !strings.Contains(got, "saved=1") {
		t.Fatalf("redirect = %q", got)
	}
}

func TestProfileUpdateRejectsUnknownLocale(t *testing.T) {
	t.Parallel()

	gateway := &recordingGateway{}
	h := testHandlers(gateway)

	rec := httptest.NewRecorder()
	h.handleProfile(rec, postForm(t, "/app/settings/profile", url.Values{"locale": {"xx-XX"}}))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if gateway.lastPatch.Locale != nil {
		t.Fatal("patch sent despite invalid locale")
	}
}

func TestPasswordChangeSurfacesGatewayError(t *testing.T) {
	t.Parallel()

	gateway := &recordingGateway{passwordErr: errAuthUnavailable}
	h := testHandlers(gateway)

	rec := httptest.NewRecorder()
	h.handlePassword(rec, postForm(t, "/app/settings/password", url.Values{
		"current_password": {"old-secret"},
		"new_password":     {"new-secret"},
	}))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if gateway.lastPasswordNew != "new-secret" {
		t.Fatalf("new password = %q", gateway.lastPasswordNew)
	}
}

func TestPasskeyBeginReturnsCeremonyJSON(t *testing.T) {
	t.Parallel()

	h := testHandlers(&recordingGateway{})

	rec := httptest.NewRecorder()
	h.handlePasskeysBegin(rec, httptest.NewRequest(http.MethodPost, "/app/settings/passkeys/begin", nil))

	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("content type = %q", got)
	}
	var body struct {
		SessionID string          `json:"session_id"`
		Options   json.RawMessage `json:"options"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.SessionID != "ceremony-1" || !strings.Contains(string(body.Options), "publicKey") {
		t.Fatalf("body = %+v", body)
	}
}

func TestPasskeyFinishForwardsCeremony(t *testing.T) {
	t.Parallel()

	gateway := &recordingGateway{}
	h := testHandlers(gateway)

	payload := `{"session_id":"ceremony-1","name":"abc123","credential_response":{"id":"abc123"}}`
	req := httptest.NewRequest(http.MethodPost, "/app/settings/passkeys/finish", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.handlePasskeysFinish(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204: %s", rec.Code, rec.Body.String())
	}
	if gateway.finishedName != "abc123" {
		t.Fatalf("name = %q", gateway.finishedName)
	}
}

func TestPasskeyDeleteRedirectsWithFlash(t *testing.T) {
	t.Parallel()

	gateway := &recordingGateway{}
	h := testHandlers(gateway)

	req := httptest.NewRequest(http.MethodPost, "/app/settings/passkeys/cred-1/delete", nil)
	req.SetPathValue("credentialID", "cred-1")
	rec := httptest.NewRecorder()
	h.handlePasskeyDelete(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if gateway.deletedID != "cred-1" {
		t.Fatalf("deleted = %q", gateway.deletedID)
	}
	var flashCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "tl_flash" {
			flashCookie = c
		}
	}
	if flashCookie == nil {
		t.Fatal("flash cookie missing")
	}
}

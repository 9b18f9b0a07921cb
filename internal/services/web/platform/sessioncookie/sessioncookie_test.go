package sessioncookie

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/requestmeta"
)

func TestReadTrimsAndRejectsEmpty(t *testing.T) {
	t.Parallel()

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := Read(request); ok {
		t.Fatal("expected no session without cookie")
	}

	request.AddCookie(&http.Cookie{Name: Name, Value: "  sess-1  "})
	value, ok := Read(request)
	if !ok || value != "sess-1" {
		t.Fatalf("Read() = %q, %v", value, ok)
	}

	empty := httptest.NewRequest(http.MethodGet, "/", nil)
	empty.AddCookie(&http.Cookie{Name: Name, Value: "   "})
	if _, ok := Read(empty); ok {
		t.Fatal("expected blank cookie to read as absent")
	}
}

func TestWriteSessionAndPersistentCookies(t *testing.T) {
	t.Parallel()

	recorder := httptest.NewRecorder()
	Write(recorder, httptest.NewRequest(http.MethodGet, "/", nil), requestmeta.SchemePolicy{}, "sess-1", 0)
	cookies := recorder.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}
	cookie := cookies[0]
	if cookie.Name != Name || cookie.Value != "sess-1" {
		t.Fatalf("cookie = %q=%q", cookie.Name, cookie.Value)
	}
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteLaxMode {
		t.Fatal("expected HttpOnly Lax cookie")
	}
	if cookie.MaxAge != 0 {
		t.Fatalf("session cookie MaxAge = %d, want 0", cookie.MaxAge)
	}

	recorder = httptest.NewRecorder()
	Write(recorder, httptest.NewRequest(http.MethodGet, "/", nil), requestmeta.SchemePolicy{}, "sess-1", 30*24*time.Hour)
	cookie = recorder.Result().Cookies()[0]
	if cookie.MaxAge != int((30*24*time.Hour)/time.Second) {
		t.Fatalf("persistent cookie MaxAge = %d", cookie.MaxAge)
	}
}

func TestClearExpiresCookie(t *testing.T) {
	t.Parallel()

	recorder := httptest.NewRecorder()
	Clear(recorder, httptest.NewRequest(http.MethodGet, "/", nil), requestmeta.SchemePolicy{})
	cookies := recorder.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}
	if cookies[0].MaxAge != -1 || cookies[0].Value != "" {
		t.Fatalf("cookie = %+v, want expired", cookies[0])
	}
}

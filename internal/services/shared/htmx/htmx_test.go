package htmx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

func componentOf(markup string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, markup)
		return err
	})
}

func htmxRequest() *http.Request {
	request := httptest.NewRequest(http.MethodGet, "/app/tasks", nil)
	request.Header.Set(RequestHeader, "true")
	return request
}

func TestIsHTMXRequest(t *testing.T) {
	t.Parallel()

	if IsHTMXRequest(httptest.NewRequest(http.MethodGet, "/", nil)) {
		t.Fatal("plain request detected as HTMX")
	}
	if !IsHTMXRequest(htmxRequest()) {
		t.Fatal("HTMX request not detected")
	}
}

func TestRenderPageServesFullForPlainRequests(t *testing.T) {
	t.Parallel()

	recorder := httptest.NewRecorder()
	full := componentOf("<html><main><p>body</p></main></html>")
	RenderPage(recorder, httptest.NewRequest(http.MethodGet, "/", nil), componentOf("<p>fragment</p>"), full, "")

	if !strings.Contains(recorder.Body.String(), "<html>") {
		t.Fatalf("body = %q, want full document", recorder.Body.String())
	}
}

func TestRenderPagePrefersFragmentForHTMX(t *testing.T) {
	t.Parallel()

	recorder := httptest.NewRecorder()
	RenderPage(recorder, htmxRequest(), componentOf("<p>fragment</p>"), componentOf("<html><main>full</main></html>"), "")

	if got := recorder.Body.String(); got != "<p>fragment</p>" {
		t.Fatalf("body = %q, want fragment only", got)
	}
}

func TestRenderPageExtractsMainWhenFragmentMissing(t *testing.T) {
	t.Parallel()

	recorder := httptest.NewRecorder()
	full := componentOf(`<html><main class="page"><p>body</p></main></html>`)
	RenderPage(recorder, htmxRequest(), nil, full, "")

	if got := recorder.Body.String(); got != "<p>body</p>" {
		t.Fatalf("body = %q, want main content", got)
	}
}

func TestRenderPagePrependsTitleForHTMX(t *testing.T) {
	t.Parallel()

	recorder := httptest.NewRecorder()
	RenderPage(recorder, htmxRequest(), componentOf("<p>fragment</p>"), nil, TitleTag("Tasks & Chores"))

	body := recorder.Body.String()
	if !strings.HasPrefix(body, "<title>Tasks &amp; Chores</title>") {
		t.Fatalf("body = %q, want prepended title", body)
	}
}

func TestRenderPageKeepsExistingTitle(t *testing.T) {
	t.Parallel()

	recorder := httptest.NewRecorder()
	RenderPage(recorder, htmxRequest(), componentOf("<title>Kept</title><p>x</p>"), nil, TitleTag("Ignored"))

	if strings.Contains(recorder.Body.String(), "Ignored") {
		t.Fatalf("body = %q, want original title kept", recorder.Body.String())
	}
}

func TestTitleTag(t *testing.T) {
	t.Parallel()

	if got := TitleTag("  "); got != "" {
		t.Fatalf("TitleTag(blank) = %q", got)
	}
	if got := TitleTag("a < b"); got != "<title>a &lt; b</title>" {
		t.Fatalf("TitleTag() = %q", got)
	}
}

// Package htmx renders pages for both full-page and fragment requests.
package htmx

import (
	"bytes"
	"html"
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

// RequestHeader is the HTMX request header used to detect partial updates.
const RequestHeader = "HX-Request"

// captureWriter buffers component rendering for HTMX responses so the
// fragment can be post-processed before reaching the client.
type captureWriter struct {
	header      http.Header
	statusCode  int
	body        bytes.Buffer
	wroteHeader bool
}

func newCaptureWriter() *captureWriter {
	return &captureWriter{
		header:     make(http.Header),
		statusCode: http.StatusOK,
	}
}

func (w *captureWriter) Header() http.Header {
	return w.header
}

func (w *captureWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.statusCode = status
}

func (w *captureWriter) Write(body []byte) (int, error) {
	return w.body.Write(body)
}

// IsHTMXRequest reports whether the request was initiated by HTMX.
func IsHTMXRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	return strings.EqualFold(r.Header.Get(RequestHeader), "true")
}

// TitleTag formats an escaped `<title>` element.
func TitleTag(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	return "<title>" + html.EscapeString(title) + "</title>"
}

func prependTitleIfMissing(responseBody []byte, title string) []byte {
	if strings.Contains(strings.ToLower(string(responseBody)), "<title") {
		return responseBody
	}
	if strings.TrimSpace(title) == "" {
		return responseBody
	}
	return append([]byte(title), responseBody...)
}

func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		if strings.EqualFold(key, "Set-Cookie") {
			for _, value := range values {
				dst.Add(key, value)
			}
			continue
		}
		// Single-valued headers must not accumulate duplicates when copied
		// from the capture buffer.
		for _, value := range values {
			dst.Set(key, value)
		}
	}
}

// RenderPage renders a page for normal or HTMX requests.
//
// fragment serves HTMX responses while full serves non-HTMX responses.
// When fragment is nil the `<main>` element of full is extracted for
// HTMX swaps, keeping one source of truth for the page body.
func RenderPage(w http.ResponseWriter, r *http.Request, fragment templ.Component, full templ.Component, htmxTitle string) {
	if IsHTMXRequest(r) {
		target := fragment
		extractMain := false
		if target == nil {
			target = full
			extractMain = true
		}
		if target == nil {
			return
		}
		capture := newCaptureWriter()
		templ.Handler(target).ServeHTTP(capture, r)

		body := capture.body.Bytes()
		if extractMain {
			if mainContent, ok := mainElementContent(body); ok {
				body = mainContent
			}
		}

		body = prependTitleIfMissing(body, htmxTitle)
		copyHeaders(w.Header(), capture.Header())
		if capture.statusCode != http.StatusOK {
			w.WriteHeader(capture.statusCode)
		}
		_, _ = w.Write(body)
		return
	}

	if full == nil {
		full = fragment
	}
	if full == nil {
		return
	}
	templ.Handler(full).ServeHTTP(w, r)
}

func mainElementContent(body []byte) ([]byte, bool) {
	start := bytes.Index(body, []byte("<main"))
	if start < 0 {
		return nil, false
	}
	openClose := bytes.Index(body[start:], []byte(">"))
	if openClose < 0 {
		return nil, false
	}
	contentStart := start + openClose + 1
	end := bytes.Index(body[contentStart:], []byte("</main>"))
	if end < 0 {
		return nil, false
	}
	return body[contentStart : contentStart+end], true
}

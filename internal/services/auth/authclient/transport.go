package authclient

import (
	"net/http"
	"net/url"
	"strings"
)

// TokenSource supplies the current bearer token for outgoing requests.
// TokenHolder satisfies it.
type TokenSource interface {
	Token() string
}

// BearerTransport is an http.RoundTripper that attaches
// "Authorization: Bearer <token>" to requests whose URL sits inside the
// configured API base URL. Requests to any other host or path prefix
// pass through untouched so tokens never leak to third parties.
type BearerTransport struct {
	base     http.RoundTripper
	apiBase  *url.URL
	source   TokenSource
	parseErr error
}

// NewBearerTransport wraps base (nil means http.DefaultTransport) with
// bearer injection scoped to apiBaseURL.
func NewBearerTransport(base http.RoundTripper, apiBaseURL string, source TokenSource) *BearerTransport {
	parsed, err := url.Parse(strings.TrimSpace(apiBaseURL))
	return &BearerTransport{
		base:     base,
		apiBase:  parsed,
		source:   source,
		parseErr: err,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	if !t.inScope(req.URL) {
		return base.RoundTrip(req)
	}
	tokenString := ""
	if t.source != nil {
		tokenString = t.source.Token()
	}
	if tokenString == "" {
		return base.RoundTrip(req)
	}
	// Per RoundTripper contract the request must not be mutated.
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+tokenString)
	return base.RoundTrip(clone)
}

// inScope reports whether target lives inside the API base URL.
func (t *BearerTransport) inScope(target *url.URL) bool {
	if t == nil || t.parseErr != nil || t.apiBase == nil || target == nil {
		return false
	}
	if t.apiBase.Scheme != "" && !strings.EqualFold(target.Scheme, t.apiBase.Scheme) {
		return false
	}
	if !strings.EqualFold(target.Host, t.apiBase.Host) {
		return false
	}
	prefix := strings.TrimRight(t.apiBase.Path, "/")
	if prefix == "" {
		return true
	}
	path := target.Path
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

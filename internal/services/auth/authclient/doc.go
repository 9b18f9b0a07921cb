// Package authclient is the SDK other services use to talk to the
// identity provider: a JSON API client, a concurrency-safe token
// holder, and a bearer transport scoped to the API base URL.
package authclient

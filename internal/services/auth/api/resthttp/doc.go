// Package resthttp serves the identity JSON API: sessions, registration,
// ID tokens, password resets, and passkey ceremonies. The web service
// talks to it through the authclient package.
package resthttp

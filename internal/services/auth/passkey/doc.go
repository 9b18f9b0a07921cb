// Package passkey holds WebAuthn relying-party configuration shared by
// the identity API handlers and the web settings pages.
package passkey

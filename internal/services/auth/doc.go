// Package auth defines the identity boundary used across the platform.
//
// It is the single place that owns user lifecycle, authentication factors,
// and token issuance so other services can depend on stable user IDs and
// authorization checks instead of re-implementing identity rules.
//
// Subpackages:
//   - app: auth server wiring and lifecycle
//   - api/resthttp: JSON HTTP API handlers
//   - authclient: Go client SDK consumed by the web service and tools
//   - token: ed25519 ID token issue/verify
//   - storage: persistence interfaces and SQLite implementations
//   - user: user domain model and helpers
package auth

// Package server wires the identity provider's storage, token signer,
// JSON API, and health listener into a runnable service.
package server

// Package request models vacation, absence, and shift-swap petitions and
// the manager approval flow that decides them.
package request

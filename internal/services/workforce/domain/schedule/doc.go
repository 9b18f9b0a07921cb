// Package schedule models assigned shifts and the confirm/decline flow
// employees use to answer them.
package schedule

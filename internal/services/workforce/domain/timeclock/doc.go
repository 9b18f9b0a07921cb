// Package timeclock models punch-clock entries: sign-in, pause, resume,
// sign-out, and elapsed accounting that never goes negative.
package timeclock

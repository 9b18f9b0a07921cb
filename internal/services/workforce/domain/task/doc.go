// Package task models assignable work items and their open → in_progress
// → done lifecycle.
package task

// Package storage defines the persistence contracts for the workforce
// service: roster, shifts, punch-clock entries, tasks, requests, and
// notifications.
package storage

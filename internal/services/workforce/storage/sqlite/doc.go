// Package sqlite implements workforce storage over a single SQLite file.
package sqlite

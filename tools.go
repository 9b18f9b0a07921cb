//go:build tools
// +build tools

// Package tools pins command dependencies that are run with go run
// but never imported by the services.
package tools

import (
	_ "github.com/nikolaydubina/go-cover-treemap"
)

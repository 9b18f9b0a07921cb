// Package main generates ed25519 token signing keys.
package main

import (
	"flag"
	"os"

	"github.com/PedroJIzGar/timelogic/internal/platform/config"
	"github.com/PedroJIzGar/timelogic/internal/tools/signingkey"
)

func main() {
	cfg, err := signingkey.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	if err := signingkey.Run(cfg, os.Stdout, nil); err != nil {
		config.Exitf("generate key: %v", err)
	}
}

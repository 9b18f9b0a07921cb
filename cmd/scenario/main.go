// Package main replays Lua punch-clock scenarios against a local
// workforce database.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/PedroJIzGar/timelogic/internal/platform/config"
	"github.com/PedroJIzGar/timelogic/internal/tools/scenario"
)

func main() {
	cfg, err := scenario.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := scenario.Run(ctx, cfg, os.Stdout); err != nil {
		config.Exitf("scenario: %v", err)
	}
}

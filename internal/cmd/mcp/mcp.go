// Package mcp parses MCP server flags and runs the stdio tool server.
package mcp

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/PedroJIzGar/timelogic/internal/platform/cmd"
	"github.com/PedroJIzGar/timelogic/internal/services/mcp/service"
	workforcesqlite "github.com/PedroJIzGar/timelogic/internal/services/workforce/storage/sqlite"
)

// Config holds MCP command configuration.
type Config struct {
	DBPath string `env:"TIMELOGIC_WORKFORCE_DB_PATH" envDefault:"data/workforce.db"`
}

// ParseConfig loads environment configuration and applies flag overrides.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "workforce SQLite database path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Run serves workforce tools over stdio until ctx ends. The store is
// only read from; tool handlers have no mutating surface.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		store, err := workforcesqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open workforce sqlite store: %w", err)
		}
		defer store.Close()

		if err := service.RunStdio(ctx, store, nil); err != nil {
			return fmt.Errorf("serve mcp: %w", err)
		}
		return nil
	})
}

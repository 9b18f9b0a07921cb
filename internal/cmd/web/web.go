// Package web parses web server flags and runs the dashboard service.
package web

import (
	"context"
	"flag"
	"fmt"

	"github.com/PedroJIzGar/timelogic/internal/services/web"
)

// ParseConfig loads environment configuration and applies flag overrides.
func ParseConfig(fs *flag.FlagSet, args []string) (web.Config, error) {
	cfg, err := web.LoadConfig()
	if err != nil {
		return web.Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.AuthBaseURL, "auth-base-url", cfg.AuthBaseURL, "identity service base URL")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "workforce SQLite database path")
	fs.BoolVar(&cfg.TrustForwardedProto, "trust-forwarded-proto", cfg.TrustForwardedProto, "trust X-Forwarded-Proto from the front proxy")
	if err := fs.Parse(args); err != nil {
		return web.Config{}, err
	}

	return cfg, nil
}

// Run starts the dashboard web server.
func Run(ctx context.Context, cfg web.Config) error {
	server, err := web.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("init web server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve web: %w", err)
	}
	return nil
}

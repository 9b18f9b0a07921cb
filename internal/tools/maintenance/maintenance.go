// Package maintenance prunes expired identity records and checks
// service health for local and deploy-time operations.
package maintenance

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/PedroJIzGar/timelogic/internal/platform/discovery"
	platformgrpc "github.com/PedroJIzGar/timelogic/internal/platform/grpc"
	"github.com/PedroJIzGar/timelogic/internal/platform/timeouts"
	authsqlite "github.com/PedroJIzGar/timelogic/internal/services/auth/storage/sqlite"
)

// Config holds maintenance command configuration.
type Config struct {
	AuthDBPath      string
	AuthAddr        string
	WorkerAddr      string
	Timeout         time.Duration
	OutboxRetention time.Duration
	Prune           bool
	Health          bool
}

type envConfig struct {
	AuthDBPath      string        `env:"TIMELOGIC_AUTH_DB_PATH" envDefault:"data/auth.db"`
	AuthAddr        string        `env:"TIMELOGIC_AUTH_GRPC_ADDR"`
	WorkerAddr      string        `env:"TIMELOGIC_WORKER_GRPC_ADDR"`
	Timeout         time.Duration `env:"TIMELOGIC_MAINTENANCE_TIMEOUT" envDefault:"2m"`
	OutboxRetention time.Duration `env:"TIMELOGIC_MAINTENANCE_OUTBOX_RETENTION" envDefault:"168h"`
}

// ParseConfig parses environment defaults and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var envCfg envConfig
	if err := env.Parse(&envCfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg := Config{
		AuthDBPath:      envCfg.AuthDBPath,
		AuthAddr:        discovery.OrDefaultGRPCAddr(envCfg.AuthAddr, discovery.ServiceAuth),
		WorkerAddr:      discovery.OrDefaultGRPCAddr(envCfg.WorkerAddr, discovery.ServiceWorker),
		Timeout:         envCfg.Timeout,
		OutboxRetention: envCfg.OutboxRetention,
	}

	fs.StringVar(&cfg.AuthDBPath, "auth-db-path", cfg.AuthDBPath, "auth SQLite database path")
	fs.StringVar(&cfg.AuthAddr, "auth-addr", cfg.AuthAddr, "auth gRPC health address")
	fs.StringVar(&cfg.WorkerAddr, "worker-addr", cfg.WorkerAddr, "worker gRPC health address")
	fs.BoolVar(&cfg.Prune, "prune", false, "delete expired sessions, stale reset tokens, and old dispatched outbox rows")
	fs.BoolVar(&cfg.Health, "health", false, "wait for each service's gRPC health endpoint")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	fs.DurationVar(&cfg.OutboxRetention, "outbox-retention", cfg.OutboxRetention, "age before dispatched outbox rows are pruned")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the maintenance command.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if !cfg.Prune && !cfg.Health {
		return errors.New("nothing to do: pass -prune and/or -health")
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	if cfg.Prune {
		store, err := authsqlite.Open(cfg.AuthDBPath)
		if err != nil {
			return fmt.Errorf("open auth sqlite store: %w", err)
		}
		if err := prune(ctx, cfg, store, out, time.Now); err != nil {
			_ = store.Close()
			return err
		}
		if err := store.Close(); err != nil {
			return fmt.Errorf("close auth sqlite store: %w", err)
		}
	}

	if cfg.Health {
		if err := waitForServices(ctx, cfg, out); err != nil {
			return err
		}
	}
	return nil
}

func prune(ctx context.Context, cfg Config, store pruneStore, out io.Writer, clock func() time.Time) error {
	now := clock().UTC()

	sessions, err := store.DeleteExpiredWebSessions(ctx, now)
	if err != nil {
		return fmt.Errorf("prune web sessions: %w", err)
	}
	resets, err := store.DeleteStalePasswordResets(ctx, now)
	if err != nil {
		return fmt.Errorf("prune password resets: %w", err)
	}
	if err := store.DeleteExpiredPasskeySessions(ctx, now); err != nil {
		return fmt.Errorf("prune passkey sessions: %w", err)
	}
	retention := cfg.OutboxRetention
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	outbox, err := store.DeleteDispatchedOutboxEvents(ctx, now.Add(-retention))
	if err != nil {
		return fmt.Errorf("prune outbox events: %w", err)
	}

	fmt.Fprintf(out, "pruned %d web sessions, %d password resets, %d outbox events\n", sessions, resets, outbox)
	return nil
}

func waitForServices(ctx context.Context, cfg Config, out io.Writer) error {
	targets := []struct {
		name string
		addr string
	}{
		{name: discovery.ServiceAuth, addr: cfg.AuthAddr},
		{name: discovery.ServiceWorker, addr: cfg.WorkerAddr},
	}
	for _, target := range targets {
		logf := func(format string, args ...any) {
			fmt.Fprintf(out, target.name+": "+format+"\n", args...)
		}
		conn, err := platformgrpc.DialWithHealth(ctx, nil, target.addr, timeouts.GRPCDial, logf, platformgrpc.DefaultClientDialOptions()...)
		if err != nil {
			return fmt.Errorf("health check %s at %s: %w", target.name, target.addr, err)
		}
		if err := conn.Close(); err != nil {
			return fmt.Errorf("close %s connection: %w", target.name, err)
		}
		fmt.Fprintf(out, "%s: healthy at %s\n", target.name, target.addr)
	}
	return nil
}

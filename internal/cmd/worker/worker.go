// Package worker parses worker flags and runs the outbox dispatch service.
package worker

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/PedroJIzGar/timelogic/internal/platform/cmd"
	"github.com/PedroJIzGar/timelogic/internal/services/worker/app"
)

// Config carries worker runtime settings sourced from env and flags.
type Config struct {
	Port            int           `env:"TIMELOGIC_WORKER_PORT" envDefault:"8089"`
	AuthDBPath      string        `env:"TIMELOGIC_AUTH_DB_PATH" envDefault:"data/auth.db"`
	WorkforceDBPath string        `env:"TIMELOGIC_WORKFORCE_DB_PATH" envDefault:"data/workforce.db"`
	WorkerDBPath    string        `env:"TIMELOGIC_WORKER_DB_PATH" envDefault:"data/worker.db"`
	MailSpoolDir    string        `env:"TIMELOGIC_WORKER_MAIL_SPOOL_DIR" envDefault:"data/mail"`
	WebBaseURL      string        `env:"TIMELOGIC_WORKER_WEB_BASE_URL" envDefault:"http://localhost:8080"`
	Consumer        string        `env:"TIMELOGIC_WORKER_CONSUMER" envDefault:"worker"`
	PollInterval    time.Duration `env:"TIMELOGIC_WORKER_POLL_INTERVAL" envDefault:"1s"`
	LeaseTTL        time.Duration `env:"TIMELOGIC_WORKER_LEASE_TTL" envDefault:"30s"`
	MaxAttempts     int           `env:"TIMELOGIC_WORKER_MAX_ATTEMPTS" envDefault:"8"`
}

// ParseConfig loads environment configuration and applies flag overrides.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.IntVar(&cfg.Port, "port", cfg.Port, "gRPC health listen port")
	fs.StringVar(&cfg.AuthDBPath, "auth-db-path", cfg.AuthDBPath, "auth SQLite database path")
	fs.StringVar(&cfg.WorkforceDBPath, "workforce-db-path", cfg.WorkforceDBPath, "workforce SQLite database path")
	fs.StringVar(&cfg.WorkerDBPath, "worker-db-path", cfg.WorkerDBPath, "worker SQLite database path")
	fs.StringVar(&cfg.MailSpoolDir, "mail-spool-dir", cfg.MailSpoolDir, "directory for outgoing mail files")
	fs.StringVar(&cfg.WebBaseURL, "web-base-url", cfg.WebBaseURL, "dashboard base URL used in mail links")
	fs.StringVar(&cfg.Consumer, "consumer", cfg.Consumer, "outbox lease owner name")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "outbox poll interval")
	fs.DurationVar(&cfg.LeaseTTL, "lease-ttl", cfg.LeaseTTL, "outbox event lease duration")
	fs.IntVar(&cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "delivery attempts before an event is dead")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Run starts the worker dispatch loop with telemetry configured.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceWorker, func(ctx context.Context) error {
		err := app.Run(ctx, app.RuntimeConfig{
			Port:            cfg.Port,
			AuthDBPath:      cfg.AuthDBPath,
			WorkforceDBPath: cfg.WorkforceDBPath,
			WorkerDBPath:    cfg.WorkerDBPath,
			MailSpoolDir:    cfg.MailSpoolDir,
			WebBaseURL:      cfg.WebBaseURL,
			Consumer:        cfg.Consumer,
			PollInterval:    cfg.PollInterval,
			LeaseTTL:        cfg.LeaseTTL,
			MaxAttempts:     cfg.MaxAttempts,
		})
		if err != nil {
			return fmt.Errorf("run worker: %w", err)
		}
		return nil
	})
}

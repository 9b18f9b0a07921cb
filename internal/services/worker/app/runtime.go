package app

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	authstorage "github.com/PedroJIzGar/timelogic/internal/services/auth/storage"
	authsqlite "github.com/PedroJIzGar/timelogic/internal/services/auth/storage/sqlite"
	"github.com/PedroJIzGar/timelogic/internal/services/worker/domain"
	workerstorage "github.com/PedroJIzGar/timelogic/internal/services/worker/storage"
	workersqlite "github.com/PedroJIzGar/timelogic/internal/services/worker/storage/sqlite"
	workforcesqlite "github.com/PedroJIzGar/timelogic/internal/services/workforce/storage/sqlite"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// RuntimeConfig controls worker startup, dependencies, and loop behavior.
type RuntimeConfig struct {
	Port            int
	AuthDBPath      string
	WorkforceDBPath string
	WorkerDBPath    string
	MailSpoolDir    string
	WebBaseURL      string
	Consumer        string
	PollInterval    time.Duration
	LeaseTTL        time.Duration
	BatchSize       int
	MaxAttempts     int
	RetryBackoff    time.Duration
	RetryMaxDelay   time.Duration
}

const (
	defaultWorkerPort   = 8089
	defaultWorkerDB     = "data/worker.db"
	defaultAuthDB       = "data/auth.db"
	defaultWorkforceDB  = "data/workforce.db"
	defaultMailSpool    = "data/mail"
	defaultWebBaseURL   = "http://localhost:8080"
	workerHealthService = "worker.runtime"
)

// Run starts worker runtime dependencies and the background dispatch loop.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Port <= 0 {
		cfg.Port = defaultWorkerPort
	}
	if strings.TrimSpace(cfg.AuthDBPath) == "" {
		cfg.AuthDBPath = defaultAuthDB
	}
	if strings.TrimSpace(cfg.WorkforceDBPath) == "" {
		cfg.WorkforceDBPath = defaultWorkforceDB
	}
	if strings.TrimSpace(cfg.WorkerDBPath) == "" {
		cfg.WorkerDBPath = defaultWorkerDB
	}
	if strings.TrimSpace(cfg.MailSpoolDir) == "" {
		cfg.MailSpoolDir = defaultMailSpool
	}
	if strings.TrimSpace(cfg.WebBaseURL) == "" {
		cfg.WebBaseURL = defaultWebBaseURL
	}

	for _, path := range []string{cfg.AuthDBPath, cfg.WorkforceDBPath, cfg.WorkerDBPath} {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create storage dir: %w", err)
			}
		}
	}

	authStore, err := authsqlite.Open(cfg.AuthDBPath)
	if err != nil {
		return fmt.Errorf("open auth sqlite store: %w", err)
	}
	defer func() {
		if closeErr := authStore.Close(); closeErr != nil {
			log.Printf("close auth sqlite store: %v", closeErr)
		}
	}()

	workforceStore, err := workforcesqlite.Open(cfg.WorkforceDBPath)
	if err != nil {
		return fmt.Errorf("open workforce sqlite store: %w", err)
	}
	defer func() {
		if closeErr := workforceStore.Close(); closeErr != nil {
			log.Printf("close workforce sqlite store: %v", closeErr)
		}
	}()

	workerStore, err := workersqlite.Open(cfg.WorkerDBPath)
	if err != nil {
		return fmt.Errorf("open worker sqlite store: %w", err)
	}
	defer func() {
		if closeErr := workerStore.Close(); closeErr != nil {
			log.Printf("close worker sqlite store: %v", closeErr)
		}
	}()

	loopConfig := Config{
		Consumer:      cfg.Consumer,
		PollInterval:  cfg.PollInterval,
		LeaseTTL:      cfg.LeaseTTL,
		BatchSize:     cfg.BatchSize,
		MaxAttempts:   cfg.MaxAttempts,
		RetryBackoff:  cfg.RetryBackoff,
		RetryMaxDelay: cfg.RetryMaxDelay,
	}.normalized()

	workerLoop := New(
		authStore,
		newAttemptStoreRecorder(workerStore, loopConfig.Consumer),
		map[string]EventHandler{
			authstorage.EventPasswordResetRequested: domain.NewPasswordResetMailer(cfg.MailSpoolDir, cfg.WebBaseURL, workforceStore, nil),
			authstorage.EventSignupCompleted:        domain.NewSignupWelcomeHandler(workforceStore, nil),
		},
		loopConfig,
		nil,
	)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on worker port %d: %w", cfg.Port, err)
	}
	defer listener.Close()

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(workerHealthService, grpc_health_v1.HealthCheckResponse_SERVING)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(listener)
	}()
	defer func() {
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		<-serveErr
	}()

	log.Printf("worker server listening at %v", listener.Addr())
	return workerLoop.Run(ctx)
}

type attemptStoreRecorder struct {
	store    workerstorage.AttemptStore
	consumer string
}

func newAttemptStoreRecorder(store workerstorage.AttemptStore, consumer string) *attemptStoreRecorder {
	normalizedConsumer := strings.TrimSpace(consumer)
	if normalizedConsumer == "" {
		normalizedConsumer = defaultConsumer
	}
	return &attemptStoreRecorder{store: store, consumer: normalizedConsumer}
}

func (r *attemptStoreRecorder) RecordAttempt(ctx context.Context, attempt Attempt) error {
	if r == nil || r.store == nil {
		return nil
	}
	return r.store.RecordAttempt(ctx, workerstorage.AttemptRecord{
		EventID:      attempt.EventID,
		EventType:    attempt.EventType,
		Consumer:     r.consumer,
		Outcome:      attempt.Outcome,
		AttemptCount: attempt.AttemptCount,
		LastError:    attempt.Error,
		CreatedAt:    attempt.CreatedAt,
	})
}

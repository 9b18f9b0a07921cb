package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/PedroJIzGar/timelogic/internal/platform/timeouts"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/api/resthttp"
	authsqlite "github.com/PedroJIzGar/timelogic/internal/services/auth/storage/sqlite"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/token"
)

const cleanupInterval = 5 * time.Minute

// Server hosts the identity provider: the JSON API over HTTP and a
// gRPC health listener for ops probes.
type Server struct {
	listener     net.Listener
	grpcServer   *grpc.Server
	health       *health.Server
	store        *authsqlite.Store
	httpListener net.Listener
	httpServer   *http.Server
}

// New creates a configured auth server listening on the provided port.
func New(port int, httpAddr string) (*Server, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", port, err)
	}
	store, err := openAuthStore()
	if err != nil {
		_ = listener.Close()
		return nil, err
	}
	signer, err := loadSigner()
	if err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, err
	}

	var httpListener net.Listener
	var httpServer *http.Server
	if strings.TrimSpace(httpAddr) != "" {
		httpListener, err = net.Listen("tcp", httpAddr)
		if err != nil {
			_ = listener.Close()
			_ = store.Close()
			return nil, fmt.Errorf("listen on http addr %s: %w", httpAddr, err)
		}
		mux := http.NewServeMux()
		resthttp.NewService(store, signer).RegisterRoutes(mux)
		httpServer = &http.Server{Handler: mux, ReadHeaderTimeout: timeouts.ReadHeader}
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:     listener,
		grpcServer:   grpcServer,
		health:       healthServer,
		store:        store,
		httpListener: httpListener,
		httpServer:   httpServer,
	}, nil
}

// Addr returns the gRPC listener address for the auth server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// HTTPAddr returns the JSON API listener address, if one is configured.
func (s *Server) HTTPAddr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// Run creates and serves an auth server until the context ends.
func Run(ctx context.Context, port int, httpAddr string) error {
	authServer, err := New(port, httpAddr)
	if err != nil {
		return err
	}
	return authServer.Serve(ctx)
}

// Serve starts the auth server and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	serverCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.closeStore()

	s.startCleanup(serverCtx, cleanupInterval)

	log.Printf("auth server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	httpErr := make(chan error, 1)
	if s.httpServer != nil && s.httpListener != nil {
		log.Printf("auth HTTP server listening at %v", s.httpListener.Addr())
		go func() {
			httpErr <- s.httpServer.Serve(s.httpListener)
		}()
	}

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}

	shutdownGRPC := func() {
		if s.health != nil {
			s.health.Shutdown()
		}
		s.grpcServer.GracefulStop()
	}
	shutdownHTTP := func() {
		if s.httpServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
			defer cancel()
			_ = s.httpServer.Shutdown(shutdownCtx)
		}
	}

	select {
	case <-ctx.Done():
		shutdownGRPC()
		shutdownHTTP()
		err := <-serveErr
		return handleErr(err)
	case err := <-serveErr:
		shutdownHTTP()
		return handleErr(err)
	case err := <-httpErr:
		if err == http.ErrServerClosed {
			return nil
		}
		shutdownGRPC()
		grpcErr := <-serveErr
		if handled := handleErr(grpcErr); handled != nil {
			return handled
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}
}

// startCleanup prunes expired sessions and stale reset tokens on a
// timer so transient identity artifacts never accumulate.
func (s *Server) startCleanup(ctx context.Context, interval time.Duration) {
	if s == nil || s.store == nil || interval <= 0 {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := time.Now().UTC()
				if _, err := s.store.DeleteExpiredWebSessions(ctx, now); err != nil {
					log.Printf("prune web sessions: %v", err)
				}
				if _, err := s.store.DeleteStalePasswordResets(ctx, now); err != nil {
					log.Printf("prune password resets: %v", err)
				}
				if err := s.store.DeleteExpiredPasskeySessions(ctx, now); err != nil {
					log.Printf("prune passkey sessions: %v", err)
				}
			}
		}
	}()
}

func openAuthStore() (*authsqlite.Store, error) {
	path := strings.TrimSpace(os.Getenv("TIMELOGIC_AUTH_DB_PATH"))
	if path == "" {
		path = filepath.Join("data", "auth.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	store, err := authsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open auth sqlite store: %w", err)
	}
	return store, nil
}

func loadSigner() (*token.Signer, error) {
	encoded := strings.TrimSpace(os.Getenv("TIMELOGIC_TOKEN_SIGNING_KEY"))
	if encoded == "" {
		return nil, fmt.Errorf("TIMELOGIC_TOKEN_SIGNING_KEY is required; generate one with the signing-key command")
	}
	signer, err := token.NewSignerFromEncoded(encoded)
	if err != nil {
		return nil, fmt.Errorf("load token signing key: %w", err)
	}
	return signer, nil
}

func (s *Server) closeStore() {
	if s == nil {
		return
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close auth store: %v", err)
		}
	}
}

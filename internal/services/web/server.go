// Package web hosts the workforce dashboard: module composition, the
// shared dependency wiring, and the HTTP server lifecycle.
package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/PedroJIzGar/timelogic/internal/platform/config"
	"github.com/PedroJIzGar/timelogic/internal/platform/timeouts"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/authclient"
	"github.com/PedroJIzGar/timelogic/internal/services/web/app"
	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/web/modules"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/authctx"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/httpx"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/requestmeta"
	"github.com/PedroJIzGar/timelogic/internal/services/web/routepath"
	"github.com/PedroJIzGar/timelogic/internal/services/web/static"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage/sqlite"
)

const shutdownTimeout = timeouts.Shutdown

// Config holds the web server configuration.
type Config struct {
	HTTPAddr            string `env:"TIMELOGIC_WEB_HTTP_ADDR" envDefault:"localhost:8080"`
	AuthBaseURL         string `env:"TIMELOGIC_WEB_AUTH_BASE_URL" envDefault:"http://localhost:8084"`
	DBPath              string `env:"TIMELOGIC_WORKFORCE_DB_PATH" envDefault:"data/workforce.db"`
	TrustForwardedProto bool   `env:"TIMELOGIC_WEB_TRUST_FORWARDED_PROTO"`
}

// LoadConfig reads configuration from the environment, with an optional
// .env file for local development.
func LoadConfig() (Config, error) {
	if err := config.LoadDotEnv(""); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Server is the dashboard HTTP server.
type Server struct {
	cfg     Config
	store   *sqlite.Store
	handler http.Handler
}

// NewServer opens the workforce store, wires module dependencies, and
// composes the site handler.
func NewServer(cfg Config) (*Server, error) {
	store, err := openWorkforceStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	authClient := authclient.New(cfg.AuthBaseURL)
	resolver := newPrincipalResolver(authClient, store)

	deps := module.Dependencies{
		Auth:            authClient,
		Employees:       store,
		Shifts:          store,
		Timeclock:       store,
		Tasks:           store,
		Requests:        store,
		Notifications:   store,
		ResolveViewer:   resolver.Viewer,
		ResolveLanguage: resolver.Language,
		SchemePolicy:    requestmeta.SchemePolicy{TrustForwardedProto: cfg.TrustForwardedProto},
		Clock:           time.Now,
	}

	handler, err := NewHandler(deps, resolver)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &Server{cfg: cfg, store: store, handler: handler}, nil
}

// NewHandler composes the full site handler from the default module
// groups plus static assets and the shared middleware chain.
func NewHandler(deps module.Dependencies, resolver *principalResolver) (http.Handler, error) {
	composed, err := app.Compose(app.ComposeInput{
		Dependencies:     deps,
		AuthRequired:     authctx.ValidatedSessionAuth(resolver.ValidateSession),
		PublicModules:    modules.DefaultPublicModules(),
		ProtectedModules: modules.DefaultProtectedModules(),
	})
	if err != nil {
		return nil, fmt.Errorf("compose modules: %w", err)
	}

	root := http.NewServeMux()
	root.Handle(routepath.StaticPrefix, http.StripPrefix(routepath.StaticPrefix, http.FileServerFS(static.FS)))
	root.Handle("/", composed)

	return httpx.Chain(root,
		httpx.RecoverPanic(),
		httpx.RequestID(),
		httpx.RequestLogger(),
		resolver.Middleware(),
	), nil
}

// Handler returns the composed site handler.
func (s *Server) Handler() http.Handler {
	if s == nil {
		return nil
	}
	return s.handler
}

// ListenAndServe serves the site until the context ends, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	listener, err := net.Listen("tcp", s.cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.HTTPAddr, err)
	}
	httpServer := &http.Server{Handler: s.handler, ReadHeaderTimeout: timeouts.ReadHeader}

	log.Printf("web server listening at %v", listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown web server: %w", err)
		}
		<-serveErr
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve web: %w", err)
	}
}

// Close releases the workforce store.
func (s *Server) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Close()
}

func openWorkforceStore(path string) (*sqlite.Store, error) {
	if path == "" {
		path = filepath.Join("data", "workforce.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workforce store: %w", err)
	}
	return store, nil
}

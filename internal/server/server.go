// ABOUTME: Server wiring the board store, layout manager and API routers together
// ABOUTME: Runs the HTTP API and the gRPC health service with graceful shutdown

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"

	"github.com/2389/homarr-board/internal/auth"
	"github.com/2389/homarr-board/internal/boardio"
	"github.com/2389/homarr-board/internal/broadcast"
	"github.com/2389/homarr-board/internal/config"
	"github.com/2389/homarr-board/internal/dedupe"
	"github.com/2389/homarr-board/internal/layout"
	"github.com/2389/homarr-board/internal/locale"
	"github.com/2389/homarr-board/internal/notebook"
	"github.com/2389/homarr-board/internal/store"
)

// Server is the homarr-board control server.
type Server struct {
	config *config.Config
	logger *slog.Logger

	store       store.ConfigStore
	raw         store.ConfigStore
	broadcaster *broadcast.Broadcaster
	styles      *layout.StyleSheet
	layouts     *layout.Manager
	notes       *notebook.Service
	locales     *locale.Resolver
	verifier    *auth.JWTVerifier

	httpServer *http.Server
	grpcServer *grpc.Server
	health     *health.Server
}

// New opens the SQLite store named by cfg and builds a Server on it.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	srv, err := NewWithStore(cfg, s, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return srv, nil
}

// NewWithStore builds a Server on an existing store. The server owns the store
// and closes it on Shutdown.
func NewWithStore(cfg *config.Config, s store.ConfigStore, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	b := broadcast.New(logger)
	notifying := store.WithNotifier(s, b)
	styles := layout.NewStyleSheet()

	srv := &Server{
		config:      cfg,
		logger:      logger.With("component", "server"),
		store:       notifying,
		raw:         s,
		broadcaster: b,
		styles:      styles,
		layouts: layout.NewManager(layout.ManagerConfig{
			Store:     notifying,
			Publisher: styles,
			Deduper:   dedupe.NewWindow(cfg.Boards.EventDedupeTTL, cfg.Boards.EventDedupeSize),
			Logger:    logger,
		}),
		notes:   notebook.NewService(notifying, logger),
		locales: locale.NewResolver(cfg.Locale.Default),
	}

	if cfg.Auth.JWTSecret != "" {
		v, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
		if err != nil {
			return nil, fmt.Errorf("creating token verifier: %w", err)
		}
		srv.verifier = v
	} else {
		srv.logger.Warn("auth.jwt_secret is empty; API requests run as the local admin")
	}

	srv.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srv.health = health.NewServer()
	srv.grpcServer = grpc.NewServer(
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second,
			Timeout: 10 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             10 * time.Second,
			PermitWithoutStream: true,
		}),
	)
	healthpb.RegisterHealthServer(srv.grpcServer, srv.health)

	return srv, nil
}

// Handler returns the HTTP handler serving health checks and the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/ready", s.handleReady)

	api := http.NewServeMux()
	for _, r := range s.routers() {
		r.register(api)
		s.logger.Debug("registered router", "router", r.Name, "routes", len(r.Routes))
	}
	mux.Handle("/api/", s.authMiddleware()(api))
	return mux
}

// authMiddleware verifies bearer tokens when a secret is configured.
func (s *Server) authMiddleware() func(http.Handler) http.Handler {
	if s.verifier == nil {
		return auth.LocalMiddleware()
	}
	return auth.HTTPAuthMiddleware(s.verifier, s.logger)
}

// Seed creates the default board and imports the seed directory.
func (s *Server) Seed(ctx context.Context) error {
	created, err := boardio.EnsureBoard(ctx, s.store, s.config.Boards.DefaultBoard, s.locales.Default().Locale)
	if err != nil {
		return fmt.Errorf("creating default board: %w", err)
	}
	if created {
		s.logger.Info("created default board", "board", s.config.Boards.DefaultBoard)
	}
	if s.config.Boards.SeedDir == "" {
		return nil
	}
	seeded, err := boardio.SeedDir(ctx, s.store, s.config.Boards.SeedDir, s.logger)
	if err != nil {
		return fmt.Errorf("seeding boards: %w", err)
	}
	if len(seeded) > 0 {
		s.logger.Info("seeded boards", "count", len(seeded))
	}
	return nil
}

// Run seeds the store and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Seed(ctx); err != nil {
		return err
	}

	lc := net.ListenConfig{}
	grpcLn, err := lc.Listen(ctx, "tcp", s.config.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listening on gRPC addr: %w", err)
	}
	httpLn, err := lc.Listen(ctx, "tcp", s.config.Server.HTTPAddr)
	if err != nil {
		_ = grpcLn.Close()
		return fmt.Errorf("listening on HTTP addr: %w", err)
	}

	errCh := s.serve(grpcLn, httpLn)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	shutdownErr := s.Shutdown(shutdownCtx)
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// serve starts both servers in the background. Serve errors are sent on the
// returned channel.
func (s *Server) serve(grpcLn, httpLn net.Listener) <-chan error {
	errCh := make(chan error, 2)
	go func() {
		s.logger.Info("gRPC server listening", "addr", grpcLn.Addr().String())
		if err := s.grpcServer.Serve(grpcLn); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("gRPC server: %w", err)
		}
	}()
	go func() {
		s.logger.Info("HTTP server listening", "addr", httpLn.Addr().String())
		if err := s.httpServer.Serve(httpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()
	return errCh
}

// shutdownGRPCServer gracefully stops the gRPC server or force-stops on context cancel.
func (s *Server) shutdownGRPCServer(ctx context.Context) {
	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		s.grpcServer.Stop()
	}
}

// Shutdown stops both servers and releases the store.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	s.health.Shutdown()

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}
	s.shutdownGRPCServer(ctx)
	s.broadcaster.Close()
	if err := s.raw.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store close: %w", err))
	}
	return errors.Join(errs...)
}

// handleHealth returns 200 OK if the server is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK once the store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	boards, err := s.store.List(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "ready (%d boards, %d sessions)", len(boards), len(s.layouts.Boards()))
}

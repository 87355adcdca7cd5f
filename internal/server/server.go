package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/rickgao/iss-tracker/internal/logging"
	"github.com/rickgao/iss-tracker/internal/query"
)

// Config holds HTTP server settings.
type Config struct {
	Addr            string        // Listen address (default: ":8000")
	StaticDir       string        // Directory served for non-API paths; empty disables
	RateLimit       float64       // Requests per second per IP on /api/; 0 disables
	RateBurst       int           // Burst size for RateLimit
	ShutdownTimeout time.Duration // Grace period for in-flight requests (default: 10s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8000",
		StaticDir:       "static",
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server serves the read API, the live stream and static assets.
type Server struct {
	cfg     Config
	svc     *query.Service
	stream  http.Handler
	logger  *slog.Logger
	limiter *rateLimiter
	now     func() time.Time
}

// New creates a Server. stream may be nil to disable /api/stream.
func New(cfg Config, svc *query.Service, stream http.Handler, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		svc:    svc,
		stream: stream,
		logger: logging.Default(logger).With("component", "server"),
		now:    time.Now,
	}
	if cfg.RateLimit > 0 {
		s.limiter = newRateLimiter(rate.Limit(cfg.RateLimit), max(cfg.RateBurst, 1))
	}
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/positions", s.handlePositions)
	mux.HandleFunc("GET /api/latest", s.handleLatest)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.stream != nil {
		mux.Handle("GET /api/stream", s.stream)
	}
	if s.cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.cfg.StaticDir)))
	}

	var h http.Handler = mux
	h = compressMiddleware(h)
	if s.limiter != nil {
		h = rateLimitMiddleware(s.limiter)(h)
	}
	return h
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	cleanupCtx, cancelCleanup := context.WithCancel(ctx)
	defer cancelCleanup()
	if s.limiter != nil {
		s.limiter.startCleanup(cleanupCtx, &wg, limiterCleanupInterval, limiterStaleAfter)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info("http server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().ShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	s.logger.Info("http server stopped")
	return nil
}

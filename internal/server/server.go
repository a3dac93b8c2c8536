package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bpbdbogor/portal/internal/config"
	"github.com/bpbdbogor/portal/internal/handler"
	"github.com/bpbdbogor/portal/internal/openapi"
	"github.com/bpbdbogor/portal/internal/server/middleware"
	"github.com/bpbdbogor/portal/internal/service"
	"github.com/bpbdbogor/portal/internal/ui"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	EnableUI        bool
	EnableMetrics   bool
	// PublicURL is advertised in /openapi.json; empty means derive it from
	// Host and Port.
	PublicURL string
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
		EnableUI:        true,
		EnableMetrics:   true,
	}
}

// Addr returns the host:port the server listens on.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Server is the top-level HTTP server for the admin portal. It owns the Chi
// router, the lazily opened credential store and the auth services.
type Server struct {
	cfg        Config
	router     chi.Router
	store      *config.LazyStore
	authSvc    *service.AuthService
	tokens     *service.TokenService
	registry   *prometheus.Registry
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new Server, wires up all routes and middleware, and returns
// it ready to listen. Call ListenAndServe to start accepting connections.
func New(cfg Config, store *config.LazyStore, authSvc *service.AuthService, tokens *service.TokenService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		store:   store,
		authSvc: authSvc,
		tokens:  tokens,
		logger:  logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
		// The login route answers its own preflight with fixed headers.
		OptionsPassthrough: true,
	}))

	sysHandler := handler.NewSystemHandler(s.store, s.logger)
	authHandler := handler.NewAuthHandler(s.authSvc, s.logger)

	// --- Health checks (no auth required) ---
	r.Get("/healthz", sysHandler.Healthz)
	r.Get("/readyz", sysHandler.Readyz)

	// --- Prometheus metrics (no auth required) ---
	if s.cfg.EnableMetrics {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		service.RegisterMetrics(s.registry)
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}))
	}

	// --- OpenAPI spec (no auth required) ---
	r.Get("/openapi.json", s.handleOpenAPI)

	// --- API routes ---
	r.Route("/api/admin/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Options("/login", authHandler.LoginOptions)

		r.With(middleware.Authenticate(s.tokens)).Get("/me", authHandler.Session)
		r.Options("/me", handlePreflight)
	})

	// --- Embedded login page ---
	if s.cfg.EnableUI {
		page := loginPage(ui.Dist())
		r.Get("/admin/login", page)
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/admin/login", http.StatusFound)
		})
	}

	s.router = r
}

// loginPage serves the embedded login form.
func loginPage(dist fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := fs.ReadFile(dist, ui.LoginPage)
		if err != nil {
			http.Error(w, "UI not available", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("X-Frame-Options", "DENY")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

// handlePreflight acknowledges a CORS preflight. The cors middleware has
// already written the negotiated headers.
func handlePreflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	baseURL := s.cfg.PublicURL
	if baseURL == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		baseURL = scheme + "://" + r.Host
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(openapi.GenerateAuthSpec(baseURL))
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or SIGTERM
// is received. It then performs a graceful shutdown, draining in-flight
// requests before closing the credential store.
func (s *Server) ListenAndServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Addr()

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if err := s.store.Close(); err != nil {
		s.logger.Warn("closing credential store", "error", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Package web provides the HTTP server and handlers for the record table.
package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/roster/internal/config"
	"github.com/JonMunkholm/roster/internal/core"
	"github.com/JonMunkholm/roster/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

// contentSecurityPolicy allows the embedded UI: scripts and styles from self.
const contentSecurityPolicy = "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'"

// Registry is what the server needs from a Prometheus registry.
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// Server is the HTTP server for the record table.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server

	metrics       *httpMetrics
	gatherer      prometheus.Gatherer
	limiter       *rateLimiter
	importLimiter *rateLimiter
}

// NewServer creates a Server. reg may be nil when metrics are disabled.
func NewServer(service *core.Service, cfg *config.Config, reg Registry) (*Server, error) {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}

	if cfg.Metrics.Enabled && reg != nil {
		m, err := newHTTPMetrics(reg)
		if err != nil {
			return nil, fmt.Errorf("register http metrics: %w", err)
		}
		s.metrics = m
		s.gatherer = reg
	}

	if cfg.Rate.Enabled {
		if cfg.Rate.RequestsPerMinute > 0 {
			s.limiter = newRateLimiter(cfg.Rate.RequestsPerMinute)
		}
		if cfg.Rate.ImportLimit > 0 {
			s.importLimiter = newRateLimiter(cfg.Rate.ImportLimit)
		}
	}

	s.setupMiddleware()
	if err := s.setupRoutes(); err != nil {
		s.Close()
		return nil, err
	}

	s.server = &http.Server{
		Handler:           s.router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
	return s, nil
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(s.metrics.middleware)
	s.router.Use(chimw.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.limiter != nil {
		s.router.Use(s.limiter.middleware("all", s.metrics))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() error {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return fmt.Errorf("locate static files: %w", err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Pages
	s.router.Get("/", s.handleIndex)
	s.router.Get("/healthz", s.handleHealthz)

	// Data
	s.router.Get("/get_data", s.handleGetData)
	s.router.Get("/export_data", s.handleExportData)
	s.router.Post("/add_data", s.handleAddData)
	s.router.Post("/update_data", s.handleUpdateData)
	s.router.Post("/delete_data", s.handleDeleteData)
	s.router.Post("/batch_delete", s.handleBatchDelete)

	s.router.Group(func(r chi.Router) {
		if s.importLimiter != nil {
			r.Use(s.importLimiter.middleware("/import_data", s.metrics))
		}
		r.Post("/import_data", s.handleImportData)
	})

	if s.gatherer != nil {
		s.router.Handle(s.cfg.Metrics.Path, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return nil
}

// Start listens on addr and serves until Shutdown. It returns
// http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	return s.server.Serve(ln)
}

// Shutdown gracefully stops the server and its background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Close()
	return s.server.Shutdown(ctx)
}

// Close stops the rate limiter sweepers.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.close()
	}
	if s.importLimiter != nil {
		s.importLimiter.close()
	}
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				h.Set("Content-Security-Policy", contentSecurityPolicy)
			}
			next.ServeHTTP(w, r)
		})
	}
}

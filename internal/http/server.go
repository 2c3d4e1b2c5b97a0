// Package http serves the dashboard pages, SVG charts and JSON API.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"bikeshare/internal/cache"
	"bikeshare/internal/content"
	"bikeshare/internal/core"
	applog "bikeshare/internal/log"
	"bikeshare/internal/middleware/ratelimit"
	"bikeshare/internal/middleware/security"
	"bikeshare/internal/middleware/trace"
	"bikeshare/internal/services"
	appweb "bikeshare/web"
)

// UsageQuerier is the read side of the usage service the handlers depend on.
type UsageQuerier interface {
	Ready() bool
	TopN() int
	Seasons() ([]string, error)
	Daily() ([]core.DailyUsage, error)
	Select(ctx context.Context, seasons []string, n int) (services.Selection, error)
	CacheStats() cache.Stats
}

// Options configures NewServer.
type Options struct {
	Addr               string
	RateLimitPerMinute int
	CORSOrigins        []string
	TrustedProxies     []string
	ChartCacheSize     int
	ChartCacheTTL      time.Duration
}

type Server struct {
	http.Server

	usage     UsageQuerier
	site      *content.Site
	mapHTML   string
	templates *template.Template
	logger    *applog.Logger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	svgCache *cache.LRUCache[[]byte]
	started  time.Time
}

// NewServer wires routes and middleware. mapHTML is the pre-rendered trip map, or
// empty when the file was not found at startup.
func NewServer(opts Options, usage UsageQuerier, site *content.Site, mapHTML string, logger *applog.Logger) (*Server, error) {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if opts.ChartCacheSize <= 0 {
		opts.ChartCacheSize = 64
	}
	if opts.ChartCacheTTL <= 0 {
		opts.ChartCacheTTL = 10 * time.Minute
	}

	tmpl, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		usage:     usage,
		site:      site,
		mapHTML:   mapHTML,
		templates: tmpl,
		logger:    logger.WithComponent(applog.ComponentHTTP),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:  security.NewDetector(logger.Logger),
		svgCache:  cache.NewLRUCache[[]byte](opts.ChartCacheSize, opts.ChartCacheTTL),
		started:   time.Now(),
	}

	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			s.limiter.Stop()
			return nil, fmt.Errorf("trusted proxy %q: %w", cidr, err)
		}
	}

	router, err := s.routes(opts)
	if err != nil {
		s.limiter.Stop()
		return nil, err
	}

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.middleware(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(opts Options) (*mux.Router, error) {
	r := mux.NewRouter()
	r.StrictSlash(true)
	r.NotFoundHandler = http.HandlerFunc(s.handleNotFound)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/pages/{slug}", s.handlePage).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/map", s.handleMap).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	charts := r.PathPrefix("/charts").Subrouter()
	charts.Use(s.limiter.Middleware(s.detector.ExtractClientIP))
	charts.HandleFunc("/daily.svg", s.handleDailyChart).Methods(http.MethodGet)
	charts.HandleFunc("/stations.svg", s.handleStationsChart).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	if len(opts.CORSOrigins) > 0 {
		api.Use(handlers.CORS(
			handlers.AllowedOrigins(opts.CORSOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		))
	}
	api.HandleFunc("/daily", s.handleAPIDaily).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/stations", s.handleAPIStations).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/seasons", s.handleAPISeasons).Methods(http.MethodGet, http.MethodOptions)

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	r.PathPrefix("/static/").Handler(security.StaticAssetMiddleware(3600)(
		http.StripPrefix("/static/", http.FileServer(http.FS(static)))))

	return r, nil
}

// middleware wraps the router, outermost first: panic recovery, request ID,
// request logging, probe detection, security headers, gzip.
func (s *Server) middleware(h http.Handler) http.Handler {
	h = handlers.CompressHandler(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.detector.Middleware(h)
	h = applog.Middleware(s.logger, trace.FromRequest, s.detector.ExtractClientIP)(h)
	h = trace.Middleware(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.logger}),
		handlers.PrintRecoveryStack(false),
	)(h)
	return h
}

type recoveryLogger struct{ l *applog.Logger }

func (r recoveryLogger) Println(v ...any) {
	r.l.Error("Panic recovered in handler", "panic", fmt.Sprint(v...))
}

// Caches returns the server-owned caches for periodic cleanup.
func (s *Server) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.svgCache}
}

// Shutdown stops the limiter sweep and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

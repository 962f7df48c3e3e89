// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/reclaim-go/internal/cache"
	"github.com/olegiv/reclaim-go/internal/cms"
	"github.com/olegiv/reclaim-go/internal/config"
	"github.com/olegiv/reclaim-go/internal/formbackend"
	"github.com/olegiv/reclaim-go/internal/formengine"
	"github.com/olegiv/reclaim-go/internal/handler"
	"github.com/olegiv/reclaim-go/internal/logging"
	"github.com/olegiv/reclaim-go/internal/metrics"
	"github.com/olegiv/reclaim-go/internal/middleware"
	"github.com/olegiv/reclaim-go/internal/render"
	"github.com/olegiv/reclaim-go/internal/scheduler"
	"github.com/olegiv/reclaim-go/internal/session"
	"github.com/olegiv/reclaim-go/internal/store"
	"github.com/olegiv/reclaim-go/internal/util"
	"github.com/olegiv/reclaim-go/internal/version"
	"github.com/olegiv/reclaim-go/internal/webhook"
	"github.com/olegiv/reclaim-go/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

const (
	revalidatePath  = "/api/revalidate"
	previewPath     = "/api/preview"
	previewExitPath = "/api/preview/exit"
	staticMaxAge    = 7 * 24 * 60 * 60
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")
	checkContent := flag.Bool("check-content", false, "Validate the registration form content and exit")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Reclaim - intake site for Reclaim My Life\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RML_SESSION_SECRET      Session encryption key (required in production, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RML_DB_PATH             SQLite database path (default: ./data/reclaim.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RML_SERVER_PORT         Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RML_ENV                 Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RML_CONTENT_SOURCE      Content source: file|sanity (default: file)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RML_CONTENT_DIR         Content directory for the file source (default: ./content)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RML_SANITY_PROJECT_ID   Sanity project ID for the sanity source\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RML_REVALIDATE_SECRET   Shared secret of the revalidation webhook\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RML_PREVIEW_SECRET      Shared secret of the preview endpoint\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RML_FORM_BACKEND        Form backend: local|http (default: local)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RML_REDIS_URL           Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "\nFor more information, see: https://github.com/olegiv/reclaim-go\n")
	}

	flag.Parse()

	// Handle -h/-help flag
	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Handle -v/-version flag
	if *showVersion {
		_, _ = fmt.Println(versionInfo.String())
		os.Exit(0)
	}

	if *checkContent {
		os.Exit(runCheckContent())
	}

	if err := run(versionInfo); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// newContentSource builds the configured source. httpClient is used for
// the Sanity API only.
func newContentSource(cfg *config.Config, httpClient *http.Client) (cms.Source, error) {
	if cfg.ContentSource == config.ContentSourceSanity {
		return cms.NewSanityClient(cms.SanityConfig{
			ProjectID:  cfg.SanityProjectID,
			Dataset:    cfg.SanityDataset,
			APIVersion: cfg.SanityAPIVersion,
			Token:      cfg.SanityToken,
			HTTPClient: httpClient,
		})
	}
	return cms.NewFileSource(cfg.ContentDir), nil
}

// formEndpoint resolves a relative RML_FORM_ENDPOINT against the site URL.
func formEndpoint(cfg *config.Config) (string, error) {
	endpoint, err := url.Parse(cfg.FormEndpoint)
	if err != nil {
		return "", fmt.Errorf("parsing form endpoint: %w", err)
	}
	if endpoint.IsAbs() {
		return endpoint.String(), nil
	}
	base, err := url.Parse(cfg.SiteURL)
	if err != nil {
		return "", fmt.Errorf("parsing site URL: %w", err)
	}
	return base.ResolveReference(endpoint).String(), nil
}

func run(versionInfo version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := parseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		err = db.Close()
		if err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the events table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()
	isDev := cfg.IsDevelopment()

	// Outbound requests to configured URLs are SSRF-guarded in production.
	var outbound *http.Client
	if !isDev {
		outbound = util.SafeHTTPClient(30 * time.Second)
	}

	// Initialize session manager
	sessionManager := session.New(db, isDev)
	slog.Info("session manager initialized")

	// Initialize content cache
	contentCache := cache.New(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      cfg.CacheTTLDuration(),
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	}, logger)
	defer func() {
		if err := contentCache.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()

	// Initialize content source
	source, err := newContentSource(cfg, outbound)
	if err != nil {
		return fmt.Errorf("initializing content source: %w", err)
	}
	content := cms.NewCachedSource(source, contentCache, cfg.CacheTTLDuration(), logger)
	slog.Info("content source initialized", "source", cfg.ContentSource, "cache_ttl", cfg.CacheTTLDuration().String())

	appMetrics := metrics.New(nil)

	// Initialize and start webhook dispatcher
	webhookCfg := webhook.DefaultConfig()
	webhookCfg.URL = cfg.WebhookURL
	webhookCfg.Secret = cfg.WebhookSecret
	webhookCfg.HTTPClient = outbound
	webhookDispatcher := webhook.NewDispatcher(logger, webhookCfg)
	if webhookDispatcher.Enabled() {
		webhookDispatcher.Start(ctx)
		defer webhookDispatcher.Stop()
		slog.Info("webhook dispatcher initialized")
	}

	// Form processing backend
	serviceOpts := []formbackend.Option{
		formbackend.WithDispatcher(webhookDispatcher),
		formbackend.WithMetrics(appMetrics),
	}
	if cfg.HCaptchaEnabled() {
		serviceOpts = append(serviceOpts, formbackend.WithCaptcha(
			formbackend.NewHCaptcha(cfg.HCaptchaSecretKey, "", logger),
		))
		slog.Info("hCaptcha verification enabled")
	}
	formService := formbackend.NewService(db, logger, serviceOpts...)

	var transport formengine.Transport = formbackend.NewLocalTransport(formService)
	if cfg.FormBackend == config.FormBackendHTTP {
		endpoint, err := formEndpoint(cfg)
		if err != nil {
			return err
		}
		transport = formbackend.NewHTTPTransport(endpoint, nil)
		slog.Info("form submissions posted to endpoint", "endpoint", endpoint)
	}

	// Initialize and start scheduler
	sched := scheduler.New(db, logger, scheduler.Config{
		Schedule:  cfg.RetentionSchedule,
		Retention: cfg.Retention(),
	})
	switch err := sched.Start(); {
	case errors.Is(err, scheduler.ErrRetentionDisabled):
		slog.Info("submission retention disabled")
	case err != nil:
		return fmt.Errorf("starting scheduler: %w", err)
	default:
		defer sched.Stop()
	}

	// Initialize template renderer
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS: templatesFS,
		Sessions:    sessionManager,
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	// Initialize handlers
	captchaSiteKey := ""
	if cfg.HCaptchaEnabled() {
		captchaSiteKey = cfg.HCaptchaSiteKey
	}
	pagesHandler := handler.NewPagesHandler(handler.PagesConfig{
		Content:        content,
		Renderer:       renderer,
		Sessions:       sessionManager,
		Transport:      transport,
		Metrics:        appMetrics,
		Logger:         logger,
		CaptchaSiteKey: captchaSiteKey,
		SubmitTimeout:  cfg.FormSubmitTimeout,
	})
	previewHandler := handler.NewPreviewHandler(cfg.PreviewSecret, sessionManager, logger)
	revalidateHandler := handler.NewRevalidateHandler(cfg.RevalidateSecret, content, appMetrics, logger)
	healthHandler := handler.NewHealthHandler(db, contentCache, versionInfo)
	seoHandler := handler.NewSEOHandler(cfg.SiteURL, isDev, logger)

	// Create router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5)) // Gzip compression with level 5
	r.Use(chimw.GetHead)     // Handle HEAD requests for uptime monitoring
	r.Use(appMetrics.Middleware)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.StripTrailingSlash)

	securityConfig := middleware.DefaultSecurityHeadersConfig(isDev)
	securityConfig.ExcludePaths = []string{"/metrics"}
	r.Use(middleware.SecurityHeaders(securityConfig))
	slog.Info("security headers middleware initialized", "hsts", !isDev)

	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.NoStore(func(req *http.Request) bool {
		return sessionManager.IsPreview(req.Context())
	}))

	// The revalidation webhook is called server-to-server and authenticates by secret.
	r.Use(middleware.SkipCSRF(revalidatePath))
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), isDev, cfg.ServerAddr())))
	slog.Info("CSRF protection initialized")

	pageLimiter := middleware.NewRateLimiter(cfg.FormRateLimit, cfg.FormRateBurst, logger)
	backendLimiter := middleware.NewRateLimiter(cfg.FormRateLimit, cfg.FormRateBurst, logger)
	slog.Info("submission rate limiters initialized", "rate", cfg.FormRateLimit, "burst", cfg.FormRateBurst)

	// Public pages
	r.Get(handler.PathHome, pagesHandler.Home)
	r.Get(handler.PathAbout, pagesHandler.About)
	r.Get(handler.PathContact, pagesHandler.Contact)
	r.Get(handler.PathRegister, pagesHandler.Register)

	// Form submissions
	mountSubmissions(r, submissionRoutes{
		Contact:        pagesHandler.ContactSubmit,
		Register:       pagesHandler.RegisterSubmit,
		Backend:        formService,
		PageLimiter:    pageLimiter,
		BackendLimiter: backendLimiter,
	})

	r.Get("/robots.txt", seoHandler.Robots)
	r.Get("/sitemap.xml", seoHandler.Sitemap)

	// Content webhooks and preview
	r.Method(http.MethodPost, revalidatePath, revalidateHandler)
	r.Get(previewPath, previewHandler.Enter)
	r.Get(previewExitPath, previewHandler.Exit)

	// Health and metrics
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)
	r.Handle("/metrics", appMetrics.Handler())

	// Static file serving
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	r.Handle("/static/*", middleware.StaticCache(staticMaxAge)(
		http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))),
	))

	r.NotFound(pagesHandler.NotFound)

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.Short())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// submissionRoutes are the POST endpoints that accept form data.
type submissionRoutes struct {
	Contact  http.HandlerFunc
	Register http.HandlerFunc
	Backend  http.Handler

	PageLimiter    *middleware.RateLimiter
	BackendLimiter *middleware.RateLimiter
}

// mountSubmissions registers the page forms and the form backend behind
// separate limiters. In http backend mode a page submission is relayed to
// the backend carrying the visitor's address, and must not be counted twice.
func mountSubmissions(r chi.Router, routes submissionRoutes) {
	r.With(routes.PageLimiter.Middleware).Post(handler.PathContact, routes.Contact)
	r.With(routes.PageLimiter.Middleware).Post(handler.PathRegister, routes.Register)
	r.With(routes.BackendLimiter.Middleware).Method(http.MethodPost, handler.PathHome, routes.Backend)
}

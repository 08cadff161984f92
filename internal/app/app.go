package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/shopconsole/internal/backend"
	"github.com/simp-lee/shopconsole/internal/config"
	"github.com/simp-lee/shopconsole/internal/domain"
	"github.com/simp-lee/shopconsole/internal/form"
	"github.com/simp-lee/shopconsole/internal/middleware"
	"github.com/simp-lee/shopconsole/internal/module/audit"
	"github.com/simp-lee/shopconsole/internal/module/catalog"
	"github.com/simp-lee/shopconsole/internal/module/dashboard"
	"github.com/simp-lee/shopconsole/internal/module/transaction"
	"github.com/simp-lee/shopconsole/internal/session"
	"github.com/simp-lee/shopconsole/internal/storage/minio"
	"github.com/simp-lee/shopconsole/web"
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine *gin.Engine
	db     *gorm.DB
	logger *logger.Logger
	cfg    *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// newImageStorage connects to the bucket. Replaced in tests.
var newImageStorage = func(ctx context.Context, cfg minio.Config) (domain.ImageUploader, error) {
	return minio.New(ctx, cfg)
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, the audit database, the backend client, image storage,
// console modules, middleware, template rendering, and routes.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	success := false

	// 1. Setup logger.
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	// 2. Setup the audit database.
	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if success {
			return
		}
		sqlDB, err := db.DB()
		if err != nil {
			return
		}
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", slog.Any("error", err))
		}
	}()

	// 3. AutoMigrate the audit table. It is the only local table and every
	// mode records to it.
	if err := db.AutoMigrate(&domain.AuditEntry{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("auto migration completed")

	// 4. Metrics registry and backend client.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client, err := backend.New(backend.Config{
		BaseURL:  cfg.Backend.BaseURL,
		Timeout:  parseDurationOr(cfg.Backend.Timeout, 10*time.Second),
		APIToken: cfg.Backend.APIToken,
		Logger:   log.Logger,
		Metrics:  backend.NewMetrics(registry),
	})
	if err != nil {
		return nil, fmt.Errorf("setup backend client: %w", err)
	}

	// 5. Image storage (optional).
	var uploader domain.ImageUploader
	if cfg.Storage.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		uploader, err = newImageStorage(ctx, minio.Config{
			Endpoint:            cfg.Storage.Endpoint,
			AccessKey:           cfg.Storage.AccessKey,
			SecretKey:           cfg.Storage.SecretKey,
			Bucket:              cfg.Storage.Bucket,
			PublicBaseURL:       cfg.Storage.PublicBaseURL,
			MaxSizeBytes:        cfg.Storage.MaxSizeBytes,
			AllowedContentTypes: cfg.Storage.AllowedContentTypes,
		})
		cancel()
		if err != nil {
			return nil, fmt.Errorf("setup image storage: %w", err)
		}
		log.Info("image storage ready", slog.String("bucket", cfg.Storage.Bucket))
	} else {
		log.Warn("image storage disabled, image uploads will be rejected")
	}

	// 6. Manual dependency injection: backend resource → module.
	sessionTTL := parseDurationOr(cfg.Console.SessionTTL, 12*time.Hour)
	auditRepo := audit.NewRepository(db)
	shared := catalog.Shared{
		Uploader:  uploader,
		Audit:     audit.NewRecorder(auditRepo, log.Logger),
		Validator: form.NewValidator(),
		Logger:    log.Logger,
		Sessions: session.Config{
			TTL:        sessionTTL,
			MaxEntries: cfg.Console.MaxSessions,
		},
		PageSize:    cfg.Backend.DefaultPageSize,
		MaxPageSize: cfg.Backend.MaxPageSize,
	}
	modules := buildModules(client, shared, cfg.Console.DashboardSampleSize, auditRepo)

	// 7. Create Gin engine with custom middleware (not gin.Default()).
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	corsConfig := resolveCORSConfig(cfg.Server.Mode, cfg.Server.CORS)

	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: false,
		}),
		middleware.LoggerWithConfig(middleware.LoggerConfig{
			Logger:       log.Logger,
			SkipPrefixes: []string{"/static/", "/health", "/metrics"},
		}),
		middleware.CORSWithConfig(corsConfig),
	)
	if cfg.Server.Timeout != "" {
		engine.Use(middleware.Timeout(parseDurationOr(cfg.Server.Timeout, 0)))
	}
	if cfg.Server.RateLimit.Enabled {
		engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.Server.RateLimit.RPS,
			Burst:             cfg.Server.RateLimit.Burst,
			IdleTimeout:       10 * time.Minute,
		}))
	}
	engine.Use(middleware.Session(middleware.SessionConfig{
		TTL:    sessionTTL,
		Secure: cfg.Server.Mode == gin.ReleaseMode,
	}))

	// 8. Determine filesystem mode and set up template renderer.
	var fsys fs.FS
	if cfg.Server.Mode == gin.DebugMode {
		fsys, err = resolveDebugWebFS()
		if err != nil {
			return nil, fmt.Errorf("resolve debug template fs: %w", err)
		}
	} else {
		fsys = web.EmbeddedFS
	}

	renderer, err := NewTemplateRenderer(fsys, cfg.Server.Mode == gin.DebugMode, NavLinks(modules)...)
	if err != nil {
		return nil, fmt.Errorf("setup template renderer: %w", err)
	}
	engine.HTMLRender = renderer

	// 9. Resolve CSRF secret.
	csrfSecret := cfg.Server.CSRFSecret
	if isPlaceholderCSRFSecret(csrfSecret) {
		if cfg.Server.Mode == gin.ReleaseMode {
			return nil, errors.New("csrf_secret must be a non-placeholder value in release mode")
		}

		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("generate csrf secret: %w", err)
		}
		csrfSecret = hex.EncodeToString(b)
		log.Warn("no csrf_secret configured, using random secret in non-release mode (will change on restart)")
	} else if cfg.Server.Mode == gin.ReleaseMode {
		if len(csrfSecret) < 32 {
			return nil, errors.New("csrf_secret must be at least 32 characters in release mode")
		}
		if config.CountSecretClasses(csrfSecret) < 3 {
			return nil, errors.New("csrf_secret must include at least 3 character classes (lowercase, uppercase, digit, symbol) in release mode")
		}
	}

	// 10. Register all routes.
	if err := RegisterRoutes(engine, &RouteDeps{
		Modules:    modules,
		DB:         db,
		Mode:       cfg.Server.Mode,
		CSRFSecret: csrfSecret,
		Metrics:    promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return &App{
		engine: engine,
		db:     db,
		logger: log,
		cfg:    cfg,
	}, nil
}

// buildModules creates the console modules in navigation order.
func buildModules(client *backend.Client, shared catalog.Shared, sampleSize int, auditRepo domain.AuditRepository) []Module {
	transactions := backend.NewTransactions(client)

	return []Module{
		dashboard.NewModule(dashboard.Config{
			Products:     backend.NewResource[domain.Product](client, "/products"),
			Transactions: transactions,
			SampleSize:   sampleSize,
			Logger:       shared.Logger,
		}),
		catalogModule(client, catalog.Products(), shared),
		catalogModule(client, catalog.Brands(), shared),
		catalogModule(client, catalog.Promotions(), shared),
		catalogModule(client, catalog.Vouchers(), shared),
		catalogModule(client, catalog.Blogs(), shared),
		catalogModule(client, catalog.SkinTypes(), shared),
		catalogModule(client, catalog.QuizQuestions(), shared),
		catalogModule(client, catalog.PaymentMethods(), shared),
		catalogModule(client, catalog.CancelReasons(), shared),
		transaction.NewModule(transaction.Deps{
			Backend:     transactions,
			Audit:       shared.Audit,
			Logger:      shared.Logger,
			Sessions:    shared.Sessions,
			PageSize:    shared.PageSize,
			MaxPageSize: shared.MaxPageSize,
		}),
		audit.NewModule(audit.NewHandler(auditRepo)),
	}
}

// catalogModule serves d from its backend endpoint.
func catalogModule[T domain.Entity](client *backend.Client, d catalog.Descriptor[T], shared catalog.Shared) Module {
	return catalog.NewModule(d, catalog.Deps[T]{
		Backend: backend.NewResource[T](client, d.Endpoint),
		Shared:  shared,
	})
}

// parseDurationOr parses a validated duration string, returning def when it is empty.
func parseDurationOr(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}

func isPlaceholderCSRFSecret(secret string) bool {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return true
	}

	switch strings.ToLower(trimmed) {
	case "change-me-to-a-random-secret", "change-me-in-env":
		return true
	default:
		return false
	}
}

func resolveCORSConfig(mode string, configured config.CORSConfig) middleware.CORSConfig {
	corsConfig := middleware.DefaultCORSConfig()
	if len(configured.AllowMethods) > 0 {
		corsConfig.AllowMethods = configured.AllowMethods
	}
	if len(configured.AllowHeaders) > 0 {
		corsConfig.AllowHeaders = configured.AllowHeaders
	}
	if len(configured.ExposeHeaders) > 0 {
		corsConfig.ExposeHeaders = configured.ExposeHeaders
	}
	corsConfig.AllowCredentials = configured.AllowCredentials
	if configured.MaxAge != "" {
		corsConfig.MaxAge = parseDurationOr(configured.MaxAge, corsConfig.MaxAge)
	}

	if len(configured.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = configured.AllowOrigins
		return corsConfig
	}

	// In release mode, when no allowlist is configured, deny cross-origin requests.
	if mode == gin.ReleaseMode {
		corsConfig.AllowOrigins = []string{}
	}

	return corsConfig
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

func resolveDebugWebFS() (fs.FS, error) {
	if _, file, _, ok := runtime.Caller(0); ok {
		webDir := filepath.Clean(filepath.Join(filepath.Dir(file), "..", "..", "web"))
		if stat, err := os.Stat(webDir); err == nil && stat.IsDir() {
			return os.DirFS(webDir), nil
		}
	}

	exePath, err := os.Executable()
	if err == nil {
		webDir := filepath.Join(filepath.Dir(exePath), "web")
		if stat, err := os.Stat(webDir); err == nil && stat.IsDir() {
			return os.DirFS(webDir), nil
		}
	}

	return nil, errors.New("debug web directory not found")
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// It performs graceful shutdown with a 5-second timeout and closes the database
// connection.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine)

	// Listen for SIGINT / SIGTERM.
	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		if a.logger != nil {
			a.logger.Info("server started", slog.String("addr", addr))
		} else {
			slog.Info("server started", slog.String("addr", addr))
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		if a.logger != nil {
			a.logger.Info("shutdown signal received")
		} else {
			slog.Info("shutdown signal received")
		}
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		// Graceful shutdown with 5-second deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			if a.logger != nil {
				a.logger.Error("server shutdown error", slog.Any("error", err))
			} else {
				slog.Error("server shutdown error", slog.Any("error", err))
			}
		}
	}

	// Close the audit database.
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				if a.logger != nil {
					a.logger.Error("database close error", slog.Any("error", err))
				} else {
					slog.Error("database close error", slog.Any("error", err))
				}
			} else {
				if a.logger != nil {
					a.logger.Info("database connection closed")
				} else {
					slog.Info("database connection closed")
				}
			}
		}
	}

	if a.logger != nil {
		a.logger.Info("server stopped")
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	} else {
		slog.Info("server stopped")
	}

	if runErr != nil {
		return runErr
	}

	return nil
}

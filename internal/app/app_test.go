package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/shopconsole/internal/config"
	"github.com/simp-lee/shopconsole/internal/domain"
	"github.com/simp-lee/shopconsole/internal/pkg"
	"github.com/simp-lee/shopconsole/internal/storage/minio"
)

const strongSecret = "Abcd1234!Abcd1234!Abcd1234!Abcd1234!"

type fakeHTTPServer struct {
	listenErr      error
	listenStarted  chan struct{}
	shutdownCalled bool
	stopCh         chan struct{}
	mu             sync.Mutex
}

func (f *fakeHTTPServer) ListenAndServe() error {
	if f.listenStarted != nil {
		close(f.listenStarted)
	}
	if f.listenErr != nil {
		return f.listenErr
	}
	if f.stopCh != nil {
		<-f.stopCh
		return http.ErrServerClosed
	}
	return http.ErrServerClosed
}

func (f *fakeHTTPServer) Shutdown(context.Context) error {
	f.mu.Lock()
	f.shutdownCalled = true
	f.mu.Unlock()
	if f.stopCh != nil {
		close(f.stopCh)
	}
	return nil
}

func (f *fakeHTTPServer) wasShutdownCalled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shutdownCalled
}

type fakeUploader struct{}

func (fakeUploader) Upload(context.Context, *domain.Blob, string) (string, error) {
	return "https://cdn.test/brands/x.png", nil
}

// newBackend starts a fake REST backend that serves a single brand on every
// list endpoint.
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{"items":[{"id":"b1","name":"Acme","origin":"KR"}],"totalCount":1,"pageNumber":1,"pageSize":10,"totalPages":1}}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// testConfig returns a validated-looking config in test mode backed by a
// temporary sqlite file.
func testConfig(t *testing.T, backendURL string) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			Host:       "127.0.0.1",
			Port:       8080,
			Mode:       gin.TestMode,
			CSRFSecret: strongSecret,
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "audit.db")},
		},
		Log: config.LogConfig{
			Level:  "info",
			Format: "text",
		},
		Backend: config.BackendConfig{
			BaseURL:         backendURL,
			Timeout:         "2s",
			DefaultPageSize: 10,
			MaxPageSize:     100,
		},
		Console: config.ConsoleConfig{SessionTTL: "1h"},
	}
}

func cleanupTestApp(t *testing.T, a *App) {
	t.Helper()
	if a == nil {
		return
	}
	if a.db != nil {
		sqlDB, dbErr := a.db.DB()
		if dbErr == nil {
			_ = sqlDB.Close()
		}
	}
	if a.logger != nil {
		_ = a.logger.Close()
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { cleanupTestApp(t, a) })
	return a
}

func serve(a *App, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Accept", "application/json")
	a.engine.ServeHTTP(w, req)
	return w
}

func TestResolveCORSConfig(t *testing.T) {
	tests := []struct {
		name            string
		mode            string
		corsCfg         config.CORSConfig
		wantOrigins     []string
		wantMethods     []string
		wantHeaders     []string
		wantCredentials bool
		wantMaxAge      time.Duration
	}{
		{
			name:        "debug mode uses permissive default when not configured",
			mode:        gin.DebugMode,
			wantOrigins: []string{"*"},
		},
		{
			name:        "release mode denies cross-origin when not configured",
			mode:        gin.ReleaseMode,
			wantOrigins: []string{},
		},
		{
			name:        "release mode uses explicit allowlist",
			mode:        gin.ReleaseMode,
			corsCfg:     config.CORSConfig{AllowOrigins: []string{"https://admin.example.com"}},
			wantOrigins: []string{"https://admin.example.com"},
		},
		{
			name: "config with AllowMethods and AllowHeaders",
			mode: gin.DebugMode,
			corsCfg: config.CORSConfig{
				AllowMethods: []string{"GET", "POST"},
				AllowHeaders: []string{"Content-Type", "X-CSRF-Token"},
			},
			wantOrigins: []string{"*"},
			wantMethods: []string{"GET", "POST"},
			wantHeaders: []string{"Content-Type", "X-CSRF-Token"},
		},
		{
			name: "config with AllowCredentials true",
			mode: gin.ReleaseMode,
			corsCfg: config.CORSConfig{
				AllowOrigins:     []string{"https://example.com"},
				AllowCredentials: true,
			},
			wantOrigins:     []string{"https://example.com"},
			wantCredentials: true,
		},
		{
			name: "config with MaxAge",
			mode: gin.ReleaseMode,
			corsCfg: config.CORSConfig{
				AllowOrigins: []string{"https://example.com"},
				MaxAge:       "12h",
			},
			wantOrigins: []string{"https://example.com"},
			wantMaxAge:  12 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := resolveCORSConfig(tt.mode, tt.corsCfg)

			if strings.Join(cfg.AllowOrigins, ",") != strings.Join(tt.wantOrigins, ",") || len(cfg.AllowOrigins) != len(tt.wantOrigins) {
				t.Fatalf("AllowOrigins = %v, want %v", cfg.AllowOrigins, tt.wantOrigins)
			}
			if tt.wantMethods != nil && strings.Join(cfg.AllowMethods, ",") != strings.Join(tt.wantMethods, ",") {
				t.Fatalf("AllowMethods = %v, want %v", cfg.AllowMethods, tt.wantMethods)
			}
			if tt.wantHeaders != nil && strings.Join(cfg.AllowHeaders, ",") != strings.Join(tt.wantHeaders, ",") {
				t.Fatalf("AllowHeaders = %v, want %v", cfg.AllowHeaders, tt.wantHeaders)
			}
			if len(cfg.AllowMethods) == 0 || len(cfg.AllowHeaders) == 0 {
				t.Fatal("defaults for methods and headers should be kept")
			}
			if cfg.AllowCredentials != tt.wantCredentials {
				t.Fatalf("AllowCredentials = %v, want %v", cfg.AllowCredentials, tt.wantCredentials)
			}
			if tt.wantMaxAge != 0 && cfg.MaxAge != tt.wantMaxAge {
				t.Fatalf("MaxAge = %v, want %v", cfg.MaxAge, tt.wantMaxAge)
			}
		})
	}
}

func TestValidateGinMode(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		wantErr bool
	}{
		{name: "debug mode", mode: gin.DebugMode, wantErr: false},
		{name: "release mode", mode: gin.ReleaseMode, wantErr: false},
		{name: "test mode", mode: gin.TestMode, wantErr: false},
		{name: "invalid mode", mode: "staging", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateGinMode(tt.mode)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateGinMode() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseDurationOr(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", time.Minute},
		{"30s", 30 * time.Second},
		{"garbage", time.Minute},
		{"-5s", time.Minute},
	}
	for _, tt := range tests {
		if got := parseDurationOr(tt.in, time.Minute); got != tt.want {
			t.Errorf("parseDurationOr(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsPlaceholderCSRFSecret(t *testing.T) {
	for _, s := range []string{"", "   ", "change-me-in-env", "CHANGE-ME-TO-A-RANDOM-SECRET"} {
		if !isPlaceholderCSRFSecret(s) {
			t.Errorf("isPlaceholderCSRFSecret(%q) = false, want true", s)
		}
	}
	if isPlaceholderCSRFSecret(strongSecret) {
		t.Error("a real secret should not be treated as a placeholder")
	}
}

func TestNew_ReturnsError_WhenDatabaseSetupFails(t *testing.T) {
	cfg := testConfig(t, "http://backend.test")
	cfg.Database = config.DatabaseConfig{Driver: "unsupported"}

	app, err := New(cfg)
	if err == nil {
		t.Fatalf("New() error = nil, want error")
	}
	if app != nil {
		t.Fatalf("New() app = %#v, want nil", app)
	}
	if !strings.Contains(err.Error(), "setup database") {
		t.Fatalf("New() error = %q, want contains %q", err.Error(), "setup database")
	}
}

func TestNew_ReturnsError_WhenBackendURLMissing(t *testing.T) {
	cfg := testConfig(t, "")

	_, err := New(cfg)
	if err == nil || !strings.Contains(err.Error(), "setup backend client") {
		t.Fatalf("New() error = %v, want setup backend client error", err)
	}
}

func TestNew_NilConfig(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("New(nil) error = nil, want error")
	}
}

func TestNew_CSRFSecretValidation(t *testing.T) {
	tests := []struct {
		name            string
		mode            string
		csrfSecret      string
		wantErr         bool
		wantErrContains string
	}{
		{
			name:            "release mode rejects empty csrf secret",
			mode:            gin.ReleaseMode,
			csrfSecret:      "",
			wantErr:         true,
			wantErrContains: "csrf_secret must be a non-placeholder value in release mode",
		},
		{
			name:            "release mode rejects placeholder csrf secret",
			mode:            gin.ReleaseMode,
			csrfSecret:      "change-me-in-env",
			wantErr:         true,
			wantErrContains: "csrf_secret must be a non-placeholder value in release mode",
		},
		{
			name:       "test mode allows empty csrf secret",
			mode:       gin.TestMode,
			csrfSecret: "",
		},
		{
			name:       "debug mode allows empty csrf secret",
			mode:       gin.DebugMode,
			csrfSecret: " ",
		},
		{
			name:            "release mode rejects short csrf secret",
			mode:            gin.ReleaseMode,
			csrfSecret:      "Abc123!",
			wantErr:         true,
			wantErrContains: "csrf_secret must be at least 32 characters in release mode",
		},
		{
			name:            "release mode rejects low complexity csrf secret",
			mode:            gin.ReleaseMode,
			csrfSecret:      "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			wantErr:         true,
			wantErrContains: "csrf_secret must include at least 3 character classes",
		},
		{
			name:       "release mode accepts strong csrf secret",
			mode:       gin.ReleaseMode,
			csrfSecret: strongSecret,
		},
	}

	backend := newBackend(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, backend.URL)
			cfg.Server.Mode = tt.mode
			cfg.Server.CSRFSecret = tt.csrfSecret

			app, err := New(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			defer cleanupTestApp(t, app)

			if tt.wantErr {
				if !strings.Contains(err.Error(), tt.wantErrContains) {
					t.Fatalf("New() error = %q, want contains %q", err.Error(), tt.wantErrContains)
				}
				if app != nil {
					t.Fatalf("New() app = %#v, want nil", app)
				}
				return
			}
			if app == nil {
				t.Fatal("New() app = nil, want non-nil")
			}
		})
	}
}

func TestNew_StorageEnabled_ConnectsUploader(t *testing.T) {
	original := newImageStorage
	defer func() { newImageStorage = original }()

	var got minio.Config
	newImageStorage = func(_ context.Context, cfg minio.Config) (domain.ImageUploader, error) {
		got = cfg
		return fakeUploader{}, nil
	}

	cfg := testConfig(t, newBackend(t).URL)
	cfg.Storage = config.StorageConfig{
		Enabled:       true,
		Endpoint:      "minio.test:9000",
		AccessKey:     "key",
		SecretKey:     "secret",
		Bucket:        "console",
		PublicBaseURL: "https://cdn.test",
		MaxSizeBytes:  1 << 20,
	}
	newTestApp(t, cfg)

	if got.Bucket != "console" || got.Endpoint != "minio.test:9000" || got.MaxSizeBytes != 1<<20 {
		t.Errorf("storage config = %+v", got)
	}
}

func TestNew_StorageEnabled_ReturnsConnectError(t *testing.T) {
	original := newImageStorage
	defer func() { newImageStorage = original }()

	newImageStorage = func(context.Context, minio.Config) (domain.ImageUploader, error) {
		return nil, errors.New("bucket missing")
	}

	cfg := testConfig(t, newBackend(t).URL)
	cfg.Storage.Enabled = true

	_, err := New(cfg)
	if err == nil || !strings.Contains(err.Error(), "setup image storage") {
		t.Fatalf("New() error = %v, want setup image storage error", err)
	}
}

func TestNew_StorageDisabled_SkipsUploader(t *testing.T) {
	original := newImageStorage
	defer func() { newImageStorage = original }()

	newImageStorage = func(context.Context, minio.Config) (domain.ImageUploader, error) {
		t.Fatal("storage should not be contacted when disabled")
		return nil, nil
	}
	newTestApp(t, testConfig(t, newBackend(t).URL))
}

func TestNew_ConsoleListServedFromBackend(t *testing.T) {
	a := newTestApp(t, testConfig(t, newBackend(t).URL))

	w := serve(a, http.MethodGet, "/api/v1/console/brands")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Code int `json:"code"`
		Data struct {
			List struct {
				Items []domain.Brand `json:"items"`
			} `json:"list"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json decode error: %v", err)
	}
	if len(resp.Data.List.Items) != 1 || resp.Data.List.Items[0].Name != "Acme" {
		t.Errorf("items = %+v, want the backend brand", resp.Data.List.Items)
	}
}

func TestNew_HomeListsConsolePages(t *testing.T) {
	a := newTestApp(t, testConfig(t, newBackend(t).URL))

	w := serve(a, http.MethodGet, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{`href="/dashboard"`, `href="/console/brands"`, `href="/console/transactions"`} {
		if !strings.Contains(body, want) {
			t.Errorf("home page missing %s", want)
		}
	}
}

func TestNew_MetricsExposeBackendCalls(t *testing.T) {
	a := newTestApp(t, testConfig(t, newBackend(t).URL))

	if w := serve(a, http.MethodGet, "/api/v1/console/brands"); w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}

	w := serve(a, http.MethodGet, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"shopconsole_backend_requests_total", "go_goroutines"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestMiddlewareErrorFormat_Timeout_ReturnsPkgResponse(t *testing.T) {
	cfg := testConfig(t, newBackend(t).URL)
	cfg.Server.Timeout = "5ms"
	a := newTestApp(t, cfg)

	a.engine.GET("/api/v1/test-timeout-fast", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	a.engine.GET("/api/v1/test-timeout-slow", func(c *gin.Context) {
		select {
		case <-c.Request.Context().Done():
		case <-time.After(time.Second):
			c.JSON(http.StatusOK, gin.H{"ok": true})
		}
	})

	tests := []struct {
		name            string
		path            string
		wantStatus      int
		wantPkgResponse bool
	}{
		{name: "happy path within timeout", path: "/api/v1/test-timeout-fast", wantStatus: http.StatusOK},
		{name: "timeout returns pkg response", path: "/api/v1/test-timeout-slow", wantStatus: http.StatusRequestTimeout, wantPkgResponse: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(a, http.MethodGet, tt.path)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if !tt.wantPkgResponse {
				return
			}
			assertEnvelope(t, w.Body.Bytes(), http.StatusRequestTimeout, "request timeout")
		})
	}
}

func TestMiddlewareErrorFormat_RateLimit_ReturnsPkgResponse(t *testing.T) {
	cfg := testConfig(t, newBackend(t).URL)
	cfg.Server.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1}
	a := newTestApp(t, cfg)

	a.engine.GET("/api/v1/test-rate-limit", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	if first := serve(a, http.MethodGet, "/api/v1/test-rate-limit"); first.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want %d", first.Code, http.StatusOK)
	}
	second := serve(a, http.MethodGet, "/api/v1/test-rate-limit")
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want %d", second.Code, http.StatusTooManyRequests)
	}
	assertEnvelope(t, second.Body.Bytes(), http.StatusTooManyRequests, "too many requests")
}

// assertEnvelope checks that body is exactly a pkg.Response with no data.
func assertEnvelope(t *testing.T, body []byte, code int, message string) {
	t.Helper()
	var resp pkg.Response
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("json decode error: %v", err)
	}
	if resp.Code != code || resp.Message != message || resp.Data != nil {
		t.Fatalf("resp = %+v, want code %d message %q", resp, code, message)
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		t.Fatalf("json decode raw error: %v", err)
	}
	if len(raw) != 3 {
		t.Fatalf("response field count = %d, want 3", len(raw))
	}
}

func TestAutoMigrate_CreatesAuditTableInEveryMode(t *testing.T) {
	for _, mode := range []string{gin.DebugMode, gin.ReleaseMode, gin.TestMode} {
		t.Run(mode, func(t *testing.T) {
			cfg := testConfig(t, newBackend(t).URL)
			cfg.Server.Mode = mode
			a := newTestApp(t, cfg)

			if !a.db.Migrator().HasTable(&domain.AuditEntry{}) {
				t.Fatalf("expected the audit table in %s mode", mode)
			}
			if w := serve(a, http.MethodGet, "/api/v1/audit"); w.Code != http.StatusOK {
				t.Fatalf("GET /api/v1/audit status = %d, want 200 (body=%s)", w.Code, w.Body.String())
			}
		})
	}
}

func TestRun_ReturnsError_WhenListenFails(t *testing.T) {
	originalNewHTTPServer := newHTTPServer
	originalNotifyContext := notifyContext
	defer func() {
		newHTTPServer = originalNewHTTPServer
		notifyContext = originalNotifyContext
	}()

	listenErr := errors.New("listen failed")
	server := &fakeHTTPServer{listenErr: listenErr}
	newHTTPServer = func(string, http.Handler) httpServer {
		return server
	}
	notifyContext = func(context.Context, ...os.Signal) (context.Context, context.CancelFunc) {
		return context.WithCancel(context.Background())
	}

	a := &App{
		engine: gin.New(),
		logger: logger.Default(),
		cfg:    &config.Config{Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080}},
	}

	err := a.Run()
	if err == nil {
		t.Fatalf("Run() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "server error") {
		t.Fatalf("Run() error = %q, want contains %q", err.Error(), "server error")
	}
	if !errors.Is(err, listenErr) {
		t.Fatalf("Run() error = %v, want wraps %v", err, listenErr)
	}
}

func TestRun_NilGuards(t *testing.T) {
	var nilApp *App
	if err := nilApp.Run(); err == nil {
		t.Error("nil app should fail to run")
	}
	if err := (&App{}).Run(); err == nil {
		t.Error("app without config should fail to run")
	}
	if err := (&App{cfg: &config.Config{}}).Run(); err == nil {
		t.Error("app without engine should fail to run")
	}
}

func TestRun_ShutdownSignal_ClosesDatabase(t *testing.T) {
	originalNewHTTPServer := newHTTPServer
	originalNotifyContext := notifyContext
	defer func() {
		newHTTPServer = originalNewHTTPServer
		notifyContext = originalNotifyContext
	}()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB() error = %v", err)
	}

	server := &fakeHTTPServer{listenStarted: make(chan struct{}), stopCh: make(chan struct{})}
	newHTTPServer = func(string, http.Handler) httpServer {
		return server
	}

	ctx, cancel := context.WithCancel(context.Background())
	notifyContext = func(context.Context, ...os.Signal) (context.Context, context.CancelFunc) {
		return ctx, cancel
	}

	a := &App{
		engine: gin.New(),
		db:     db,
		logger: logger.Default(),
		cfg:    &config.Config{Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080}},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run()
	}()

	select {
	case <-server.listenStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start listening in time")
	}

	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return in time after shutdown signal")
	}

	if !server.wasShutdownCalled() {
		t.Fatal("expected server Shutdown() to be called")
	}

	if pingErr := sqlDB.Ping(); pingErr == nil {
		t.Fatal("expected database connection to be closed, but Ping() succeeded")
	}
}

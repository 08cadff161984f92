package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupCORSRouter(cfg CORSConfig) *gin.Engine {
	r := gin.New()
	r.Use(CORSWithConfig(cfg))
	r.GET("/api/v1/console/brands", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestCORS(t *testing.T) {
	withOrigins := func(creds bool, origins ...string) CORSConfig {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = creds
		return cfg
	}

	tests := []struct {
		name        string
		cfg         CORSConfig
		method      string
		origin      string
		wantStatus  int
		wantOrigin  string
		wantCreds   bool
		wantHeaders bool
	}{
		{"no origin header", DefaultCORSConfig(), http.MethodGet, "", http.StatusOK, "", false, false},
		{"wildcard", DefaultCORSConfig(), http.MethodGet, "http://a.test", http.StatusOK, "*", false, true},
		{"wildcard with credentials echoes origin", withOrigins(true, "*"), http.MethodGet, "http://a.test", http.StatusOK, "http://a.test", true, true},
		{"listed origin", withOrigins(false, "http://a.test"), http.MethodGet, "http://a.test", http.StatusOK, "http://a.test", false, true},
		{"unlisted origin", withOrigins(false, "http://a.test"), http.MethodGet, "http://evil.test", http.StatusOK, "", false, false},
		{"empty allowlist denies", withOrigins(false), http.MethodGet, "http://a.test", http.StatusOK, "", false, false},
		{"preflight", DefaultCORSConfig(), http.MethodOptions, "http://a.test", http.StatusNoContent, "*", false, true},
		{"preflight from unlisted origin", withOrigins(false, "http://a.test"), http.MethodOptions, "http://evil.test", http.StatusNotFound, "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupCORSRouter(tt.cfg)
			req := httptest.NewRequest(tt.method, "/api/v1/console/brands", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			h := w.Header()
			if got := h.Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := h.Get("Access-Control-Allow-Credentials") == "true"; got != tt.wantCreds {
				t.Errorf("Allow-Credentials = %v, want %v", got, tt.wantCreds)
			}
			if got := h.Get("Access-Control-Allow-Methods") != ""; got != tt.wantHeaders {
				t.Errorf("Allow-Methods present = %v, want %v", got, tt.wantHeaders)
			}
			if tt.wantHeaders {
				if h.Get("Access-Control-Max-Age") != "86400" {
					t.Errorf("Max-Age = %q, want 86400", h.Get("Access-Control-Max-Age"))
				}
				if h.Get("Access-Control-Expose-Headers") == "" {
					t.Error("expected Expose-Headers")
				}
			}
			if tt.origin != "" && h.Get("Vary") != "Origin" {
				t.Errorf("Vary = %q, want Origin", h.Get("Vary"))
			}
		})
	}
}

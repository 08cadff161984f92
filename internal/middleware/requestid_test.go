package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/shopconsole/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupRequestIDRouter echoes the id seen by gin, by the log context and by
// the domain context, separated by "|".
func setupRequestIDRouter(cfg RequestIDConfig) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDWithConfig(cfg))
	r.GET("/test", func(c *gin.Context) {
		ctx := c.Request.Context()
		c.String(http.StatusOK, strings.Join([]string{
			GetRequestID(c),
			findAttrValue(logger.FromContext(ctx), "request_id"),
			domain.RequestIDFrom(ctx),
		}, "|"))
	})
	return r
}

func findAttrValue(attrs []slog.Attr, key string) string {
	for _, a := range attrs {
		if a.Key == key {
			return a.Value.String()
		}
	}
	return ""
}

func TestRequestID_GeneratesUUID(t *testing.T) {
	r := setupRequestIDRouter(RequestIDConfig{})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(requestIDHeader, "upstream-id")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	id := w.Header().Get(requestIDHeader)
	if err := uuid.Validate(id); err != nil {
		t.Fatalf("X-Request-ID = %q, want a UUID: %v", id, err)
	}
	if want := id + "|" + id + "|" + id; w.Body.String() != want {
		t.Errorf("ids = %q, want %q", w.Body.String(), want)
	}
}

func TestRequestID_TrustUpstream(t *testing.T) {
	tests := []struct {
		name     string
		upstream string
		reuse    bool
	}{
		{"valid id reused", "test-req-id-789", true},
		{"too long replaced", strings.Repeat("a", 65), false},
		{"bad characters replaced", "id with spaces", false},
		{"missing header", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRequestIDRouter(RequestIDConfig{TrustUpstream: true})
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.upstream != "" {
				req.Header.Set(requestIDHeader, tt.upstream)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(requestIDHeader)
			if tt.reuse && got != tt.upstream {
				t.Errorf("id = %q, want %q", got, tt.upstream)
			}
			if !tt.reuse && uuid.Validate(got) != nil {
				t.Errorf("id = %q, want a fresh UUID", got)
			}
		})
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	r := setupRequestIDRouter(RequestIDConfig{})
	seen := make(map[string]bool)
	for range 20 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		id := w.Header().Get(requestIDHeader)
		if seen[id] {
			t.Fatalf("duplicate request id %q", id)
		}
		seen[id] = true
	}
}

func TestGetRequestID_Empty(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := GetRequestID(c); got != "" {
		t.Errorf("expected empty id, got %q", got)
	}
}

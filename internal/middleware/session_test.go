package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/shopconsole/internal/domain"
)

func setupSessionRouter(cfg SessionConfig) *gin.Engine {
	r := gin.New()
	r.Use(Session(cfg))
	r.GET("/id", func(c *gin.Context) {
		ctx := c.Request.Context()
		if domain.SessionIDFrom(ctx) != GetSessionID(c) ||
			findAttrValue(logger.FromContext(ctx), "session_id") != GetSessionID(c) {
			c.String(http.StatusInternalServerError, "mismatch")
			return
		}
		c.String(http.StatusOK, GetSessionID(c))
	})
	return r
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	return nil
}

func TestSession_IssuesCookie(t *testing.T) {
	r := setupSessionRouter(SessionConfig{TTL: time.Hour, Secure: true})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", w.Code, w.Body.String())
	}
	c := sessionCookie(w)
	if c == nil {
		t.Fatal("expected a session cookie")
	}
	if uuid.Validate(c.Value) != nil || c.Value != w.Body.String() {
		t.Errorf("cookie = %q, body = %q, want the same UUID", c.Value, w.Body.String())
	}
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode || c.MaxAge != 3600 {
		t.Errorf("cookie attributes = %+v", c)
	}
}

func TestSession_ReusesValidCookie(t *testing.T) {
	r := setupSessionRouter(SessionConfig{})
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: id})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Body.String() != id {
		t.Errorf("session id = %q, want %q", w.Body.String(), id)
	}
}

func TestSession_ReplacesMalformedCookie(t *testing.T) {
	r := setupSessionRouter(SessionConfig{})

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "../../etc/passwd"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	got := w.Body.String()
	if got == "../../etc/passwd" || uuid.Validate(got) != nil {
		t.Errorf("session id = %q, want a fresh UUID", got)
	}
}

func TestGetSessionID_Empty(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := GetSessionID(c); got != "" {
		t.Errorf("expected empty id, got %q", got)
	}
}

package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/shopconsole/internal/domain"
)

const (
	sessionCookieName = "console_session"
	sessionContextKey = "session_id"
)

// SessionConfig controls the console session cookie.
type SessionConfig struct {
	// TTL is the cookie lifetime, refreshed on every request.
	TTL time.Duration
	// Secure sets the Secure cookie flag.
	Secure bool
}

// Session returns a gin middleware that identifies the operator's console
// session by cookie, issuing a new random id when the cookie is missing or
// malformed.
//
// The session id is:
//   - Stored in gin.Context under the key "session_id"
//   - Stored in the request context via domain.WithSessionID
//   - Attached to log records via logger.WithContextAttrs
func Session(cfg SessionConfig) gin.HandlerFunc {
	maxAge := int(cfg.TTL / time.Second)
	return func(c *gin.Context) {
		id, err := c.Cookie(sessionCookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}

		http.SetCookie(c.Writer, &http.Cookie{
			Name:     sessionCookieName,
			Value:    id,
			Path:     "/",
			MaxAge:   maxAge,
			HttpOnly: true,
			Secure:   cfg.Secure,
			SameSite: http.SameSiteLaxMode,
		})
		c.Set(sessionContextKey, id)

		ctx := domain.WithSessionID(c.Request.Context(), id)
		ctx = logger.WithContextAttrs(ctx, slog.String("session_id", id))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetSessionID extracts the console session id from the gin.Context.
// Returns an empty string if the Session middleware did not run.
func GetSessionID(c *gin.Context) string {
	if id, exists := c.Get(sessionContextKey); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

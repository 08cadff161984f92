package middleware

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	csrfCookieName = "_csrf_token"
	csrfFormField  = "_csrf_token"
	csrfHeaderName = "X-CSRF-Token"
	csrfContextKey = "CSRFToken"
)

// CSRFConfig configures the CSRF middleware.
type CSRFConfig struct {
	// Secret signs tokens with HMAC-SHA256. Required.
	Secret string
	// Secure sets the Secure cookie flag. Defaults to true in release mode.
	Secure *bool
}

// CSRF protects a route group with the given secret. See CSRFWithConfig.
func CSRF(secret string) gin.HandlerFunc {
	return CSRFWithConfig(CSRFConfig{Secret: secret})
}

// CSRFWithConfig returns a double-submit-cookie CSRF middleware for the
// console pages and the console JSON API, which both ride on the session
// cookie.
//
// Token format: hex(nonce) + "." + base64url(HMAC-SHA256(nonce, secret))
//
// Safe methods get a token cookie (readable by scripts, SameSite=Strict) when
// none is present, and the token is exposed to templates as "CSRFToken".
// Unsafe methods must echo the cookie in the "_csrf_token" form field or the
// X-CSRF-Token header; otherwise the request is rejected with 403.
func CSRFWithConfig(cfg CSRFConfig) gin.HandlerFunc {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return func(c *gin.Context) {
			abortCSRF(c, http.StatusInternalServerError, "csrf secret is required")
		}
	}
	secure := gin.Mode() == gin.ReleaseMode
	if cfg.Secure != nil {
		secure = *cfg.Secure
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			token, err := c.Cookie(csrfCookieName)
			if err != nil || !validToken(token, secret) {
				if token, err = generateToken(secret); err != nil {
					abortCSRF(c, http.StatusInternalServerError, "failed to generate csrf token")
					return
				}
				setCSRFCookie(c, token, secure)
			}
			c.Set(csrfContextKey, token)
			c.Next()

		default:
			cookieToken, err := c.Cookie(csrfCookieName)
			if err != nil || cookieToken == "" {
				abortCSRF(c, http.StatusForbidden, "csrf token missing")
				return
			}
			requestToken := c.GetHeader(csrfHeaderName)
			if requestToken == "" && !strings.HasPrefix(c.ContentType(), "application/json") {
				requestToken = c.PostForm(csrfFormField)
			}
			if requestToken == "" {
				abortCSRF(c, http.StatusForbidden, "csrf token missing")
				return
			}
			if !validToken(cookieToken, secret) || !validToken(requestToken, secret) ||
				!tokensMatch(cookieToken, requestToken) {
				abortCSRF(c, http.StatusForbidden, "csrf token invalid")
				return
			}
			c.Set(csrfContextKey, cookieToken)
			c.Next()
		}
	}
}

// GetCSRFToken retrieves the CSRF token stored in gin.Context by the CSRF middleware.
// Returns an empty string if no token is available.
func GetCSRFToken(c *gin.Context) string {
	if token, exists := c.Get(csrfContextKey); exists {
		if s, ok := token.(string); ok {
			return s
		}
	}
	return ""
}

func abortCSRF(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"code": status, "message": msg, "data": nil})
}

func generateToken(secret string) (string, error) {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	n := hex.EncodeToString(nonce)
	return n + "." + signNonce(n, secret), nil
}

func signNonce(nonce, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(nonce))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// validToken checks the token format and its HMAC signature.
func validToken(token, secret string) bool {
	nonce, sig, ok := strings.Cut(token, ".")
	if !ok || nonce == "" || sig == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(sig), []byte(signNonce(nonce, secret))) == 1
}

func tokensMatch(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func setCSRFCookie(c *gin.Context, token string, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

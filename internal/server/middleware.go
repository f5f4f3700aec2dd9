package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// bearerAuth rejects requests without an Authorization header with 403 and
// requests carrying the wrong scheme or token with 401.
func bearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Not authenticated",
			})
			return
		}

		scheme, credentials, _ := strings.Cut(authHeader, " ")
		if scheme != "Bearer" || token == "" || subtle.ConstantTimeCompare([]byte(credentials), []byte(token)) != 1 {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or missing token",
			})
			return
		}
		c.Next()
	}
}

// requestLogger logs one line per request after it completes.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= http.StatusInternalServerError {
			event = logger.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status_code", status).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	}
}

package daemon

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"karaoke/internal/api"
	"karaoke/internal/logging"
	"karaoke/internal/services"
)

const codeUnauthorized = "UNAUTHORIZED"

// authMiddleware validates bearer tokens. An empty token disables
// authentication.
func authMiddleware(token string) gin.HandlerFunc {
	if token == "" {
		return func(c *gin.Context) { c.Next() }
	}
	want := []byte(token)
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		got, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized", Code: codeUnauthorized})
			return
		}
		c.Next()
	}
}

// requestContext tags every request with a correlation id (echoed back in
// X-Request-ID) and the client address.
func requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(api.RequestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Header(api.RequestIDHeader, id)
		ctx := services.WithRequestID(c.Request.Context(), id)
		ctx = services.WithClient(ctx, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *apiServer) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		logger := logging.WithContext(c.Request.Context(), s.logger)
		attrs := logging.Args(
			logging.String("method", c.Request.Method),
			logging.String("route", c.FullPath()),
			logging.Int("status", status),
			logging.Duration("elapsed", time.Since(start)),
		)
		switch {
		case status >= http.StatusInternalServerError:
			logger.Warn("request failed", attrs...)
		default:
			logger.Debug("request served", attrs...)
		}
	}
}

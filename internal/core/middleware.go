package core

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// loggerMiddleware logs incoming requests and outgoing responses
func (s *Server) loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.logger.Info("incoming request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("remote_addr", c.Request.RemoteAddr),
		)

		c.Next()

		s.logger.Info("outgoing response",
			zap.Int("status", c.Writer.Status()),
			zap.Int("size", c.Writer.Size()),
		)
	}
}

// recoveryMiddleware recovers from panics and returns 500 error
func (s *Server) recoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
				)
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// logRequestHeaders logs all request headers at debug level, masking
// credential-bearing values. Headers are only observed, never enforced.
func (s *Server) logRequestHeaders(c *gin.Context, msg string) {
	fields := make([]zap.Field, 0, len(c.Request.Header)+1)
	fields = append(fields, zap.String("path", c.Request.URL.Path))
	for key, values := range c.Request.Header {
		value := strings.Join(values, ", ")
		if isSensitiveHeader(key) {
			value = maskHeaderValue(value)
		}
		fields = append(fields, zap.String("header."+strings.ToLower(key), value))
	}
	s.logger.Debug(msg, fields...)
}

func isSensitiveHeader(key string) bool {
	switch strings.ToLower(key) {
	case "authorization", "x-api-key":
		return true
	}
	return false
}

// maskHeaderValue keeps a short prefix so operators can still recognize the
// token scheme in logs.
func maskHeaderValue(value string) string {
	if len(value) <= 20 {
		return fmt.Sprintf("%s...(%d chars)", value, len(value))
	}
	return fmt.Sprintf("%s...(%d chars)", value[:20], len(value))
}

package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sessionIDKey = "survey.session_id"

// sessionMiddleware makes sure every page request carries a session id,
// issuing a new session cookie on first visit.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := readSessionCookie(c.Request)
		if !ok {
			sessionID = uuid.NewString()
			s.cookies.writeSession(c.Writer, sessionID)
		}

		c.Set(sessionIDKey, sessionID)
		c.Next()
	}
}

// sessionID returns the id set by sessionMiddleware
func sessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

// noStore disables caching of pages that depend on session state
func noStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}

// requestLogger is a middleware for request logging
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		duration := time.Since(start)

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", duration),
			zap.String("client_ip", c.ClientIP()))
	}
}

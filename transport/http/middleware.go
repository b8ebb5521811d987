package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/xrpstake/stakeboard/core"
	"github.com/xrpstake/stakeboard/ports"
)

const sessionContextKey = "session"

// RequireSession rejects requests without a session cookie.
func RequireSession(sessions ports.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := sessions.Get(c.Request)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
			return
		}

		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// sessionFrom returns the session set by RequireSession, or nil.
func sessionFrom(c *gin.Context) *core.Session {
	value, exists := c.Get(sessionContextKey)
	if !exists {
		return nil
	}
	session, ok := value.(*core.Session)
	if !ok {
		return nil
	}
	return session
}

// RouteGuard applies the page access policy: unauthenticated visitors
// are sent to the login page, and an authenticated visit to the login
// page goes back to the dashboard.
func RouteGuard(sessions ports.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, authenticated := sessions.Get(c.Request)
		onLoginPage := c.Request.URL.Path == "/login"

		switch {
		case !authenticated && !onLoginPage:
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
		case authenticated && onLoginPage:
			c.Redirect(http.StatusFound, "/")
			c.Abort()
		default:
			c.Next()
		}
	}
}

// RequestLogger logs one line per request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}

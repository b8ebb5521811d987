// Package http wires the Gin router for the staking dashboard backend.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/xrpstake/stakeboard/ports"
)

// SetupRouter sets up the Gin router.
func SetupRouter(handlers *Handlers, sessions ports.SessionStore, log zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log))

	auth := router.Group("/auth")
	{
		auth.GET("/check", handlers.AuthCheck)
		auth.POST("/login/start", handlers.LoginStart)
		auth.GET("/login/callback", handlers.LoginCallback)
		auth.GET("/login/wait", handlers.LoginWait)
		auth.POST("/logout", handlers.Logout)
	}

	escrow := router.Group("/escrow")
	escrow.Use(RequireSession(sessions))
	{
		escrow.POST("/create", handlers.EscrowCreate)
		escrow.GET("/list", handlers.EscrowList)
		escrow.POST("/finish", handlers.EscrowFinish)
		escrow.POST("/finalize", handlers.EscrowFinalize)
	}

	guard := RouteGuard(sessions)
	router.GET("/", guard, handlers.Dashboard)
	router.GET("/login", guard, handlers.LoginPage)

	// Unregistered paths follow the same page policy.
	router.NoRoute(func(c *gin.Context) {
		if _, ok := sessions.Get(c.Request); !ok {
			c.Redirect(http.StatusFound, "/login")
			return
		}
		c.Status(http.StatusNotFound)
	})

	return router
}

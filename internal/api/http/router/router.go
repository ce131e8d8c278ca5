// Package router wires the HTTP routes to their handlers.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/irozhkov/library-server/internal/api/http/handler"
	"github.com/irozhkov/library-server/internal/api/http/middleware"
	"github.com/irozhkov/library-server/internal/logger"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	Book      *handler.BookHandler
	Borrowing *handler.BorrowingHandler
	Dashboard *handler.DashboardHandler
}

// New builds the gin engine with all routes registered. Signup, login
// and the health check are public; everything else sits behind the
// bearer-token middleware.
func New(h Handlers, authenticate *middleware.Authenticate, log *logger.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.NewLogging(log).Handler())

	engine.POST("/signup", h.Auth.Signup)
	engine.POST("/login", h.Auth.Login)
	engine.DELETE("/logout", h.Auth.Logout)
	engine.GET("/up", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	authenticated := engine.Group("/", authenticate.Handler())
	{
		authenticated.GET("/books", h.Book.List)
		authenticated.GET("/books/:id", h.Book.Get)
		authenticated.POST("/books", h.Book.Create)
		authenticated.PUT("/books/:id", h.Book.Update)
		authenticated.DELETE("/books/:id", h.Book.Delete)

		authenticated.GET("/borrowings", h.Borrowing.List)
		authenticated.GET("/borrowings/:id", h.Borrowing.Get)
		authenticated.POST("/borrowings", h.Borrowing.Create)
		authenticated.PATCH("/borrowings/:id/return", h.Borrowing.Return)

		authenticated.GET("/dashboard", h.Dashboard.Show)
	}

	return engine
}

// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/craftlink/appointments/internal/handler"
	"github.com/craftlink/appointments/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication and no
// dependencies. Currently that is only the health check used by load
// balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints. Unauthenticated
// operations live under /v1/auth; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.POST("/auth/logout-all", a.LogoutAll)
}

// RegisterPublic registers the unauthenticated browse endpoints: craftsman
// search and profiles, open slots and ratings. The cache middleware is
// applied here and only here; authenticated routes never pass through it.
func RegisterPublic(e *echo.Echo, ch *handler.CraftsmanHandler, sh *handler.SlotHandler, rh *handler.RatingHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", cache)
	g.GET("/craftsmen", ch.ListCraftsmen)
	g.GET("/craftsmen/:id", ch.GetCraftsman)
	g.GET("/craftsmen/:id/slots", sh.ListAvailable)
	g.GET("/craftsmen/:id/ratings", rh.ListRatings)
	g.GET("/slots/:id", sh.GetSlot)
}

package router

import (
	"github.com/labstack/echo/v4"

	"github.com/craftlink/appointments/internal/handler"
	"github.com/craftlink/appointments/internal/middleware"
)

// RegisterCraftsman registers CRAFTSMAN-scoped endpoints under /v1. All
// routes require a valid JWT and the CRAFTSMAN role. Craftsmen manage
// their profile, their calendar and the bookings made against it.
func RegisterCraftsman(e *echo.Echo, ch *handler.CraftsmanHandler, sh *handler.SlotHandler, bh *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CRAFTSMAN"),
	)

	// ---- Profile ----
	g.POST("/craftsmen/me", ch.CreateProfile)
	g.PUT("/craftsmen/me", ch.UpdateProfile)
	g.GET("/craftsmen/me", ch.MyProfile)

	// ---- Calendar ----
	g.POST("/slots", sh.CreateSlot)
	g.GET("/slots", sh.ListMySlots)
	g.DELETE("/slots/:id", sh.DeleteSlot)

	// ---- Bookings ----
	// Listing lives under /v1/craftsman to avoid colliding with the
	// client-facing /v1/bookings route.
	g.GET("/craftsman/bookings", bh.ListCraftsmanBookings)
	g.PATCH("/bookings/:id/status", bh.UpdateStatus)
}

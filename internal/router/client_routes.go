package router

import (
	"github.com/labstack/echo/v4"

	"github.com/craftlink/appointments/internal/handler"
	"github.com/craftlink/appointments/internal/middleware"
)

// RegisterClient registers CLIENT-scoped endpoints under /v1. Clients book
// open slots, list their own bookings and rate craftsmen they hired.
func RegisterClient(e *echo.Echo, bh *handler.BookingHandler, rh *handler.RatingHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CLIENT"),
	)
	g.POST("/craftsmen/:id/bookings", bh.CreateBooking)
	g.GET("/bookings", bh.ListMyBookings)
	g.POST("/craftsmen/:id/ratings", rh.AddRating)
	g.GET("/craftsmen/:id/ratings/me", rh.MyRating)
}

// RegisterBookingShared registers the booking endpoints both sides of an
// appointment may call. Ownership is checked in the handlers, so the route
// group only demands a known role.
func RegisterBookingShared(e *echo.Echo, bh *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CLIENT", "CRAFTSMAN"),
	)
	g.GET("/bookings/:id", bh.GetBooking)
	g.POST("/bookings/:id/cancel", bh.CancelBooking)
}

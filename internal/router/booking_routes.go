package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
)

// RegisterBooking registers customer-scoped endpoints under
// /v1/bookings.  All routes require a valid JWT and the CUSTOMER role.
// Customers can hold seats, confirm them into a booking, release their
// own holds and view their bookings.
func RegisterBooking(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1/bookings",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
	)
	g.POST("/hold", h.Hold)
	g.POST("/confirm", h.Confirm)
	g.POST("/release", h.Release)
	g.GET("", h.List)
	// ?qr=1 returns the ticket as a PNG QR code.
	g.GET("/:id", h.Get)
}

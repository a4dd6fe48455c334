package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/handler"
)

// RegisterPublic registers unauthenticated browse endpoints.  Guests
// can list movies, drill into shows and preview seat availability
// before registering.  When a cache middleware is provided, the browse
// routes are served through it.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	mw := []echo.MiddlewareFunc{}
	if cache != nil {
		mw = append(mw, cache)
	}
	e.GET("/v1/movies", p.ListMovies, mw...)
	e.GET("/v1/movies/:id", p.GetMovie, mw...)
	e.GET("/v1/movies/:id/shows", p.ListShows, mw...)
	e.GET("/v1/shows/:id", p.GetShow, mw...)
	// The seat map is deliberately uncached: customers pick seats off
	// this response and a stale map inflates hold conflicts.
	e.GET("/v1/shows/:id/seats", p.ListSeats)
}

// Package catalog manages movies, theaters and shows.  The reservation
// core consumes it only to resolve shows; seat state lives in the seat
// store, which the catalog populates once at show creation.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// ErrMovieNotFound is returned when no movie exists for the id.
var ErrMovieNotFound = errors.New("movie not found")

// ErrTheaterNotFound is returned when no theater exists for the id.
var ErrTheaterNotFound = errors.New("theater not found")

// ErrShowNotFound is returned when no show exists for the id.
var ErrShowNotFound = errors.New("show not found")

// Catalog is the movie / theater / show inventory.
type Catalog interface {
	CreateMovie(ctx context.Context, m model.Movie) (model.Movie, error)
	GetMovies(ctx context.Context) ([]model.Movie, error)
	GetMovieByID(ctx context.Context, id uint64) (model.Movie, error)

	CreateTheater(ctx context.Context, t model.Theater) (model.Theater, error)
	GetTheaterByID(ctx context.Context, id uint64) (model.Theater, error)

	// CreateShow registers a show.  The movie and theater must exist.
	// Seat creation is the caller's job (admin handler), so the seat
	// grid and the show row always come from the same request.
	CreateShow(ctx context.Context, s model.Show) (model.Show, error)
	GetShowByID(ctx context.Context, id uint64) (model.Show, error)

	// GetShowsForMovie lists active shows for a movie, soonest first.
	// A non-nil date restricts results to that calendar day (UTC).
	GetShowsForMovie(ctx context.Context, movieID uint64, date *time.Time) ([]model.Show, error)
}

// Package ledger is the durable, append-only record of confirmed
// bookings.  Entries are written exactly once by the reservation
// manager and never updated or deleted; the seat list inside each
// booking is a snapshot, not a live view of the seat store.
package ledger

import (
	"context"
	"errors"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// ErrBookingNotFound is returned when no booking exists for the id.
var ErrBookingNotFound = errors.New("booking not found")

// BookingLedger stores confirmed bookings.  Create assigns the
// identifier and creation timestamp; the other methods are read-only.
type BookingLedger interface {
	// Create appends a booking and returns it with ID and CreatedAt
	// populated.  The input's seat list and totals are stored as-is.
	Create(ctx context.Context, b model.Booking) (model.Booking, error)

	// FindByID returns one booking.
	FindByID(ctx context.Context, id uint64) (model.Booking, error)

	// FindByUser returns the user's bookings, newest first.
	FindByUser(ctx context.Context, userID uint64) ([]model.Booking, error)

	// FindByShow returns all confirmed bookings for a show.  Used for
	// occupancy reporting, never for locking decisions.
	FindByShow(ctx context.Context, showID uint64) ([]model.Booking, error)
}

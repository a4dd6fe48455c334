// Package store holds the authoritative per-show seat state.  All
// mutation goes through Transition, an atomic compare-and-swap keyed by
// (show, seat): a transition succeeds only if the seat's current state
// still matches the expected precondition.  Higher layers never write
// seat fields directly; this is the single correctness anchor that
// prevents two concurrent customers from both winning the same seat.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// ErrShowNotFound is returned when the show has no seats registered.
var ErrShowNotFound = errors.New("show not found")

// ErrSeatNotFound is returned when the seat does not exist in the show.
var ErrSeatNotFound = errors.New("seat not found")

// ErrConflict is returned when a transition's precondition no longer
// holds: the seat's status, holder or expiry changed since the caller
// last observed it.  Handlers translate this into HTTP 409.
var ErrConflict = errors.New("seat state conflict")

// Transition describes one atomic state change.  From, and optionally
// ExpectedHolder and IfExpiredBefore, form the precondition; To, Holder
// and ExpiresAt form the new state.
//
// Precondition rules:
//   - the seat's status must equal From;
//   - when ExpectedHolder is nonzero, the seat's holder must match
//     (only meaningful for From = HELD);
//   - when IfExpiredBefore is set, the seat's hold expiry must be at or
//     before that instant.  This is how lapsed holds are reclaimed
//     without ever undoing a hold that was refreshed or just confirmed.
//
// New-state rules: Holder and ExpiresAt are stored when To is HELD and
// cleared otherwise, preserving the invariant that holder and expiry
// are set iff the seat is held.
type Transition struct {
	From            model.SeatStatus
	ExpectedHolder  uint64
	IfExpiredBefore time.Time
	To              model.SeatStatus
	Holder          uint64
	ExpiresAt       time.Time
}

// SeatRef identifies one seat of one show, with the hold expiry
// observed at enumeration time.  Used by the expiry sweeper.
type SeatRef struct {
	ShowID    uint64
	SeatID    uint64
	ExpiresAt time.Time
}

// SeatStore is the seat state table.  Implementations must make
// Transition atomic with respect to all other Transition calls on the
// same (showID, seatID) pair: for a fixed pair the successful
// transitions form a total order, and no two concurrent callers can
// observe the same pre-state and both succeed.
type SeatStore interface {
	// GetSeat returns the current state of one seat.
	GetSeat(ctx context.Context, showID, seatID uint64) (model.Seat, error)

	// ListSeats returns the show's seats ordered by row then column,
	// as rendered in the seat map.
	ListSeats(ctx context.Context, showID uint64) ([]model.Seat, error)

	// Transition applies one compare-and-swap.  Returns ErrConflict
	// when the precondition fails, ErrSeatNotFound / ErrShowNotFound
	// when the target does not exist.
	Transition(ctx context.Context, showID, seatID uint64, t Transition) error

	// CreateSeats registers a show's seat grid.  Called once at show
	// creation; seats are never deleted afterwards.
	CreateSeats(ctx context.Context, showID uint64, seats []model.Seat) error

	// ExpiredHolds enumerates held seats whose expiry is at or before
	// now.  The caller still reclaims each one through Transition, so
	// a stale entry is harmless.
	ExpiredHolds(ctx context.Context, now time.Time) ([]SeatRef, error)
}

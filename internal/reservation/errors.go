// Package reservation implements the hold / confirm / release protocol
// on top of the seat store's compare-and-swap primitive and the
// booking ledger.
package reservation

import "errors"

// ErrNoSeatsAvailable is returned by HoldSeats only when every
// requested seat failed; any partial success is returned as a result
// instead, so the client can re-prompt for just the lost seats.
var ErrNoSeatsAvailable = errors.New("no seats could be held")

// ErrSeatNotFound is returned by ConfirmBooking when a requested seat
// does not exist in the show.
var ErrSeatNotFound = errors.New("seat not found")

// ErrHoldExpiredOrNotOwned is returned by ConfirmBooking when a seat
// is not held by the confirming user, or the hold has lapsed.
var ErrHoldExpiredOrNotOwned = errors.New("hold expired or not owned by user")

// ErrSeatAlreadySold is returned by ConfirmBooking when a seat was
// already sold in an earlier booking cycle.
var ErrSeatAlreadySold = errors.New("seat already sold")

// ErrBookingCreationFailed is returned when the ledger write does not
// produce a valid booking record; all seat transitions are rolled back
// before it is returned.
var ErrBookingCreationFailed = errors.New("booking creation failed")

// Per-seat failure reasons reported inside a HoldResult.
const (
	ReasonSeatNotFound = "seat not found"
	ReasonAlreadySold  = "seat is already sold"
	ReasonAlreadyHeld  = "seat is currently held by another user"
	ReasonHoldLost     = "seat could not be held, it may have just been taken"
)

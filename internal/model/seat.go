package model

import "time"

// SeatStatus enumerates the lifecycle states of a seat within a show.
// A seat starts available, moves to held while a customer is checking
// out, and ends sold once a booking is confirmed.  Sold is terminal for
// a booking cycle; there is no administrative reset.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatHeld      SeatStatus = "HELD"
	SeatSold      SeatStatus = "SOLD"
)

// SeatClass distinguishes pricing tiers within a screen.
type SeatClass string

const (
	SeatRegular SeatClass = "REGULAR"
	SeatPremium SeatClass = "PREMIUM"
)

// Seat is the authoritative per-show seat record.  Holder and
// HoldExpiresAt are both set while the seat is held and both unset
// otherwise; the seat store enforces that invariant on every
// transition.  Version is the optimistic concurrency token bumped on
// each successful transition.
//
// Fields:
//  ID            – seat identifier, unique within its show.
//  ShowID        – show this seat belongs to.
//  Label         – human seat number, e.g. "A1".
//  Row           – row letter, e.g. "A".
//  Column        – column number within the row, starting at 1.
//  Class         – REGULAR or PREMIUM.
//  PriceCents    – price for this seat in cents.
//  Status        – AVAILABLE, HELD or SOLD.
//  Holder        – user holding the seat (0 unless status is HELD).
//  HoldExpiresAt – when the hold lapses (zero unless status is HELD).
//  Version       – optimistic locking counter.
type Seat struct {
	ID            uint64     // show_seats.seat_id
	ShowID        uint64     // show_seats.show_id
	Label         string     // show_seats.label
	Row           string     // show_seats.row_label
	Column        uint32     // show_seats.col_number
	Class         SeatClass  // show_seats.class
	PriceCents    uint32     // show_seats.price_cents
	Status        SeatStatus // show_seats.status
	Holder        uint64     // show_seats.holder_id (0 when not held)
	HoldExpiresAt time.Time  // show_seats.hold_expires_at (zero when not held)
	Version       uint64     // show_seats.version
}

// HeldBy reports whether the seat is currently held by the given user.
// It does not consider expiry; callers that care about lapsed holds
// compare HoldExpiresAt themselves.
func (s Seat) HeldBy(userID uint64) bool {
	return s.Status == SeatHeld && s.Holder == userID
}

// HoldExpired reports whether the seat carries a hold that has lapsed
// at the given instant.
func (s Seat) HoldExpired(now time.Time) bool {
	return s.Status == SeatHeld && !s.HoldExpiresAt.After(now)
}

package reservation

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/ledger"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/store"
)

// DefaultHoldTTL is how long a hold lives before the sweeper may
// reclaim it.
const DefaultHoldTTL = 300 * time.Second

// HeldSeat is one successfully held seat, with the price snapshot the
// confirmation step will charge.
type HeldSeat struct {
	SeatID     uint64    `json:"seat_id"`
	Label      string    `json:"seat_number"`
	PriceCents uint32    `json:"price_cents"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// FailedSeat reports why one seat of a bulk hold request was not held.
type FailedSeat struct {
	SeatID uint64 `json:"seat_id"`
	Reason string `json:"reason"`
}

// HoldResult is the partial-success outcome of HoldSeats.
type HoldResult struct {
	Held   []HeldSeat   `json:"held"`
	Failed []FailedSeat `json:"failed"`
}

// Manager enforces the three-phase protocol across a set of seats.  It
// owns the hold TTL; all seat state goes through the store's
// compare-and-swap and all durable booking state through the ledger.
// The zero clock defaults to UTC wall time; tests inject their own.
type Manager struct {
	store   store.SeatStore
	ledger  ledger.BookingLedger
	holdTTL time.Duration
	now     func() time.Time
}

// NewManager constructs a Manager.  A non-positive ttl falls back to
// DefaultHoldTTL.
func NewManager(st store.SeatStore, lg ledger.BookingLedger, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultHoldTTL
	}
	return &Manager{
		store:   st,
		ledger:  lg,
		holdTTL: ttl,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the manager's time source.  Tests use this to step
// past hold expiry without sleeping.
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

// HoldTTL returns the configured hold duration.
func (m *Manager) HoldTTL() time.Duration { return m.holdTTL }

// HoldSeats attempts to hold each requested seat for the holder.
// Seats are processed independently: failures are collected per seat
// and the successes are returned alongside them.  A seat already held
// by the same user is refreshed rather than rejected.  An expired
// foreign hold is reclaimed first, then contended for like any
// available seat.  Only when every seat fails does the whole call fail
// with ErrNoSeatsAvailable.
func (m *Manager) HoldSeats(ctx context.Context, showID uint64, seatIDs []uint64, holder uint64) (HoldResult, error) {
	var res HoldResult
	now := m.now()
	expiresAt := now.Add(m.holdTTL)

	for _, seatID := range seatIDs {
		seat, err := m.store.GetSeat(ctx, showID, seatID)
		if errors.Is(err, store.ErrShowNotFound) {
			return HoldResult{}, err
		}
		if errors.Is(err, store.ErrSeatNotFound) {
			res.Failed = append(res.Failed, FailedSeat{SeatID: seatID, Reason: ReasonSeatNotFound})
			continue
		}
		if err != nil {
			return HoldResult{}, err
		}

		switch {
		case seat.Status == model.SeatSold:
			res.Failed = append(res.Failed, FailedSeat{SeatID: seatID, Reason: ReasonAlreadySold})
			continue

		case seat.HeldBy(holder) && !seat.HoldExpired(now):
			// Same user re-requesting a live hold: refresh the expiry.
			err = m.store.Transition(ctx, showID, seatID, store.Transition{
				From: model.SeatHeld, ExpectedHolder: holder,
				To: model.SeatHeld, Holder: holder, ExpiresAt: expiresAt,
			})

		case seat.Status == model.SeatHeld && !seat.HoldExpired(now):
			res.Failed = append(res.Failed, FailedSeat{SeatID: seatID, Reason: ReasonAlreadyHeld})
			continue

		default:
			// Available, or held with a lapsed expiry.  Reclaim the
			// lapsed hold through the guarded transition, then contend
			// for the seat; losing either race is an ordinary failure.
			if seat.Status == model.SeatHeld {
				_ = m.store.Transition(ctx, showID, seatID, store.Transition{
					From: model.SeatHeld, IfExpiredBefore: now, To: model.SeatAvailable,
				})
			}
			err = m.store.Transition(ctx, showID, seatID, store.Transition{
				From: model.SeatAvailable,
				To:   model.SeatHeld, Holder: holder, ExpiresAt: expiresAt,
			})
		}

		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				res.Failed = append(res.Failed, FailedSeat{SeatID: seatID, Reason: ReasonHoldLost})
				continue
			}
			return HoldResult{}, err
		}
		res.Held = append(res.Held, HeldSeat{
			SeatID: seatID, Label: seat.Label, PriceCents: seat.PriceCents, ExpiresAt: expiresAt,
		})
	}

	if len(res.Held) == 0 {
		return res, ErrNoSeatsAvailable
	}
	return res, nil
}

// ConfirmBooking finalizes a hold after payment.  Unlike HoldSeats it
// is all-or-nothing: every seat must still be held by the user and
// unexpired.  Seats are transitioned held→sold first, and the booking
// is only written once all transitions succeeded; any failure rolls
// the already-sold seats back to held with their original expiry, so
// the ledger can never reference seats the store does not agree are
// sold.
func (m *Manager) ConfirmBooking(ctx context.Context, holder, showID uint64, seatIDs []uint64, paymentRef string) (model.Booking, error) {
	now := m.now()

	snapshots := make([]model.Seat, 0, len(seatIDs))
	var total uint32
	for _, seatID := range seatIDs {
		seat, err := m.store.GetSeat(ctx, showID, seatID)
		if errors.Is(err, store.ErrSeatNotFound) || errors.Is(err, store.ErrShowNotFound) {
			return model.Booking{}, ErrSeatNotFound
		}
		if err != nil {
			return model.Booking{}, err
		}
		if seat.Status == model.SeatSold {
			return model.Booking{}, ErrSeatAlreadySold
		}
		if !seat.HeldBy(holder) || seat.HoldExpired(now) {
			return model.Booking{}, ErrHoldExpiredOrNotOwned
		}
		snapshots = append(snapshots, seat)
		total += seat.PriceCents
	}

	sold := make([]model.Seat, 0, len(snapshots))
	for _, seat := range snapshots {
		err := m.store.Transition(ctx, showID, seat.ID, store.Transition{
			From: model.SeatHeld, ExpectedHolder: holder, To: model.SeatSold,
		})
		if err != nil {
			m.rollbackSold(ctx, showID, holder, sold)
			if errors.Is(err, store.ErrConflict) {
				return model.Booking{}, ErrHoldExpiredOrNotOwned
			}
			return model.Booking{}, err
		}
		sold = append(sold, seat)
	}

	seats := make([]model.BookingSeat, 0, len(snapshots))
	for _, seat := range snapshots {
		seats = append(seats, model.BookingSeat{SeatID: seat.ID, Label: seat.Label, PriceCents: seat.PriceCents})
	}
	booking, err := m.ledger.Create(ctx, model.Booking{
		UserID:           holder,
		ShowID:           showID,
		Seats:            seats,
		TotalAmountCents: total,
		PaymentRef:       paymentRef,
	})
	if err != nil || booking.ID == 0 {
		m.rollbackSold(ctx, showID, holder, sold)
		if err != nil {
			log.Printf("reservation: ledger write failed for user %d show %d: %v", holder, showID, err)
		}
		return model.Booking{}, ErrBookingCreationFailed
	}
	return booking, nil
}

// rollbackSold reverts seats transitioned during a failed confirm back
// to held, restoring each seat's original holder and expiry.
func (m *Manager) rollbackSold(ctx context.Context, showID, holder uint64, sold []model.Seat) {
	for _, seat := range sold {
		if err := m.store.Transition(ctx, showID, seat.ID, store.Transition{
			From: model.SeatSold,
			To:   model.SeatHeld, Holder: holder, ExpiresAt: seat.HoldExpiresAt,
		}); err != nil {
			log.Printf("reservation: rollback of seat %d in show %d failed: %v", seat.ID, showID, err)
		}
	}
}

// ReleaseSeats returns the caller's holds on the given seats to
// available.  Release is best-effort and never fails the whole call:
// seats not held, already sold, or held by someone else are skipped.
// Requiring the holder to match means one user can never strip
// another's active hold.
func (m *Manager) ReleaseSeats(ctx context.Context, showID uint64, seatIDs []uint64, holder uint64) (int, error) {
	released := 0
	for _, seatID := range seatIDs {
		err := m.store.Transition(ctx, showID, seatID, store.Transition{
			From: model.SeatHeld, ExpectedHolder: holder, To: model.SeatAvailable,
		})
		switch {
		case err == nil:
			released++
		case errors.Is(err, store.ErrShowNotFound):
			return released, err
		case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrSeatNotFound):
			// skip
		default:
			return released, err
		}
	}
	return released, nil
}

package reservation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/ledger"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/store"
)

const (
	showX = uint64(1)
	userA = uint64(100)
	userB = uint64(200)
)

func newFixture(t *testing.T) (*Manager, *store.MemoryStore, *ledger.MemoryLedger) {
	t.Helper()
	st := store.NewMemoryStore()
	require.NoError(t, st.CreateSeats(context.Background(), showX, []model.Seat{
		{ID: 1, Label: "A1", Row: "A", Column: 1, Class: model.SeatPremium, PriceCents: 1000},
		{ID: 2, Label: "A2", Row: "A", Column: 2, Class: model.SeatPremium, PriceCents: 1000},
		{ID: 3, Label: "B1", Row: "B", Column: 1, Class: model.SeatRegular, PriceCents: 700},
		{ID: 4, Label: "C1", Row: "C", Column: 1, Class: model.SeatRegular, PriceCents: 700},
		{ID: 5, Label: "C2", Row: "C", Column: 2, Class: model.SeatRegular, PriceCents: 700},
	}))
	lg := ledger.NewMemoryLedger()
	return NewManager(st, lg, DefaultHoldTTL), st, lg
}

func TestHoldSeatsSuccess(t *testing.T) {
	m, _, _ := newFixture(t)
	start := time.Now().UTC()

	res, err := m.HoldSeats(context.Background(), showX, []uint64{1, 2}, userA)
	require.NoError(t, err)
	require.Len(t, res.Held, 2)
	assert.Empty(t, res.Failed)

	for _, h := range res.Held {
		assert.Equal(t, uint32(1000), h.PriceCents)
		assert.WithinDuration(t, start.Add(300*time.Second), h.ExpiresAt, 2*time.Second)
	}
	assert.Equal(t, "A1", res.Held[0].Label)
	assert.Equal(t, "A2", res.Held[1].Label)
}

func TestHoldSeatsPartialFailure(t *testing.T) {
	m, _, _ := newFixture(t)
	ctx := context.Background()

	_, err := m.HoldSeats(ctx, showX, []uint64{1}, userB)
	require.NoError(t, err)

	res, err := m.HoldSeats(ctx, showX, []uint64{1, 2, 99}, userA)
	require.NoError(t, err)
	require.Len(t, res.Held, 1)
	assert.Equal(t, uint64(2), res.Held[0].SeatID)
	require.Len(t, res.Failed, 2)
	assert.Equal(t, ReasonAlreadyHeld, res.Failed[0].Reason)
	assert.Equal(t, ReasonSeatNotFound, res.Failed[1].Reason)
}

func TestHoldSeatsAllFail(t *testing.T) {
	m, _, _ := newFixture(t)
	ctx := context.Background()

	_, err := m.HoldSeats(ctx, showX, []uint64{1, 2}, userB)
	require.NoError(t, err)

	res, err := m.HoldSeats(ctx, showX, []uint64{1, 2}, userA)
	assert.ErrorIs(t, err, ErrNoSeatsAvailable)
	assert.Empty(t, res.Held)
	assert.Len(t, res.Failed, 2)
}

func TestHoldSeatsRefreshOwnHold(t *testing.T) {
	m, st, _ := newFixture(t)
	ctx := context.Background()

	base := time.Now().UTC()
	clock := base
	m.SetClock(func() time.Time { return clock })

	_, err := m.HoldSeats(ctx, showX, []uint64{1}, userA)
	require.NoError(t, err)

	clock = base.Add(2 * time.Minute)
	res, err := m.HoldSeats(ctx, showX, []uint64{1}, userA)
	require.NoError(t, err)
	require.Len(t, res.Held, 1)

	seat, err := st.GetSeat(ctx, showX, 1)
	require.NoError(t, err)
	assert.Equal(t, userA, seat.Holder)
	assert.Equal(t, clock.Add(300*time.Second), seat.HoldExpiresAt)
}

// Hold A1+A2 as U1, U2 fails on A1, U1 releases A1, U2 retry succeeds.
func TestHoldReleaseRetryScenario(t *testing.T) {
	m, _, _ := newFixture(t)
	ctx := context.Background()

	res, err := m.HoldSeats(ctx, showX, []uint64{1, 2}, userA)
	require.NoError(t, err)
	require.Len(t, res.Held, 2)

	_, err = m.HoldSeats(ctx, showX, []uint64{1}, userB)
	require.ErrorIs(t, err, ErrNoSeatsAvailable)

	released, err := m.ReleaseSeats(ctx, showX, []uint64{1}, userA)
	require.NoError(t, err)
	assert.Equal(t, 1, released)

	res, err = m.HoldSeats(ctx, showX, []uint64{1}, userB)
	require.NoError(t, err)
	require.Len(t, res.Held, 1)
	assert.Equal(t, uint64(1), res.Held[0].SeatID)
}

// A hold whose expiry elapsed must be reclaimable by a different user.
func TestReholdAfterExpiry(t *testing.T) {
	m, _, _ := newFixture(t)
	ctx := context.Background()

	base := time.Now().UTC()
	clock := base
	m.SetClock(func() time.Time { return clock })

	_, err := m.HoldSeats(ctx, showX, []uint64{3}, userA)
	require.NoError(t, err)

	// Before expiry the seat is still owned.
	clock = base.Add(299 * time.Second)
	_, err = m.HoldSeats(ctx, showX, []uint64{3}, userB)
	assert.ErrorIs(t, err, ErrNoSeatsAvailable)

	// Past the TTL the lapsed hold is reclaimed in the same call.
	clock = base.Add(301 * time.Second)
	res, err := m.HoldSeats(ctx, showX, []uint64{3}, userB)
	require.NoError(t, err)
	require.Len(t, res.Held, 1)
}

func TestReleaseRequiresOwnership(t *testing.T) {
	m, st, _ := newFixture(t)
	ctx := context.Background()

	_, err := m.HoldSeats(ctx, showX, []uint64{1}, userA)
	require.NoError(t, err)

	released, err := m.ReleaseSeats(ctx, showX, []uint64{1}, userB)
	require.NoError(t, err)
	assert.Zero(t, released)

	seat, err := st.GetSeat(ctx, showX, 1)
	require.NoError(t, err)
	assert.True(t, seat.HeldBy(userA))
}

func TestReleaseIsBestEffort(t *testing.T) {
	m, _, _ := newFixture(t)
	ctx := context.Background()

	_, err := m.HoldSeats(ctx, showX, []uint64{1, 2}, userA)
	require.NoError(t, err)

	// Mix of owned, never-held and unknown seats: no error, count only owned.
	released, err := m.ReleaseSeats(ctx, showX, []uint64{1, 2, 3, 99}, userA)
	require.NoError(t, err)
	assert.Equal(t, 2, released)
}

// Round-trip: hold C1+C2, confirm, total equals the price sum and the
// seats read back sold.
func TestConfirmRoundTrip(t *testing.T) {
	m, st, _ := newFixture(t)
	ctx := context.Background()

	_, err := m.HoldSeats(ctx, showX, []uint64{4, 5}, userA)
	require.NoError(t, err)

	booking, err := m.ConfirmBooking(ctx, userA, showX, []uint64{4, 5}, "PAY123")
	require.NoError(t, err)
	assert.NotZero(t, booking.ID)
	assert.Equal(t, userA, booking.UserID)
	assert.Equal(t, model.BookingConfirmed, booking.Status)
	assert.Equal(t, "PAY123", booking.PaymentRef)
	assert.Equal(t, uint32(1400), booking.TotalAmountCents)
	require.Len(t, booking.Seats, 2)
	assert.Equal(t, "C1", booking.Seats[0].Label)
	assert.Equal(t, "C2", booking.Seats[1].Label)

	for _, id := range []uint64{4, 5} {
		seat, err := st.GetSeat(ctx, showX, id)
		require.NoError(t, err)
		assert.Equal(t, model.SeatSold, seat.Status)
		assert.Zero(t, seat.Holder)
	}

	// Confirming the same seats again fails: they are sold, not held.
	_, err = m.ConfirmBooking(ctx, userA, showX, []uint64{4, 5}, "PAY124")
	assert.ErrorIs(t, err, ErrSeatAlreadySold)
}

func TestConfirmByNonHolderFails(t *testing.T) {
	m, st, _ := newFixture(t)
	ctx := context.Background()

	_, err := m.HoldSeats(ctx, showX, []uint64{1}, userA)
	require.NoError(t, err)

	_, err = m.ConfirmBooking(ctx, userB, showX, []uint64{1}, "PAY1")
	assert.ErrorIs(t, err, ErrHoldExpiredOrNotOwned)

	// The losing confirm must not disturb the hold.
	seat, err := st.GetSeat(ctx, showX, 1)
	require.NoError(t, err)
	assert.True(t, seat.HeldBy(userA))
}

func TestConfirmAfterExpiryFails(t *testing.T) {
	m, _, _ := newFixture(t)
	ctx := context.Background()

	base := time.Now().UTC()
	clock := base
	m.SetClock(func() time.Time { return clock })

	_, err := m.HoldSeats(ctx, showX, []uint64{1}, userA)
	require.NoError(t, err)

	clock = base.Add(301 * time.Second)
	_, err = m.ConfirmBooking(ctx, userA, showX, []uint64{1}, "PAY1")
	assert.ErrorIs(t, err, ErrHoldExpiredOrNotOwned)
}

func TestConfirmUnknownSeat(t *testing.T) {
	m, _, _ := newFixture(t)
	ctx := context.Background()

	_, err := m.HoldSeats(ctx, showX, []uint64{1}, userA)
	require.NoError(t, err)

	_, err = m.ConfirmBooking(ctx, userA, showX, []uint64{1, 99}, "PAY1")
	assert.ErrorIs(t, err, ErrSeatNotFound)
}

// failingLedger rejects every write, standing in for a broken DB.
type failingLedger struct{}

func (failingLedger) Create(context.Context, model.Booking) (model.Booking, error) {
	return model.Booking{}, errors.New("boom")
}
func (failingLedger) FindByID(context.Context, uint64) (model.Booking, error) {
	return model.Booking{}, ledger.ErrBookingNotFound
}
func (failingLedger) FindByUser(context.Context, uint64) ([]model.Booking, error) { return nil, nil }
func (failingLedger) FindByShow(context.Context, uint64) ([]model.Booking, error) { return nil, nil }

func TestConfirmRollsBackOnLedgerFailure(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, st.CreateSeats(ctx, showX, []model.Seat{
		{ID: 1, Label: "A1", Row: "A", Column: 1, PriceCents: 1000},
		{ID: 2, Label: "A2", Row: "A", Column: 2, PriceCents: 1000},
	}))
	m := NewManager(st, failingLedger{}, DefaultHoldTTL)

	_, err := m.HoldSeats(ctx, showX, []uint64{1, 2}, userA)
	require.NoError(t, err)

	_, err = m.ConfirmBooking(ctx, userA, showX, []uint64{1, 2}, "PAY1")
	assert.ErrorIs(t, err, ErrBookingCreationFailed)

	// Both seats are back to held by the user, still confirmable later.
	for _, id := range []uint64{1, 2} {
		seat, err := st.GetSeat(ctx, showX, id)
		require.NoError(t, err)
		assert.True(t, seat.HeldBy(userA), "seat %d should remain held", id)
	}
}

// Concurrent holds on one seat from many users: exactly one winner.
func TestConcurrentHoldsExactlyOneWins(t *testing.T) {
	m, _, _ := newFixture(t)
	ctx := context.Background()

	const users = 32
	var wg sync.WaitGroup
	winners := make(chan uint64, users)

	for i := 0; i < users; i++ {
		holder := uint64(1000 + i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := m.HoldSeats(ctx, showX, []uint64{3}, holder)
			if err == nil && len(res.Held) == 1 {
				winners <- holder
			}
		}()
	}
	wg.Wait()
	close(winners)

	count := 0
	for range winners {
		count++
	}
	assert.Equal(t, 1, count)
}

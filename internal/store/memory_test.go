package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

func seedShow(t *testing.T, s *MemoryStore, showID uint64) {
	t.Helper()
	seats := []model.Seat{
		{ID: 1, Label: "A1", Row: "A", Column: 1, Class: model.SeatPremium, PriceCents: 1950},
		{ID: 2, Label: "A2", Row: "A", Column: 2, Class: model.SeatPremium, PriceCents: 1950},
		{ID: 3, Label: "B1", Row: "B", Column: 1, Class: model.SeatRegular, PriceCents: 1300},
	}
	require.NoError(t, s.CreateSeats(context.Background(), showID, seats))
}

func TestGetSeatNotFound(t *testing.T) {
	s := NewMemoryStore()
	seedShow(t, s, 7)

	_, err := s.GetSeat(context.Background(), 99, 1)
	assert.ErrorIs(t, err, ErrShowNotFound)

	_, err = s.GetSeat(context.Background(), 7, 42)
	assert.ErrorIs(t, err, ErrSeatNotFound)
}

func TestListSeatsOrdered(t *testing.T) {
	s := NewMemoryStore()
	seedShow(t, s, 7)

	seats, err := s.ListSeats(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, seats, 3)
	assert.Equal(t, "A1", seats[0].Label)
	assert.Equal(t, "A2", seats[1].Label)
	assert.Equal(t, "B1", seats[2].Label)
	for _, seat := range seats {
		assert.Equal(t, model.SeatAvailable, seat.Status)
	}
}

func TestTransitionHoldAndVersionBump(t *testing.T) {
	s := NewMemoryStore()
	seedShow(t, s, 7)
	expires := time.Now().UTC().Add(5 * time.Minute)

	err := s.Transition(context.Background(), 7, 1, Transition{
		From: model.SeatAvailable, To: model.SeatHeld, Holder: 11, ExpiresAt: expires,
	})
	require.NoError(t, err)

	seat, err := s.GetSeat(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Equal(t, model.SeatHeld, seat.Status)
	assert.Equal(t, uint64(11), seat.Holder)
	assert.Equal(t, expires, seat.HoldExpiresAt)
	assert.Equal(t, uint64(1), seat.Version)
}

func TestTransitionConflictOnWrongStatus(t *testing.T) {
	s := NewMemoryStore()
	seedShow(t, s, 7)
	expires := time.Now().UTC().Add(5 * time.Minute)

	require.NoError(t, s.Transition(context.Background(), 7, 1, Transition{
		From: model.SeatAvailable, To: model.SeatHeld, Holder: 11, ExpiresAt: expires,
	}))

	// Second hold attempt sees HELD, not AVAILABLE.
	err := s.Transition(context.Background(), 7, 1, Transition{
		From: model.SeatAvailable, To: model.SeatHeld, Holder: 22, ExpiresAt: expires,
	})
	assert.ErrorIs(t, err, ErrConflict)

	seat, err := s.GetSeat(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), seat.Holder)
}

func TestTransitionHolderMismatch(t *testing.T) {
	s := NewMemoryStore()
	seedShow(t, s, 7)
	expires := time.Now().UTC().Add(5 * time.Minute)

	require.NoError(t, s.Transition(context.Background(), 7, 1, Transition{
		From: model.SeatAvailable, To: model.SeatHeld, Holder: 11, ExpiresAt: expires,
	}))

	// User 22 cannot confirm or release user 11's hold.
	err := s.Transition(context.Background(), 7, 1, Transition{
		From: model.SeatHeld, ExpectedHolder: 22, To: model.SeatSold,
	})
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, s.Transition(context.Background(), 7, 1, Transition{
		From: model.SeatHeld, ExpectedHolder: 11, To: model.SeatSold,
	}))
	seat, err := s.GetSeat(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Equal(t, model.SeatSold, seat.Status)
	assert.Zero(t, seat.Holder)
	assert.True(t, seat.HoldExpiresAt.IsZero())
}

func TestTransitionIfExpiredBefore(t *testing.T) {
	s := NewMemoryStore()
	seedShow(t, s, 7)
	now := time.Now().UTC()

	require.NoError(t, s.Transition(context.Background(), 7, 1, Transition{
		From: model.SeatAvailable, To: model.SeatHeld, Holder: 11, ExpiresAt: now.Add(5 * time.Minute),
	}))

	// Hold is still live: reclaim must fail.
	err := s.Transition(context.Background(), 7, 1, Transition{
		From: model.SeatHeld, IfExpiredBefore: now, To: model.SeatAvailable,
	})
	assert.ErrorIs(t, err, ErrConflict)

	// Past the expiry the same reclaim succeeds.
	err = s.Transition(context.Background(), 7, 1, Transition{
		From: model.SeatHeld, IfExpiredBefore: now.Add(6 * time.Minute), To: model.SeatAvailable,
	})
	require.NoError(t, err)

	seat, err := s.GetSeat(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Equal(t, model.SeatAvailable, seat.Status)
}

// TestConcurrentHoldsSingleWinner drives many goroutines at the same
// available seat; exactly one transition to HELD may succeed.
func TestConcurrentHoldsSingleWinner(t *testing.T) {
	s := NewMemoryStore()
	seedShow(t, s, 7)
	expires := time.Now().UTC().Add(5 * time.Minute)

	const attempts = 64
	var wg sync.WaitGroup
	wins := make(chan uint64, attempts)

	for i := 0; i < attempts; i++ {
		holder := uint64(i + 1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Transition(context.Background(), 7, 2, Transition{
				From: model.SeatAvailable, To: model.SeatHeld, Holder: holder, ExpiresAt: expires,
			})
			if err == nil {
				wins <- holder
			} else {
				assert.ErrorIs(t, err, ErrConflict)
			}
		}()
	}
	wg.Wait()
	close(wins)

	var winners []uint64
	for w := range wins {
		winners = append(winners, w)
	}
	require.Len(t, winners, 1)

	seat, err := s.GetSeat(context.Background(), 7, 2)
	require.NoError(t, err)
	assert.Equal(t, winners[0], seat.Holder)
	assert.Equal(t, uint64(1), seat.Version)
}

func TestExpiredHolds(t *testing.T) {
	s := NewMemoryStore()
	seedShow(t, s, 7)
	now := time.Now().UTC()

	require.NoError(t, s.Transition(context.Background(), 7, 1, Transition{
		From: model.SeatAvailable, To: model.SeatHeld, Holder: 11, ExpiresAt: now.Add(-time.Minute),
	}))
	require.NoError(t, s.Transition(context.Background(), 7, 2, Transition{
		From: model.SeatAvailable, To: model.SeatHeld, Holder: 22, ExpiresAt: now.Add(5 * time.Minute),
	}))

	refs, err := s.ExpiredHolds(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, uint64(7), refs[0].ShowID)
	assert.Equal(t, uint64(1), refs[0].SeatID)
}

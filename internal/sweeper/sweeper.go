// Package sweeper reclaims seats whose hold lapsed without being
// confirmed or released, so the seat map self-heals even when a client
// disappears mid-checkout.  The UI runs its own countdown mirroring the
// hold duration, but this poller is the source of truth.
package sweeper

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/store"
)

// DefaultInterval is how often the sweeper scans for lapsed holds.
const DefaultInterval = 30 * time.Second

// Sweeper periodically returns expired holds to available.  Every
// reclaim goes through the store's guarded transition with the expiry
// precondition, so a hold that was refreshed or confirmed between the
// scan and the reclaim is left alone.
type Sweeper struct {
	store    store.SeatStore
	interval time.Duration
	now      func() time.Time
}

// New constructs a Sweeper.  A non-positive interval falls back to
// DefaultInterval.
func New(st store.SeatStore, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{
		store:    st,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the sweeper's time source for tests.
func (s *Sweeper) SetClock(now func() time.Time) { s.now = now }

// Run sweeps on the configured interval until ctx is cancelled.
// Intended to be started as a goroutine from main.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.SweepOnce(ctx); err != nil {
				log.Printf("sweeper: sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("sweeper: reclaimed %d expired holds", n)
			}
		}
	}
}

// SweepOnce reclaims every hold expired as of now and returns how many
// seats it freed.  Losing a race for an individual seat is expected
// and not an error.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	now := s.now()
	refs, err := s.store.ExpiredHolds(ctx, now)
	if err != nil {
		return 0, err
	}
	freed := 0
	for _, ref := range refs {
		err := s.store.Transition(ctx, ref.ShowID, ref.SeatID, store.Transition{
			From: model.SeatHeld, IfExpiredBefore: now, To: model.SeatAvailable,
		})
		switch {
		case err == nil:
			freed++
		case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrSeatNotFound), errors.Is(err, store.ErrShowNotFound):
			// Refreshed, confirmed or gone since the scan.
		default:
			return freed, err
		}
	}
	return freed, nil
}

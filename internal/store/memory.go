package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// showSeats is the seat table of one show together with the mutex that
// serializes every transition touching it.  Locking per show rather
// than per seat keeps the lock table small; hold requests for a whole
// row still only contend with traffic on the same show.
type showSeats struct {
	mu    sync.Mutex
	seats map[uint64]*model.Seat
	order []uint64 // seat IDs in row/column order
}

// MemoryStore is the in-process SeatStore driver.  It is the driver
// used by the test suite and by STORE_DRIVER=memory deployments; the
// MySQL driver provides the same semantics through conditional updates.
type MemoryStore struct {
	mu    sync.RWMutex
	shows map[uint64]*showSeats
}

// NewMemoryStore returns an empty in-memory seat store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{shows: make(map[uint64]*showSeats)}
}

// CreateSeats registers the seat grid of a show.  Seats are stored by
// ID and ordered by row label then column for ListSeats.  Registering
// the same show again replaces the grid; callers only do that in tests.
func (s *MemoryStore) CreateSeats(_ context.Context, showID uint64, seats []model.Seat) error {
	ordered := make([]model.Seat, len(seats))
	copy(ordered, seats)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Row != ordered[j].Row {
			return ordered[i].Row < ordered[j].Row
		}
		return ordered[i].Column < ordered[j].Column
	})

	ss := &showSeats{seats: make(map[uint64]*model.Seat, len(ordered))}
	for _, seat := range ordered {
		seat.ShowID = showID
		if seat.Status == "" {
			seat.Status = model.SeatAvailable
		}
		cp := seat
		ss.seats[seat.ID] = &cp
		ss.order = append(ss.order, seat.ID)
	}

	s.mu.Lock()
	s.shows[showID] = ss
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) show(showID uint64) (*showSeats, bool) {
	s.mu.RLock()
	ss, ok := s.shows[showID]
	s.mu.RUnlock()
	return ss, ok
}

// GetSeat returns a copy of the seat's current state.
func (s *MemoryStore) GetSeat(_ context.Context, showID, seatID uint64) (model.Seat, error) {
	ss, ok := s.show(showID)
	if !ok {
		return model.Seat{}, ErrShowNotFound
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	seat, ok := ss.seats[seatID]
	if !ok {
		return model.Seat{}, ErrSeatNotFound
	}
	return *seat, nil
}

// ListSeats returns copies of the show's seats in seat-map order.
func (s *MemoryStore) ListSeats(_ context.Context, showID uint64) ([]model.Seat, error) {
	ss, ok := s.show(showID)
	if !ok {
		return nil, ErrShowNotFound
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	out := make([]model.Seat, 0, len(ss.order))
	for _, id := range ss.order {
		out = append(out, *ss.seats[id])
	}
	return out, nil
}

// Transition applies one compare-and-swap under the show's mutex.  The
// whole precondition check and the write happen inside one critical
// section, so two callers can never both observe AVAILABLE and win.
func (s *MemoryStore) Transition(_ context.Context, showID, seatID uint64, t Transition) error {
	ss, ok := s.show(showID)
	if !ok {
		return ErrShowNotFound
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()

	seat, ok := ss.seats[seatID]
	if !ok {
		return ErrSeatNotFound
	}
	if seat.Status != t.From {
		return ErrConflict
	}
	if t.ExpectedHolder != 0 && seat.Holder != t.ExpectedHolder {
		return ErrConflict
	}
	if !t.IfExpiredBefore.IsZero() && seat.HoldExpiresAt.After(t.IfExpiredBefore) {
		return ErrConflict
	}

	seat.Status = t.To
	if t.To == model.SeatHeld {
		seat.Holder = t.Holder
		seat.HoldExpiresAt = t.ExpiresAt
	} else {
		seat.Holder = 0
		seat.HoldExpiresAt = time.Time{}
	}
	seat.Version++
	return nil
}

// ExpiredHolds scans every show for held seats whose expiry has
// passed.  The snapshot may be stale by the time the sweeper acts on
// it; the Transition precondition makes that safe.
func (s *MemoryStore) ExpiredHolds(_ context.Context, now time.Time) ([]SeatRef, error) {
	s.mu.RLock()
	showIDs := make([]uint64, 0, len(s.shows))
	for id := range s.shows {
		showIDs = append(showIDs, id)
	}
	s.mu.RUnlock()

	var refs []SeatRef
	for _, showID := range showIDs {
		ss, ok := s.show(showID)
		if !ok {
			continue
		}
		ss.mu.Lock()
		for _, id := range ss.order {
			seat := ss.seats[id]
			if seat.HoldExpired(now) {
				refs = append(refs, SeatRef{ShowID: showID, SeatID: id, ExpiresAt: seat.HoldExpiresAt})
			}
		}
		ss.mu.Unlock()
	}
	return refs, nil
}

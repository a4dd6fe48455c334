package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// MemoryLedger keeps bookings in process memory.  Paired with the
// memory seat store for tests and STORE_DRIVER=memory deployments.
type MemoryLedger struct {
	mu       sync.RWMutex
	nextID   uint64
	bookings map[uint64]model.Booking
	now      func() time.Time
}

// NewMemoryLedger returns an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		nextID:   1,
		bookings: make(map[uint64]model.Booking),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create appends a booking, assigning the next identifier.  The seat
// slice is copied so later caller mutations cannot reach the record.
func (l *MemoryLedger) Create(_ context.Context, b model.Booking) (model.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b.ID = l.nextID
	l.nextID++
	b.Status = model.BookingConfirmed
	b.CreatedAt = l.now()
	seats := make([]model.BookingSeat, len(b.Seats))
	copy(seats, b.Seats)
	b.Seats = seats

	l.bookings[b.ID] = b
	return b, nil
}

// FindByID returns one booking by identifier.
func (l *MemoryLedger) FindByID(_ context.Context, id uint64) (model.Booking, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.bookings[id]
	if !ok {
		return model.Booking{}, ErrBookingNotFound
	}
	return b, nil
}

// FindByUser returns the user's bookings, newest first.
func (l *MemoryLedger) FindByUser(_ context.Context, userID uint64) ([]model.Booking, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []model.Booking
	for _, b := range l.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// FindByShow returns confirmed bookings for a show, oldest first.
func (l *MemoryLedger) FindByShow(_ context.Context, showID uint64) ([]model.Booking, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []model.Booking
	for _, b := range l.bookings {
		if b.ShowID == showID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

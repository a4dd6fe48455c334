package ledger

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// MySQLLedger persists bookings in the bookings and booking_seats
// tables.  A booking and its seats are written in one transaction so a
// record can never exist with a partial seat list.
type MySQLLedger struct {
	db *sql.DB
}

// NewMySQLLedger returns a MySQLLedger bound to the provided database.
func NewMySQLLedger(db *sql.DB) *MySQLLedger { return &MySQLLedger{db: db} }

// Create inserts the booking row plus one booking_seats row per seat
// snapshot, then reads the row back to pick up the DB-assigned
// timestamp.
func (l *MySQLLedger) Create(ctx context.Context, b model.Booking) (model.Booking, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Booking{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (user_id, show_id, total_amount_cents, payment_ref, status) VALUES (?, ?, ?, ?, ?)`,
		b.UserID, b.ShowID, b.TotalAmountCents, b.PaymentRef, model.BookingConfirmed)
	if err != nil {
		return model.Booking{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Booking{}, err
	}
	b.ID = uint64(id)
	b.Status = model.BookingConfirmed

	if len(b.Seats) > 0 {
		query := `INSERT INTO booking_seats (booking_id, seat_id, label, price_cents) VALUES `
		args := make([]any, 0, len(b.Seats)*4)
		for i, seat := range b.Seats {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?)"
			args = append(args, b.ID, seat.SeatID, seat.Label, seat.PriceCents)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return model.Booking{}, err
		}
	}

	if err := tx.QueryRowContext(ctx,
		`SELECT created_at FROM bookings WHERE id = ?`, b.ID).Scan(&b.CreatedAt); err != nil {
		return model.Booking{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Booking{}, err
	}
	committed = true
	return b, nil
}

// FindByID returns one booking with its seat snapshots.
func (l *MySQLLedger) FindByID(ctx context.Context, id uint64) (model.Booking, error) {
	const q = `SELECT id, user_id, show_id, total_amount_cents, payment_ref, status, created_at
	           FROM bookings WHERE id = ?`
	var b model.Booking
	err := l.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.UserID, &b.ShowID, &b.TotalAmountCents, &b.PaymentRef, &b.Status, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrBookingNotFound
	}
	if err != nil {
		return model.Booking{}, err
	}
	if b.Seats, err = l.seatsFor(ctx, b.ID); err != nil {
		return model.Booking{}, err
	}
	return b, nil
}

// FindByUser returns the user's bookings, newest first.
func (l *MySQLLedger) FindByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	const q = `SELECT id, user_id, show_id, total_amount_cents, payment_ref, status, created_at
	           FROM bookings WHERE user_id = ? ORDER BY id DESC`
	return l.list(ctx, q, userID)
}

// FindByShow returns confirmed bookings for a show, oldest first.
func (l *MySQLLedger) FindByShow(ctx context.Context, showID uint64) ([]model.Booking, error) {
	const q = `SELECT id, user_id, show_id, total_amount_cents, payment_ref, status, created_at
	           FROM bookings WHERE show_id = ? AND status = 'CONFIRMED' ORDER BY id`
	return l.list(ctx, q, showID)
}

func (l *MySQLLedger) list(ctx context.Context, query string, arg any) ([]model.Booking, error) {
	rows, err := l.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.ShowID, &b.TotalAmountCents,
			&b.PaymentRef, &b.Status, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Seats, err = l.seatsFor(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (l *MySQLLedger) seatsFor(ctx context.Context, bookingID uint64) ([]model.BookingSeat, error) {
	const q = `SELECT seat_id, label, price_cents FROM booking_seats WHERE booking_id = ? ORDER BY label`
	rows, err := l.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []model.BookingSeat
	for rows.Next() {
		var seat model.BookingSeat
		if err := rows.Scan(&seat.SeatID, &seat.Label, &seat.PriceCents); err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	return seats, rows.Err()
}

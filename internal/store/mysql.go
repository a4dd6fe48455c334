package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// MySQLStore implements SeatStore on the show_seats table.  The
// compare-and-swap precondition is pushed into the UPDATE's WHERE
// clause together with a version check, so atomicity comes from the
// database's row lock rather than from any in-process state.  All
// timestamps are UTC.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore returns a MySQLStore bound to the provided database.
func NewMySQLStore(db *sql.DB) *MySQLStore { return &MySQLStore{db: db} }

const seatColumns = `show_id, seat_id, label, row_label, col_number, class, price_cents, status, holder_id, hold_expires_at, version`

func scanSeat(row interface{ Scan(...any) error }) (model.Seat, error) {
	var (
		seat      model.Seat
		holder    sql.NullInt64
		expiresAt sql.NullTime
	)
	err := row.Scan(&seat.ShowID, &seat.ID, &seat.Label, &seat.Row, &seat.Column,
		&seat.Class, &seat.PriceCents, &seat.Status, &holder, &expiresAt, &seat.Version)
	if err != nil {
		return model.Seat{}, err
	}
	if holder.Valid {
		seat.Holder = uint64(holder.Int64)
	}
	if expiresAt.Valid {
		seat.HoldExpiresAt = expiresAt.Time.UTC()
	}
	return seat, nil
}

// GetSeat loads one seat row.
func (s *MySQLStore) GetSeat(ctx context.Context, showID, seatID uint64) (model.Seat, error) {
	const q = `SELECT ` + seatColumns + ` FROM show_seats WHERE show_id = ? AND seat_id = ?`
	seat, err := scanSeat(s.db.QueryRowContext(ctx, q, showID, seatID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Seat{}, ErrSeatNotFound
	}
	return seat, err
}

// ListSeats returns the show's seats ordered by row label then column.
func (s *MySQLStore) ListSeats(ctx context.Context, showID uint64) ([]model.Seat, error) {
	const q = `SELECT ` + seatColumns + ` FROM show_seats WHERE show_id = ? ORDER BY row_label, col_number`
	rows, err := s.db.QueryContext(ctx, q, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []model.Seat
	for rows.Next() {
		seat, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(seats) == 0 {
		return nil, ErrShowNotFound
	}
	return seats, nil
}

// Transition performs the compare-and-swap as a single conditional
// UPDATE.  Zero affected rows means the precondition failed; a
// follow-up existence check distinguishes a lost race from a missing
// seat.
func (s *MySQLStore) Transition(ctx context.Context, showID, seatID uint64, t Transition) error {
	query := `UPDATE show_seats
	          SET status = ?, holder_id = ?, hold_expires_at = ?, version = version + 1
	          WHERE show_id = ? AND seat_id = ? AND status = ?`

	var holder, expires any
	if t.To == model.SeatHeld {
		holder = t.Holder
		expires = t.ExpiresAt.UTC().Format("2006-01-02 15:04:05")
	}
	args := []any{t.To, holder, expires, showID, seatID, t.From}

	if t.ExpectedHolder != 0 {
		query += ` AND holder_id = ?`
		args = append(args, t.ExpectedHolder)
	}
	if !t.IfExpiredBefore.IsZero() {
		query += ` AND hold_expires_at <= ?`
		args = append(args, t.IfExpiredBefore.UTC().Format("2006-01-02 15:04:05"))
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// Nothing matched: either the seat is gone or someone else won.
	var one int
	err = s.db.QueryRowContext(ctx,
		`SELECT 1 FROM show_seats WHERE show_id = ? AND seat_id = ?`, showID, seatID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSeatNotFound
	}
	if err != nil {
		return err
	}
	return ErrConflict
}

// CreateSeats bulk-inserts the seat grid for a new show.
func (s *MySQLStore) CreateSeats(ctx context.Context, showID uint64, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO show_seats (show_id, seat_id, label, row_label, col_number, class, price_cents, status) VALUES `
	args := make([]any, 0, len(seats)*8)
	for i, seat := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?)"
		status := seat.Status
		if status == "" {
			status = model.SeatAvailable
		}
		args = append(args, showID, seat.ID, seat.Label, seat.Row, seat.Column, seat.Class, seat.PriceCents, status)
	}
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

// ExpiredHolds lists held seats whose expiry is at or before now.
func (s *MySQLStore) ExpiredHolds(ctx context.Context, now time.Time) ([]SeatRef, error) {
	const q = `SELECT show_id, seat_id, hold_expires_at FROM show_seats
	           WHERE status = ? AND hold_expires_at <= ?`
	rows, err := s.db.QueryContext(ctx, q, model.SeatHeld, now.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var refs []SeatRef
	for rows.Next() {
		var ref SeatRef
		var exp time.Time
		if err := rows.Scan(&ref.ShowID, &ref.SeatID, &exp); err != nil {
			return nil, err
		}
		ref.ExpiresAt = exp.UTC()
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

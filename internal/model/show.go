package model

import "time"

// Show represents a scheduled screening of a movie on a specific
// screen of a theater.  The seat grid is fixed at show creation: seats
// are created together with the show and only their status, holder and
// expiry ever change afterwards.
//
// Fields:
//  ID             – primary key identifier.
//  MovieID        – movie being screened.
//  TheaterID      – theater hosting the show.
//  Screen         – screen label within the theater, e.g. "Screen 1".
//  StartsAt       – scheduled start time.
//  EndsAt         – scheduled end time (after StartsAt).
//  BasePriceCents – price of a regular seat in cents; premium seats
//                   are priced at 150% of this value.
//  TotalSeats     – number of seats in the grid.
//  IsActive       – whether the show is open for booking.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Show struct {
	ID             uint64    // shows.id
	MovieID        uint64    // shows.movie_id
	TheaterID      uint64    // shows.theater_id
	Screen         string    // shows.screen
	StartsAt       time.Time // shows.starts_at
	EndsAt         time.Time // shows.ends_at
	BasePriceCents uint32    // shows.base_price_cents
	TotalSeats     uint32    // shows.total_seats
	IsActive       bool      // shows.is_active
	CreatedAt      time.Time // shows.created_at
	UpdatedAt      time.Time // shows.updated_at
}

package model

import "time"

// BookingStatus is the state of a booking.  Only CONFIRMED exists:
// bookings are written once at confirmation time and never mutated.
type BookingStatus string

const BookingConfirmed BookingStatus = "CONFIRMED"

// BookingSeat is a point-in-time snapshot of a seat at the moment its
// booking was confirmed.  It is deliberately not a live view of the
// seat store; label and price are frozen so the record stays valid
// even if seat pricing changes for later shows.
type BookingSeat struct {
	SeatID     uint64 // booking_seats.seat_id
	Label      string // booking_seats.label ("A1")
	PriceCents uint32 // booking_seats.price_cents
}

// Booking is the durable record of a confirmed purchase.  The seat
// list is immutable once created.
//
// Fields:
//  ID               – primary key identifier.
//  UserID           – owning holder.
//  ShowID           – show the seats were bought for.
//  Seats            – seat snapshots taken at confirmation time.
//  TotalAmountCents – sum of the snapshot prices.
//  PaymentRef       – reference returned by the payment collaborator.
//  Status           – always CONFIRMED.
//  CreatedAt        – when the booking was confirmed.
type Booking struct {
	ID               uint64        // bookings.id
	UserID           uint64        // bookings.user_id
	ShowID           uint64        // bookings.show_id
	Seats            []BookingSeat // booking_seats rows
	TotalAmountCents uint32        // bookings.total_amount_cents
	PaymentRef       string        // bookings.payment_ref
	Status           BookingStatus // bookings.status
	CreatedAt        time.Time     // bookings.created_at
}

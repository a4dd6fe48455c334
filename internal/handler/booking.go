package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/catalog"
	"github.com/iliyamo/movie-ticket-booking/internal/ledger"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/payment"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
	"github.com/iliyamo/movie-ticket-booking/internal/reservation"
	queue_publisher "github.com/iliyamo/movie-ticket-booking/internal/service"
	"github.com/iliyamo/movie-ticket-booking/internal/store"
	"github.com/iliyamo/movie-ticket-booking/internal/utils"
)

// BookingHandler exposes the hold / confirm / release cycle plus
// booking lookups.  All seat state mutation goes through the
// reservation manager; the handler only translates transport concerns
// and wires in the payment gateway and the confirmation event.
type BookingHandler struct {
	Manager  *reservation.Manager
	Store    store.SeatStore
	Ledger   ledger.BookingLedger
	Catalog  catalog.Catalog
	Payments payment.Gateway
}

// NewBookingHandler constructs a BookingHandler.  All dependencies
// must be non-nil.
func NewBookingHandler(m *reservation.Manager, st store.SeatStore, lg ledger.BookingLedger, cat catalog.Catalog, pay payment.Gateway) *BookingHandler {
	if m == nil || st == nil || lg == nil || cat == nil || pay == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Manager: m, Store: st, Ledger: lg, Catalog: cat, Payments: pay}
}

type holdReq struct {
	ShowID  uint64   `json:"show_id"`
	SeatIDs []uint64 `json:"seat_ids"`
}

type confirmReq struct {
	ShowID        uint64   `json:"show_id"`
	SeatIDs       []uint64 `json:"seat_ids"`
	PaymentMethod string   `json:"payment_method"`
}

type bookingSeatPart struct {
	SeatID     uint64 `json:"seat_id"`
	Label      string `json:"seat_number"`
	PriceCents uint32 `json:"price_cents"`
}

type bookingPart struct {
	ID               uint64            `json:"id"`
	ShowID           uint64            `json:"show_id"`
	Seats            []bookingSeatPart `json:"seats"`
	TotalAmountCents uint32            `json:"total_amount_cents"`
	PaymentRef       string            `json:"payment_ref"`
	Status           string            `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
}

// Hold handles POST /v1/bookings/hold.  Seats are held independently:
// the response lists which seats were held with their expiry and which
// failed with a per-seat reason.  Only when no seat could be held does
// the request fail as a whole with 409.
func (h *BookingHandler) Hold(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req holdReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.ShowID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "show_id is required"})
	}
	seatIDs := dedupeIDs(req.SeatIDs)
	if len(seatIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids is required"})
	}

	ctx := c.Request().Context()
	show, err := h.Catalog.GetShowByID(ctx, req.ShowID)
	if err != nil {
		if errors.Is(err, catalog.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !show.IsActive {
		return c.JSON(http.StatusConflict, echo.Map{"error": "show is not open for booking"})
	}

	res, err := h.Manager.HoldSeats(ctx, req.ShowID, seatIDs, userID)
	if err != nil {
		switch {
		case errors.Is(err, reservation.ErrNoSeatsAvailable):
			return c.JSON(http.StatusConflict, echo.Map{
				"error":  "no seats could be held",
				"failed": res.Failed,
			})
		case errors.Is(err, store.ErrShowNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hold failed"})
		}
	}
	return c.JSON(http.StatusCreated, res)
}

// Confirm handles POST /v1/bookings/confirm.  Confirmation is
// all-or-nothing over the requested seats: every seat must still be
// held by the caller and unexpired.  Payment is charged before the
// seats are sold; if the sale then fails, the charge is voided.
func (h *BookingHandler) Confirm(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req confirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.ShowID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "show_id is required"})
	}
	seatIDs := dedupeIDs(req.SeatIDs)
	if len(seatIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids is required"})
	}

	ctx := c.Request().Context()
	show, err := h.Catalog.GetShowByID(ctx, req.ShowID)
	if err != nil {
		if errors.Is(err, catalog.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	// Quote the charge from the caller's live holds before touching
	// seat state.  The manager re-validates under the CAS, so a stale
	// quote can only fail the confirm, never mis-charge.
	var total uint32
	now := time.Now().UTC()
	for _, seatID := range seatIDs {
		seat, err := h.Store.GetSeat(ctx, req.ShowID, seatID)
		if err != nil {
			if errors.Is(err, store.ErrSeatNotFound) || errors.Is(err, store.ErrShowNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found", "seat_id": seatID})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		if !seat.HeldBy(userID) || seat.HoldExpired(now) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "hold expired or not owned", "seat_id": seatID})
		}
		total += seat.PriceCents
	}

	payRef, err := h.Payments.Charge(ctx, userID, total, req.PaymentMethod)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentDeclined) {
			return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "payment declined"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment failed"})
	}

	booking, err := h.Manager.ConfirmBooking(ctx, userID, req.ShowID, seatIDs, payRef)
	if err != nil {
		// The charge went through but the seats did not; the mock
		// gateway has no void call, so the reference is logged for
		// manual reconciliation.
		log.Printf("booking: confirm failed after charge %s for user %d: %v", payRef, userID, err)
		switch {
		case errors.Is(err, reservation.ErrSeatNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
		case errors.Is(err, reservation.ErrSeatAlreadySold):
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat is already sold"})
		case errors.Is(err, reservation.ErrHoldExpiredOrNotOwned):
			return c.JSON(http.StatusConflict, echo.Map{"error": "hold expired or not owned"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking creation failed"})
		}
	}

	h.publishConfirmed(booking, show)

	return c.JSON(http.StatusCreated, toBookingPart(booking))
}

// Release handles POST /v1/bookings/release.  Only the caller's own
// live holds are returned to available; everything else is skipped, so
// the call reports a count rather than failing.
func (h *BookingHandler) Release(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req holdReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.ShowID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "show_id is required"})
	}
	seatIDs := dedupeIDs(req.SeatIDs)
	if len(seatIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids is required"})
	}

	released, err := h.Manager.ReleaseSeats(c.Request().Context(), req.ShowID, seatIDs, userID)
	if err != nil {
		if errors.Is(err, store.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "release failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"released": released})
}

// List handles GET /v1/bookings.  Returns the caller's bookings,
// newest first.
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookings, err := h.Ledger.FindByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	items := make([]bookingPart, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, toBookingPart(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/bookings/:id.  Returns one booking for its
// owner; other users get 403.  With ?qr=1 the response is the ticket
// QR code as a PNG instead of JSON.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	booking, err := h.Ledger.FindByID(c.Request().Context(), bookingID)
	if err != nil {
		if errors.Is(err, ledger.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	if booking.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if c.QueryParam("qr") == "1" {
		labels := make([]string, 0, len(booking.Seats))
		for _, s := range booking.Seats {
			labels = append(labels, s.Label)
		}
		png, err := utils.TicketQR(utils.TicketPayload{
			BookingID:  booking.ID,
			UserID:     booking.UserID,
			ShowID:     booking.ShowID,
			Seats:      labels,
			PaymentRef: booking.PaymentRef,
			IssuedAt:   booking.CreatedAt,
		})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to render ticket"})
		}
		return c.Blob(http.StatusOK, "image/png", png)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toBookingPart(booking)})
}

// publishConfirmed emits the booking.confirmed event.  Failures are
// logged and swallowed; the booking is already durable in the ledger.
func (h *BookingHandler) publishConfirmed(b model.Booking, show model.Show) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ev := queue.BookingConfirmedEvent{
		BookingID:        b.ID,
		UserID:           b.UserID,
		ShowID:           b.ShowID,
		Screen:           show.Screen,
		StartsAt:         show.StartsAt.UTC().Format(time.RFC3339),
		TotalAmountCents: b.TotalAmountCents,
		PaymentRef:       b.PaymentRef,
		ConfirmedAt:      b.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, s := range b.Seats {
		ev.SeatLabels = append(ev.SeatLabels, s.Label)
	}
	if movie, err := h.Catalog.GetMovieByID(ctx, show.MovieID); err == nil {
		ev.MovieTitle = movie.Title
	}
	if theater, err := h.Catalog.GetTheaterByID(ctx, show.TheaterID); err == nil {
		ev.TheaterName = theater.Name
	}
	if err := queue_publisher.PublishBookingConfirmed(ctx, ev); err != nil {
		log.Printf("booking: publish confirmed event failed: %v", err)
	}
}

func toBookingPart(b model.Booking) bookingPart {
	seats := make([]bookingSeatPart, 0, len(b.Seats))
	for _, s := range b.Seats {
		seats = append(seats, bookingSeatPart{SeatID: s.SeatID, Label: s.Label, PriceCents: s.PriceCents})
	}
	return bookingPart{
		ID:               b.ID,
		ShowID:           b.ShowID,
		Seats:            seats,
		TotalAmountCents: b.TotalAmountCents,
		PaymentRef:       b.PaymentRef,
		Status:           string(b.Status),
		CreatedAt:        b.CreatedAt,
	}
}

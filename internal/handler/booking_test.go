package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/catalog"
	"github.com/iliyamo/movie-ticket-booking/internal/ledger"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/payment"
	"github.com/iliyamo/movie-ticket-booking/internal/reservation"
	"github.com/iliyamo/movie-ticket-booking/internal/store"
)

const (
	customerA uint64 = 100
	customerB uint64 = 200
)

type bookingFixture struct {
	handler *BookingHandler
	store   *store.MemoryStore
	showID  uint64
}

// newBookingFixture builds the full stack on the memory drivers with
// one show: a 2x3 grid, row A premium at 1500 cents, row B at 1000.
func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	ctx := context.Background()

	st := store.NewMemoryStore()
	lg := ledger.NewMemoryLedger()
	cat := catalog.NewMemoryCatalog()

	movie, err := cat.CreateMovie(ctx, model.Movie{Title: "Interstellar", DurationMin: 169})
	require.NoError(t, err)
	theater, err := cat.CreateTheater(ctx, model.Theater{Name: "Grand Central", City: "Springfield", TotalScreens: 4})
	require.NoError(t, err)
	show, err := cat.CreateShow(ctx, model.Show{
		MovieID:        movie.ID,
		TheaterID:      theater.ID,
		Screen:         "Screen 1",
		StartsAt:       time.Now().UTC().Add(4 * time.Hour),
		EndsAt:         time.Now().UTC().Add(7 * time.Hour),
		BasePriceCents: 1000,
		TotalSeats:     6,
	})
	require.NoError(t, err)
	require.NoError(t, st.CreateSeats(ctx, show.ID, catalog.GenerateSeatGrid(2, 3, 1, 1000)))

	manager := reservation.NewManager(st, lg, 0)
	h := NewBookingHandler(manager, st, lg, cat, payment.NewMockGateway())
	return &bookingFixture{handler: h, store: st, showID: show.ID}
}

// call invokes an echo handler directly with a JSON body and an
// authenticated user, bypassing the JWT middleware.
func call(t *testing.T, fn echo.HandlerFunc, method, target, body string, userID uint64, pathParams map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	for k, v := range pathParams {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	require.NoError(t, fn(c))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHoldSeats(t *testing.T) {
	fx := newBookingFixture(t)

	body := fmt.Sprintf(`{"show_id":%d,"seat_ids":[1,2]}`, fx.showID)
	rec := call(t, fx.handler.Hold, http.MethodPost, "/v1/bookings/hold", body, customerA, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	out := decodeBody(t, rec)
	held := out["held"].([]any)
	require.Len(t, held, 2)
	first := held[0].(map[string]any)
	require.Equal(t, "A1", first["seat_number"])
	require.EqualValues(t, 1500, first["price_cents"])

	seat, err := fx.store.GetSeat(context.Background(), fx.showID, 1)
	require.NoError(t, err)
	require.Equal(t, model.SeatHeld, seat.Status)
	require.Equal(t, customerA, seat.Holder)
}

func TestHoldPartialFailure(t *testing.T) {
	fx := newBookingFixture(t)

	body := fmt.Sprintf(`{"show_id":%d,"seat_ids":[1]}`, fx.showID)
	rec := call(t, fx.handler.Hold, http.MethodPost, "/v1/bookings/hold", body, customerA, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// B asks for the contested seat plus a free one: partial success.
	body = fmt.Sprintf(`{"show_id":%d,"seat_ids":[1,4]}`, fx.showID)
	rec = call(t, fx.handler.Hold, http.MethodPost, "/v1/bookings/hold", body, customerB, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	out := decodeBody(t, rec)
	require.Len(t, out["held"].([]any), 1)
	failed := out["failed"].([]any)
	require.Len(t, failed, 1)
	require.EqualValues(t, 1, failed[0].(map[string]any)["seat_id"])
}

func TestHoldNothingAvailable(t *testing.T) {
	fx := newBookingFixture(t)

	body := fmt.Sprintf(`{"show_id":%d,"seat_ids":[1]}`, fx.showID)
	rec := call(t, fx.handler.Hold, http.MethodPost, "/v1/bookings/hold", body, customerA, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = call(t, fx.handler.Hold, http.MethodPost, "/v1/bookings/hold", body, customerB, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestHoldUnknownShow(t *testing.T) {
	fx := newBookingFixture(t)

	rec := call(t, fx.handler.Hold, http.MethodPost, "/v1/bookings/hold", `{"show_id":999,"seat_ids":[1]}`, customerA, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConfirmBookingFlow(t *testing.T) {
	fx := newBookingFixture(t)

	hold := fmt.Sprintf(`{"show_id":%d,"seat_ids":[1,2]}`, fx.showID)
	rec := call(t, fx.handler.Hold, http.MethodPost, "/v1/bookings/hold", hold, customerA, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	confirm := fmt.Sprintf(`{"show_id":%d,"seat_ids":[1,2],"payment_method":"card"}`, fx.showID)
	rec = call(t, fx.handler.Confirm, http.MethodPost, "/v1/bookings/confirm", confirm, customerA, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	out := decodeBody(t, rec)
	require.EqualValues(t, 3000, out["total_amount_cents"])
	require.True(t, strings.HasPrefix(out["payment_ref"].(string), "PAY_"))
	require.Equal(t, "CONFIRMED", out["status"])

	seat, err := fx.store.GetSeat(context.Background(), fx.showID, 1)
	require.NoError(t, err)
	require.Equal(t, model.SeatSold, seat.Status)
}

func TestConfirmWithoutHold(t *testing.T) {
	fx := newBookingFixture(t)

	confirm := fmt.Sprintf(`{"show_id":%d,"seat_ids":[1],"payment_method":"card"}`, fx.showID)
	rec := call(t, fx.handler.Confirm, http.MethodPost, "/v1/bookings/confirm", confirm, customerA, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestConfirmByNonHolder(t *testing.T) {
	fx := newBookingFixture(t)

	hold := fmt.Sprintf(`{"show_id":%d,"seat_ids":[1]}`, fx.showID)
	rec := call(t, fx.handler.Hold, http.MethodPost, "/v1/bookings/hold", hold, customerA, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	confirm := fmt.Sprintf(`{"show_id":%d,"seat_ids":[1],"payment_method":"card"}`, fx.showID)
	rec = call(t, fx.handler.Confirm, http.MethodPost, "/v1/bookings/confirm", confirm, customerB, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestReleaseSeats(t *testing.T) {
	fx := newBookingFixture(t)

	hold := fmt.Sprintf(`{"show_id":%d,"seat_ids":[1,2]}`, fx.showID)
	rec := call(t, fx.handler.Hold, http.MethodPost, "/v1/bookings/hold", hold, customerA, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	release := fmt.Sprintf(`{"show_id":%d,"seat_ids":[1,2,3]}`, fx.showID)
	rec = call(t, fx.handler.Release, http.MethodPost, "/v1/bookings/release", release, customerA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 2, decodeBody(t, rec)["released"])

	seat, err := fx.store.GetSeat(context.Background(), fx.showID, 1)
	require.NoError(t, err)
	require.Equal(t, model.SeatAvailable, seat.Status)
}

func TestGetBookingOwnership(t *testing.T) {
	fx := newBookingFixture(t)

	hold := fmt.Sprintf(`{"show_id":%d,"seat_ids":[1]}`, fx.showID)
	rec := call(t, fx.handler.Hold, http.MethodPost, "/v1/bookings/hold", hold, customerA, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	confirm := fmt.Sprintf(`{"show_id":%d,"seat_ids":[1],"payment_method":"card"}`, fx.showID)
	rec = call(t, fx.handler.Confirm, http.MethodPost, "/v1/bookings/confirm", confirm, customerA, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	bookingID := fmt.Sprintf("%.0f", decodeBody(t, rec)["id"].(float64))

	rec = call(t, fx.handler.Get, http.MethodGet, "/v1/bookings/"+bookingID, "", customerA, map[string]string{"id": bookingID})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, fx.handler.Get, http.MethodGet, "/v1/bookings/"+bookingID, "", customerB, map[string]string{"id": bookingID})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, fx.handler.Get, http.MethodGet, "/v1/bookings/999", "", customerA, map[string]string{"id": "999"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetBookingQR(t *testing.T) {
	fx := newBookingFixture(t)

	hold := fmt.Sprintf(`{"show_id":%d,"seat_ids":[1]}`, fx.showID)
	rec := call(t, fx.handler.Hold, http.MethodPost, "/v1/bookings/hold", hold, customerA, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	confirm := fmt.Sprintf(`{"show_id":%d,"seat_ids":[1],"payment_method":"card"}`, fx.showID)
	rec = call(t, fx.handler.Confirm, http.MethodPost, "/v1/bookings/confirm", confirm, customerA, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	bookingID := fmt.Sprintf("%.0f", decodeBody(t, rec)["id"].(float64))

	rec = call(t, fx.handler.Get, http.MethodGet, "/v1/bookings/"+bookingID+"?qr=1", "", customerA, map[string]string{"id": bookingID})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	require.NotEmpty(t, rec.Body.Bytes())
}

func TestListBookings(t *testing.T) {
	fx := newBookingFixture(t)

	rec := call(t, fx.handler.List, http.MethodGet, "/v1/bookings", "", customerA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decodeBody(t, rec)["items"])

	hold := fmt.Sprintf(`{"show_id":%d,"seat_ids":[1]}`, fx.showID)
	rec = call(t, fx.handler.Hold, http.MethodPost, "/v1/bookings/hold", hold, customerA, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	confirm := fmt.Sprintf(`{"show_id":%d,"seat_ids":[1],"payment_method":"card"}`, fx.showID)
	rec = call(t, fx.handler.Confirm, http.MethodPost, "/v1/bookings/confirm", confirm, customerA, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = call(t, fx.handler.List, http.MethodGet, "/v1/bookings", "", customerA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeBody(t, rec)["items"].([]any), 1)

	rec = call(t, fx.handler.List, http.MethodGet, "/v1/bookings", "", customerB, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decodeBody(t, rec)["items"])
}

package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/catalog"
	"github.com/iliyamo/movie-ticket-booking/internal/store"
)

const adminUser uint64 = 1

func newAdminFixture(t *testing.T) (*AdminHandler, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	return NewAdminHandler(catalog.NewMemoryCatalog(), st), st
}

func TestCreateMovie(t *testing.T) {
	ah, _ := newAdminFixture(t)

	body := `{"title":"Dune","duration_min":155,"genres":["sci-fi"],"release_date":"2021-10-22","language":"en"}`
	rec := call(t, ah.CreateMovie, http.MethodPost, "/v1/admin/movies", body, adminUser, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	item := decodeBody(t, rec)["item"].(map[string]any)
	require.Equal(t, "Dune", item["title"])
	require.NotZero(t, item["id"])

	rec = call(t, ah.CreateMovie, http.MethodPost, "/v1/admin/movies", `{"title":""}`, adminUser, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, ah.CreateMovie, http.MethodPost, "/v1/admin/movies", `{"title":"X","duration_min":90,"release_date":"soon"}`, adminUser, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateShowWithSeatGrid(t *testing.T) {
	ah, st := newAdminFixture(t)
	ctx := context.Background()

	rec := call(t, ah.CreateMovie, http.MethodPost, "/v1/admin/movies", `{"title":"Dune","duration_min":155}`, adminUser, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	movieID := uint64(decodeBody(t, rec)["item"].(map[string]any)["id"].(float64))

	rec = call(t, ah.CreateTheater, http.MethodPost, "/v1/admin/theaters", `{"name":"Grand","city":"Springfield"}`, adminUser, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	theaterID := uint64(decodeBody(t, rec)["item"].(map[string]any)["id"].(float64))

	starts := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)
	ends := time.Now().UTC().Add(26 * time.Hour).Format(time.RFC3339)

	// Default grid: 5x10 with the first two rows premium.
	body := fmt.Sprintf(`{"movie_id":%d,"theater_id":%d,"starts_at":%q,"ends_at":%q,"base_price_cents":1200}`,
		movieID, theaterID, starts, ends)
	rec = call(t, ah.CreateShow, http.MethodPost, "/v1/admin/shows", body, adminUser, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	out := decodeBody(t, rec)
	require.EqualValues(t, 50, out["total_seats"])
	showID := uint64(out["item"].(map[string]any)["id"].(float64))

	seats, err := st.ListSeats(ctx, showID)
	require.NoError(t, err)
	require.Len(t, seats, 50)
	require.Equal(t, "A1", seats[0].Label)
	require.EqualValues(t, 1800, seats[0].PriceCents) // 150% of base
	require.Equal(t, "E10", seats[49].Label)
	require.EqualValues(t, 1200, seats[49].PriceCents)
}

func TestCreateShowValidation(t *testing.T) {
	ah, _ := newAdminFixture(t)

	starts := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)
	ends := time.Now().UTC().Add(26 * time.Hour).Format(time.RFC3339)

	body := fmt.Sprintf(`{"movie_id":999,"theater_id":999,"starts_at":%q,"ends_at":%q,"base_price_cents":1200}`, starts, ends)
	rec := call(t, ah.CreateShow, http.MethodPost, "/v1/admin/shows", body, adminUser, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// ends_at before starts_at
	body = fmt.Sprintf(`{"movie_id":1,"theater_id":1,"starts_at":%q,"ends_at":%q,"base_price_cents":1200}`, ends, starts)
	rec = call(t, ah.CreateShow, http.MethodPost, "/v1/admin/shows", body, adminUser, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/catalog"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/store"
)

// PublicHandler serves the unauthenticated browse endpoints: movies,
// shows and the live seat map.  These routes sit behind the response
// cache middleware, so the seat map may be up to the cache TTL stale.
type PublicHandler struct {
	Catalog catalog.Catalog
	Store   store.SeatStore
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(cat catalog.Catalog, st store.SeatStore) *PublicHandler {
	if cat == nil || st == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	return &PublicHandler{Catalog: cat, Store: st}
}

type moviePart struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	DurationMin uint32   `json:"duration_min"`
	ReleaseDate string   `json:"release_date,omitempty"`
	Rating      float32  `json:"rating"`
	PosterURL   string   `json:"poster_url,omitempty"`
	Language    string   `json:"language,omitempty"`
}

type showPart struct {
	ID             uint64    `json:"id"`
	MovieID        uint64    `json:"movie_id"`
	TheaterID      uint64    `json:"theater_id"`
	Screen         string    `json:"screen"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	BasePriceCents uint32    `json:"base_price_cents"`
	TotalSeats     uint32    `json:"total_seats"`
}

// seatPart is the public view of one seat.  The holder is never
// exposed, and a lapsed hold is presented as available because any
// customer can win that seat on their next hold request.
type seatPart struct {
	ID         uint64 `json:"id"`
	Label      string `json:"seat_number"`
	Row        string `json:"row"`
	Column     uint32 `json:"column"`
	Class      string `json:"class"`
	PriceCents uint32 `json:"price_cents"`
	Status     string `json:"status"`
}

// ListMovies handles GET /v1/movies.
func (h *PublicHandler) ListMovies(c echo.Context) error {
	movies, err := h.Catalog.GetMovies(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load movies"})
	}
	items := make([]moviePart, 0, len(movies))
	for _, m := range movies {
		items = append(items, toMoviePart(m))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetMovie handles GET /v1/movies/:id.
func (h *PublicHandler) GetMovie(c echo.Context) error {
	movieID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || movieID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	m, err := h.Catalog.GetMovieByID(c.Request().Context(), movieID)
	if err != nil {
		if errors.Is(err, catalog.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load movie"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toMoviePart(m)})
}

// ListShows handles GET /v1/movies/:id/shows.  An optional
// ?date=YYYY-MM-DD query restricts results to that calendar day (UTC).
func (h *PublicHandler) ListShows(c echo.Context) error {
	movieID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || movieID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	var date *time.Time
	if raw := c.QueryParam("date"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
		date = &d
	}

	ctx := c.Request().Context()
	if _, err := h.Catalog.GetMovieByID(ctx, movieID); err != nil {
		if errors.Is(err, catalog.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load movie"})
	}
	shows, err := h.Catalog.GetShowsForMovie(ctx, movieID, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load shows"})
	}
	items := make([]showPart, 0, len(shows))
	for _, s := range shows {
		items = append(items, toShowPart(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetShow handles GET /v1/shows/:id.
func (h *PublicHandler) GetShow(c echo.Context) error {
	showID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || showID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	s, err := h.Catalog.GetShowByID(c.Request().Context(), showID)
	if err != nil {
		if errors.Is(err, catalog.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load show"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toShowPart(s)})
}

// ListSeats handles GET /v1/shows/:id/seats.  Returns the seat map in
// row/column order with each seat's effective status.
func (h *PublicHandler) ListSeats(c echo.Context) error {
	showID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || showID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	seats, err := h.Store.ListSeats(c.Request().Context(), showID)
	if err != nil {
		if errors.Is(err, store.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seats"})
	}
	now := time.Now().UTC()
	items := make([]seatPart, 0, len(seats))
	for _, s := range seats {
		status := s.Status
		if s.HoldExpired(now) {
			status = model.SeatAvailable
		}
		items = append(items, seatPart{
			ID:         s.ID,
			Label:      s.Label,
			Row:        s.Row,
			Column:     s.Column,
			Class:      string(s.Class),
			PriceCents: s.PriceCents,
			Status:     string(status),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func toMoviePart(m model.Movie) moviePart {
	p := moviePart{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Genres:      m.Genres,
		DurationMin: m.DurationMin,
		Rating:      m.Rating,
		PosterURL:   m.PosterURL,
		Language:    m.Language,
	}
	if !m.ReleaseDate.IsZero() {
		p.ReleaseDate = m.ReleaseDate.Format("2006-01-02")
	}
	return p
}

func toShowPart(s model.Show) showPart {
	return showPart{
		ID:             s.ID,
		MovieID:        s.MovieID,
		TheaterID:      s.TheaterID,
		Screen:         s.Screen,
		StartsAt:       s.StartsAt,
		EndsAt:         s.EndsAt,
		BasePriceCents: s.BasePriceCents,
		TotalSeats:     s.TotalSeats,
	}
}

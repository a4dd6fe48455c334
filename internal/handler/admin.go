package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/catalog"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/store"
)

// AdminHandler serves the catalog management endpoints.  Routes using
// it must be wrapped with JWTAuth plus RequireRole("ADMIN").
type AdminHandler struct {
	Catalog catalog.Catalog
	Store   store.SeatStore
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(cat catalog.Catalog, st store.SeatStore) *AdminHandler {
	if cat == nil || st == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Catalog: cat, Store: st}
}

type createMovieReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genres      []string `json:"genres"`
	DurationMin uint32   `json:"duration_min"`
	ReleaseDate string   `json:"release_date"` // YYYY-MM-DD
	Rating      float32  `json:"rating"`
	PosterURL   string   `json:"poster_url"`
	Language    string   `json:"language"`
}

type createTheaterReq struct {
	Name         string `json:"name"`
	City         string `json:"city"`
	Address      string `json:"address"`
	TotalScreens uint32 `json:"total_screens"`
}

type createShowReq struct {
	MovieID        uint64    `json:"movie_id"`
	TheaterID      uint64    `json:"theater_id"`
	Screen         string    `json:"screen"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	BasePriceCents uint32    `json:"base_price_cents"`
	Rows           int       `json:"rows"`
	Cols           int       `json:"cols"`
	PremiumRows    int       `json:"premium_rows"`
}

// CreateMovie handles POST /v1/admin/movies.
func (h *AdminHandler) CreateMovie(c echo.Context) error {
	var req createMovieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	if req.DurationMin == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "duration_min is required"})
	}
	var release time.Time
	if req.ReleaseDate != "" {
		d, err := time.Parse("2006-01-02", req.ReleaseDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "release_date must be YYYY-MM-DD"})
		}
		release = d
	}

	m, err := h.Catalog.CreateMovie(c.Request().Context(), model.Movie{
		Title:       req.Title,
		Description: req.Description,
		Genres:      req.Genres,
		DurationMin: req.DurationMin,
		ReleaseDate: release,
		Rating:      req.Rating,
		PosterURL:   req.PosterURL,
		Language:    req.Language,
		IsActive:    true,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create movie"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": toMoviePart(m)})
}

// CreateTheater handles POST /v1/admin/theaters.
func (h *AdminHandler) CreateTheater(c echo.Context) error {
	var req createTheaterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || strings.TrimSpace(req.City) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and city are required"})
	}
	if req.TotalScreens == 0 {
		req.TotalScreens = 1
	}

	t, err := h.Catalog.CreateTheater(c.Request().Context(), model.Theater{
		Name:         req.Name,
		City:         strings.TrimSpace(req.City),
		Address:      strings.TrimSpace(req.Address),
		TotalScreens: req.TotalScreens,
		IsActive:     true,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create theater"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"item": echo.Map{
			"id":            t.ID,
			"name":          t.Name,
			"city":          t.City,
			"address":       t.Address,
			"total_screens": t.TotalScreens,
		},
	})
}

// CreateShow handles POST /v1/admin/shows.  The show row and its seat
// grid are created from the same request: a 5x10 grid with the first
// two rows premium when the dimensions are omitted.  Premium seats are
// priced at 150% of the base price.
func (h *AdminHandler) CreateShow(c echo.Context) error {
	var req createShowReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.MovieID == 0 || req.TheaterID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie_id and theater_id are required"})
	}
	if req.StartsAt.IsZero() || req.EndsAt.IsZero() || !req.EndsAt.After(req.StartsAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must precede ends_at"})
	}
	if req.BasePriceCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "base_price_cents is required"})
	}
	if req.Rows == 0 && req.Cols == 0 {
		req.Rows, req.Cols, req.PremiumRows = 5, 10, 2
	}
	if req.Rows <= 0 || req.Cols <= 0 || req.Rows > 26 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid grid dimensions"})
	}
	if req.PremiumRows < 0 || req.PremiumRows > req.Rows {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid premium_rows"})
	}
	if strings.TrimSpace(req.Screen) == "" {
		req.Screen = "Screen 1"
	}

	ctx := c.Request().Context()
	if _, err := h.Catalog.GetMovieByID(ctx, req.MovieID); err != nil {
		if errors.Is(err, catalog.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if _, err := h.Catalog.GetTheaterByID(ctx, req.TheaterID); err != nil {
		if errors.Is(err, catalog.ErrTheaterNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "theater not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	seats := catalog.GenerateSeatGrid(req.Rows, req.Cols, req.PremiumRows, req.BasePriceCents)
	show, err := h.Catalog.CreateShow(ctx, model.Show{
		MovieID:        req.MovieID,
		TheaterID:      req.TheaterID,
		Screen:         req.Screen,
		StartsAt:       req.StartsAt.UTC(),
		EndsAt:         req.EndsAt.UTC(),
		BasePriceCents: req.BasePriceCents,
		TotalSeats:     uint32(len(seats)),
		IsActive:       true,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create show"})
	}
	if err := h.Store.CreateSeats(ctx, show.ID, seats); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create seat grid"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"item":        toShowPart(show),
		"total_seats": len(seats),
	})
}

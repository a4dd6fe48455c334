package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// MemoryCatalog keeps the inventory in process memory.  Used by tests
// and STORE_DRIVER=memory deployments alongside the memory seat store.
type MemoryCatalog struct {
	mu       sync.RWMutex
	movies   map[uint64]model.Movie
	theaters map[uint64]model.Theater
	shows    map[uint64]model.Show
	nextID   uint64
	now      func() time.Time
}

// NewMemoryCatalog returns an empty in-memory catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		movies:   make(map[uint64]model.Movie),
		theaters: make(map[uint64]model.Theater),
		shows:    make(map[uint64]model.Show),
		nextID:   1,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (c *MemoryCatalog) nextIDLocked() uint64 {
	id := c.nextID
	c.nextID++
	return id
}

func (c *MemoryCatalog) CreateMovie(_ context.Context, m model.Movie) (model.Movie, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m.ID = c.nextIDLocked()
	m.IsActive = true
	m.CreatedAt = c.now()
	m.UpdatedAt = m.CreatedAt
	c.movies[m.ID] = m
	return m, nil
}

func (c *MemoryCatalog) GetMovies(_ context.Context) ([]model.Movie, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Movie, 0, len(c.movies))
	for _, m := range c.movies {
		if m.IsActive {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c *MemoryCatalog) GetMovieByID(_ context.Context, id uint64) (model.Movie, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.movies[id]
	if !ok {
		return model.Movie{}, ErrMovieNotFound
	}
	return m, nil
}

func (c *MemoryCatalog) CreateTheater(_ context.Context, t model.Theater) (model.Theater, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t.ID = c.nextIDLocked()
	t.IsActive = true
	t.CreatedAt = c.now()
	t.UpdatedAt = t.CreatedAt
	c.theaters[t.ID] = t
	return t, nil
}

func (c *MemoryCatalog) GetTheaterByID(_ context.Context, id uint64) (model.Theater, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.theaters[id]
	if !ok {
		return model.Theater{}, ErrTheaterNotFound
	}
	return t, nil
}

func (c *MemoryCatalog) CreateShow(_ context.Context, s model.Show) (model.Show, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.movies[s.MovieID]; !ok {
		return model.Show{}, ErrMovieNotFound
	}
	if _, ok := c.theaters[s.TheaterID]; !ok {
		return model.Show{}, ErrTheaterNotFound
	}
	s.ID = c.nextIDLocked()
	s.IsActive = true
	s.CreatedAt = c.now()
	s.UpdatedAt = s.CreatedAt
	c.shows[s.ID] = s
	return s, nil
}

func (c *MemoryCatalog) GetShowByID(_ context.Context, id uint64) (model.Show, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.shows[id]
	if !ok {
		return model.Show{}, ErrShowNotFound
	}
	return s, nil
}

func (c *MemoryCatalog) GetShowsForMovie(_ context.Context, movieID uint64, date *time.Time) ([]model.Show, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.movies[movieID]; !ok {
		return nil, ErrMovieNotFound
	}
	var out []model.Show
	for _, s := range c.shows {
		if s.MovieID != movieID || !s.IsActive {
			continue
		}
		if date != nil {
			day := date.UTC().Truncate(24 * time.Hour)
			if s.StartsAt.Before(day) || !s.StartsAt.Before(day.Add(24*time.Hour)) {
				continue
			}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

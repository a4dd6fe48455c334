package catalog

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// MySQLCatalog persists the inventory in the movies, theaters and
// shows tables.  Genres are stored as a comma-joined string; all
// timestamps are UTC.
type MySQLCatalog struct {
	db *sql.DB
}

// NewMySQLCatalog returns a MySQLCatalog bound to the provided database.
func NewMySQLCatalog(db *sql.DB) *MySQLCatalog { return &MySQLCatalog{db: db} }

const mysqlDatetime = "2006-01-02 15:04:05"

func (c *MySQLCatalog) CreateMovie(ctx context.Context, m model.Movie) (model.Movie, error) {
	res, err := c.db.ExecContext(ctx,
		`INSERT INTO movies (title, description, genres, duration_min, release_date, rating, poster_url, language)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Title, m.Description, strings.Join(m.Genres, ","), m.DurationMin,
		m.ReleaseDate.UTC().Format(mysqlDatetime), m.Rating, m.PosterURL, m.Language)
	if err != nil {
		return model.Movie{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Movie{}, err
	}
	return c.GetMovieByID(ctx, uint64(id))
}

func scanMovie(row interface{ Scan(...any) error }) (model.Movie, error) {
	var (
		m      model.Movie
		genres string
	)
	err := row.Scan(&m.ID, &m.Title, &m.Description, &genres, &m.DurationMin,
		&m.ReleaseDate, &m.Rating, &m.PosterURL, &m.Language, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return model.Movie{}, err
	}
	if genres != "" {
		m.Genres = strings.Split(genres, ",")
	}
	return m, nil
}

const movieColumns = `id, title, description, genres, duration_min, release_date, rating, poster_url, language, is_active, created_at, updated_at`

func (c *MySQLCatalog) GetMovies(ctx context.Context) ([]model.Movie, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE is_active = TRUE ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (c *MySQLCatalog) GetMovieByID(ctx context.Context, id uint64) (model.Movie, error) {
	m, err := scanMovie(c.db.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Movie{}, ErrMovieNotFound
	}
	return m, err
}

func (c *MySQLCatalog) CreateTheater(ctx context.Context, t model.Theater) (model.Theater, error) {
	res, err := c.db.ExecContext(ctx,
		`INSERT INTO theaters (name, city, address, total_screens) VALUES (?, ?, ?, ?)`,
		t.Name, t.City, t.Address, t.TotalScreens)
	if err != nil {
		return model.Theater{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Theater{}, err
	}
	return c.GetTheaterByID(ctx, uint64(id))
}

func (c *MySQLCatalog) GetTheaterByID(ctx context.Context, id uint64) (model.Theater, error) {
	var t model.Theater
	err := c.db.QueryRowContext(ctx,
		`SELECT id, name, city, address, total_screens, is_active, created_at, updated_at
		 FROM theaters WHERE id = ?`, id).Scan(
		&t.ID, &t.Name, &t.City, &t.Address, &t.TotalScreens, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Theater{}, ErrTheaterNotFound
	}
	return t, err
}

func (c *MySQLCatalog) CreateShow(ctx context.Context, s model.Show) (model.Show, error) {
	if _, err := c.GetMovieByID(ctx, s.MovieID); err != nil {
		return model.Show{}, err
	}
	if _, err := c.GetTheaterByID(ctx, s.TheaterID); err != nil {
		return model.Show{}, err
	}
	res, err := c.db.ExecContext(ctx,
		`INSERT INTO shows (movie_id, theater_id, screen, starts_at, ends_at, base_price_cents, total_seats)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.MovieID, s.TheaterID, s.Screen,
		s.StartsAt.UTC().Format(mysqlDatetime), s.EndsAt.UTC().Format(mysqlDatetime),
		s.BasePriceCents, s.TotalSeats)
	if err != nil {
		return model.Show{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Show{}, err
	}
	return c.GetShowByID(ctx, uint64(id))
}

const showColumns = `id, movie_id, theater_id, screen, starts_at, ends_at, base_price_cents, total_seats, is_active, created_at, updated_at`

func scanShow(row interface{ Scan(...any) error }) (model.Show, error) {
	var s model.Show
	err := row.Scan(&s.ID, &s.MovieID, &s.TheaterID, &s.Screen, &s.StartsAt, &s.EndsAt,
		&s.BasePriceCents, &s.TotalSeats, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (c *MySQLCatalog) GetShowByID(ctx context.Context, id uint64) (model.Show, error) {
	s, err := scanShow(c.db.QueryRowContext(ctx,
		`SELECT `+showColumns+` FROM shows WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Show{}, ErrShowNotFound
	}
	return s, err
}

func (c *MySQLCatalog) GetShowsForMovie(ctx context.Context, movieID uint64, date *time.Time) ([]model.Show, error) {
	if _, err := c.GetMovieByID(ctx, movieID); err != nil {
		return nil, err
	}
	query := `SELECT ` + showColumns + ` FROM shows WHERE movie_id = ? AND is_active = TRUE`
	args := []any{movieID}
	if date != nil {
		day := date.UTC().Truncate(24 * time.Hour)
		query += ` AND starts_at >= ? AND starts_at < ?`
		args = append(args, day.Format(mysqlDatetime), day.Add(24*time.Hour).Format(mysqlDatetime))
	}
	query += ` ORDER BY starts_at`

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Show
	for rows.Next() {
		s, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

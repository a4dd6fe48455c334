package model

import "time"

// Movie represents a film in the catalog.  Movies are referenced by
// shows and never carry any seat state themselves.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – display title of the movie.
//  Description – optional synopsis.
//  Genres      – list of genre labels.
//  DurationMin – running time in minutes.
//  ReleaseDate – theatrical release date.
//  Rating      – average rating on a 0–10 scale.
//  PosterURL   – optional poster image URL.
//  Language    – primary spoken language.
//  IsActive    – whether the movie is currently listed.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Movie struct {
	ID          uint64    // movies.id
	Title       string    // movies.title
	Description string    // movies.description
	Genres      []string  // movies.genres (comma separated in SQL)
	DurationMin uint32    // movies.duration_min
	ReleaseDate time.Time // movies.release_date
	Rating      float32   // movies.rating
	PosterURL   string    // movies.poster_url
	Language    string    // movies.language
	IsActive    bool      // movies.is_active
	CreatedAt   time.Time // movies.created_at
	UpdatedAt   time.Time // movies.updated_at
}

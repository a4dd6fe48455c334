package model

import "time"

// Theater represents a venue where shows are screened.  A theater has
// one or more screens; shows reference a theater and a screen label.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – theater display name.
//  City         – city the theater is located in.
//  Address      – street address (free form).
//  TotalScreens – number of screens in the venue.
//  IsActive     – whether the theater is currently listed.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Theater struct {
	ID           uint64    // theaters.id
	Name         string    // theaters.name
	City         string    // theaters.city
	Address      string    // theaters.address
	TotalScreens uint32    // theaters.total_screens
	IsActive     bool      // theaters.is_active
	CreatedAt    time.Time // theaters.created_at
	UpdatedAt    time.Time // theaters.updated_at
}

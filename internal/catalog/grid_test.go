package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

func TestGenerateSeatGrid(t *testing.T) {
	// The standard layout: 5 rows of 10, first 2 rows premium.
	seats := GenerateSeatGrid(5, 10, 2, 1200)
	require.Len(t, seats, 50)

	assert.Equal(t, "A1", seats[0].Label)
	assert.Equal(t, model.SeatPremium, seats[0].Class)
	assert.Equal(t, uint32(1800), seats[0].PriceCents)

	assert.Equal(t, "B10", seats[19].Label)
	assert.Equal(t, model.SeatPremium, seats[19].Class)

	assert.Equal(t, "C1", seats[20].Label)
	assert.Equal(t, model.SeatRegular, seats[20].Class)
	assert.Equal(t, uint32(1200), seats[20].PriceCents)

	assert.Equal(t, "E10", seats[49].Label)

	// Sequential IDs, every seat available.
	for i, seat := range seats {
		assert.Equal(t, uint64(i+1), seat.ID)
		assert.Equal(t, model.SeatAvailable, seat.Status)
	}
}

func TestGenerateSeatGridNoPremium(t *testing.T) {
	seats := GenerateSeatGrid(2, 3, 0, 1000)
	require.Len(t, seats, 6)
	for _, seat := range seats {
		assert.Equal(t, model.SeatRegular, seat.Class)
		assert.Equal(t, uint32(1000), seat.PriceCents)
	}
}

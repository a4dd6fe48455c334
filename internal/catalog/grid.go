package catalog

import (
	"fmt"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// GenerateSeatGrid builds the fixed seat grid for a new show: rows are
// lettered A, B, C, ... and columns numbered from 1.  The first
// premiumRows rows are premium seats priced at 150% of the base price;
// the rest are regular at the base price.  Seat IDs are sequential
// within the show, matching row/column order.
func GenerateSeatGrid(rows, cols, premiumRows int, basePriceCents uint32) []model.Seat {
	premiumPrice := basePriceCents + basePriceCents/2
	seats := make([]model.Seat, 0, rows*cols)
	id := uint64(1)
	for r := 0; r < rows; r++ {
		rowLabel := string(rune('A' + r))
		class, price := model.SeatRegular, basePriceCents
		if r < premiumRows {
			class, price = model.SeatPremium, premiumPrice
		}
		for c := 1; c <= cols; c++ {
			seats = append(seats, model.Seat{
				ID:         id,
				Label:      fmt.Sprintf("%s%d", rowLabel, c),
				Row:        rowLabel,
				Column:     uint32(c),
				Class:      class,
				PriceCents: price,
				Status:     model.SeatAvailable,
			})
			id++
		}
	}
	return seats
}

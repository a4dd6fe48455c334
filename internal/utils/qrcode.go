package utils

import (
	"encoding/json"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

// TicketPayload is the document encoded into a booking's QR code.  Gate
// scanners decode it to verify the booking without a round trip to the
// API.  PaymentRef doubles as a tamper check against the ledger row.
type TicketPayload struct {
	BookingID  uint64    `json:"booking_id"`
	UserID     uint64    `json:"user_id"`
	ShowID     uint64    `json:"show_id"`
	Seats      []string  `json:"seats"`
	PaymentRef string    `json:"payment_ref"`
	IssuedAt   time.Time `json:"issued_at"`
}

// TicketQR renders the payload as a 256x256 PNG QR code and returns the
// raw image bytes.
func TicketQR(p TicketPayload) ([]byte, error) {
	doc, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(doc), qrcode.Medium, 256)
}

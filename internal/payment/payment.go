// Package payment wraps the payment collaborator.  Only the mock
// gateway exists: it returns a pass/fail result with a reference
// string and never talks to an external processor.  The reservation
// core consumes nothing but that reference.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrPaymentDeclined is returned when the gateway declines a charge.
var ErrPaymentDeclined = errors.New("payment declined")

// Gateway charges a user and returns a payment reference on success.
type Gateway interface {
	Charge(ctx context.Context, userID uint64, amountCents uint32, method string) (string, error)
}

// MockGateway approves every charge with a positive amount.  The
// method string is accepted as-is; a real integration would route on
// it.  References use the PAY_ prefix the client already renders.
type MockGateway struct{}

// NewMockGateway returns the mock payment gateway.
func NewMockGateway() *MockGateway { return &MockGateway{} }

// Charge approves the payment and mints a unique reference.  A zero
// amount is declined so a booking can never be confirmed for free by
// accident.
func (g *MockGateway) Charge(_ context.Context, _ uint64, amountCents uint32, _ string) (string, error) {
	if amountCents == 0 {
		return "", ErrPaymentDeclined
	}
	return fmt.Sprintf("PAY_%s", uuid.NewString()), nil
}

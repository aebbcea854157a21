// Package gateway abstracts the payment providers behind one interface so
// the booking flow never branches on which processor is in play.
package gateway

import (
	"context"

	"github.com/google/uuid"
)

// OrderParams carries what a provider needs to open a payment order.
// Amount is in minor currency units (paise/cents).
type OrderParams struct {
	Amount    int64
	Currency  string
	BookingID uuid.UUID
	Vertical  string
	ItemName  string
	// Receipt is our internal reference attached to the gateway order
	Receipt string
}

// Order is the provider-side order handle returned to the client so it can
// drive the payment UI.
type Order struct {
	// ID is the gateway's order identifier; it is stored on the booking
	// and is the only key the confirm transition matches on.
	ID string
	// KeyID is the publishable key (Razorpay checkout needs it client-side)
	KeyID string
	// CheckoutURL is set for redirect-style providers (Stripe)
	CheckoutURL string
}

// Completion is the proof of payment a provider hands back, either as a
// client-submitted callback (Razorpay's order/payment/signature triplet) or
// as a signed webhook (Stripe's payload plus signature header).
type Completion struct {
	OrderID   string
	PaymentID string
	Signature string

	WebhookPayload []byte
	WebhookHeader  string
}

// PaymentGateway is implemented once per provider.
type PaymentGateway interface {
	// Name identifies the provider in bookings and audit rows
	Name() string

	// CreateOrder opens a payment order with the provider
	CreateOrder(ctx context.Context, params OrderParams) (*Order, error)

	// VerifyCompletion checks the cryptographic proof in a completion.
	// It must return false on any tampering and must never panic on
	// malformed input.
	VerifyCompletion(completion Completion) bool
}

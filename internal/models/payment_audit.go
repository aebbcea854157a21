package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentEventType represents the type of payment event
type PaymentEventType string

const (
	PaymentEventOrderCreated      PaymentEventType = "order_created"
	PaymentEventOrderFailed       PaymentEventType = "order_failed"
	PaymentEventVerified          PaymentEventType = "payment_verified"
	PaymentEventSignatureMismatch PaymentEventType = "signature_mismatch"
	PaymentEventWebhookReceived   PaymentEventType = "webhook_received"
	PaymentEventWebhookRejected   PaymentEventType = "webhook_rejected"
	PaymentEventBookingConfirmed  PaymentEventType = "booking_confirmed"
	PaymentEventBookingCancelled  PaymentEventType = "booking_cancelled"
	PaymentEventBookingExpired    PaymentEventType = "booking_expired"
)

// PaymentEventSource identifies where the event originated
type PaymentEventSource string

const (
	PaymentSourceBackend       PaymentEventSource = "backend"
	PaymentSourceClient        PaymentEventSource = "client"
	PaymentSourceStripeWebhook PaymentEventSource = "stripe_webhook"
	PaymentSourceSystem        PaymentEventSource = "system"
)

// PaymentAudit is an immutable audit log entry for payment events. Rows are
// insert-only; nothing in the system updates or deletes them.
type PaymentAudit struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	BookingID *uuid.UUID `json:"booking_id,omitempty" db:"booking_id"`
	Vertical  *Vertical  `json:"vertical,omitempty" db:"vertical"`

	// Gateway references
	OrderID   *string `json:"order_id,omitempty" db:"order_id"`
	PaymentID *string `json:"payment_id,omitempty" db:"payment_id"`
	Gateway   *string `json:"gateway,omitempty" db:"gateway"`

	// Event info
	EventType   PaymentEventType   `json:"event_type" db:"event_type"`
	EventSource PaymentEventSource `json:"event_source" db:"event_source"`

	// Amount tracking, minor units
	ExpectedAmount *int64 `json:"expected_amount,omitempty" db:"expected_amount"`
	ReceivedAmount *int64 `json:"received_amount,omitempty" db:"received_amount"`
	AmountsMatch   *bool  `json:"amounts_match,omitempty" db:"amounts_match"`

	// Error tracking
	ErrorMessage *string `json:"error_message,omitempty" db:"error_message"`

	// Request metadata
	IPAddress *string `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent *string `json:"user_agent,omitempty" db:"user_agent"`
	Client    *string `json:"client,omitempty" db:"client"` // parsed browser/platform

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewPaymentAudit creates a new payment audit entry with required fields
func NewPaymentAudit(eventType PaymentEventType, source PaymentEventSource) *PaymentAudit {
	return &PaymentAudit{
		ID:          uuid.New(),
		EventType:   eventType,
		EventSource: source,
		CreatedAt:   time.Now(),
	}
}

// SetBooking sets the booking reference for the audit
func (pa *PaymentAudit) SetBooking(bookingID uuid.UUID, vertical Vertical) *PaymentAudit {
	pa.BookingID = &bookingID
	pa.Vertical = &vertical
	return pa
}

// SetGatewayRefs sets the gateway-side identifiers
func (pa *PaymentAudit) SetGatewayRefs(gateway, orderID, paymentID string) *PaymentAudit {
	if gateway != "" {
		pa.Gateway = &gateway
	}
	if orderID != "" {
		pa.OrderID = &orderID
	}
	if paymentID != "" {
		pa.PaymentID = &paymentID
	}
	return pa
}

// SetAmounts sets and compares amounts, returning whether they match
func (pa *PaymentAudit) SetAmounts(expected, received int64) bool {
	pa.ExpectedAmount = &expected
	pa.ReceivedAmount = &received
	match := expected == received
	pa.AmountsMatch = &match
	return match
}

// SetError sets error information
func (pa *PaymentAudit) SetError(message string) *PaymentAudit {
	pa.ErrorMessage = &message
	return pa
}

// SetMetadata sets request metadata. client is the parsed browser/platform
// string derived from the raw user agent.
func (pa *PaymentAudit) SetMetadata(ip, userAgent, client string) *PaymentAudit {
	if ip != "" {
		pa.IPAddress = &ip
	}
	if userAgent != "" {
		pa.UserAgent = &userAgent
	}
	if client != "" {
		pa.Client = &client
	}
	return pa
}

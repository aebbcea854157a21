package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// REQUEST/RESPONSE STRUCTS
// ============================================================================

// CreateOrderRequest is the BookingRequest-shaped payload a client sends to
// start checkout. It is ephemeral: validated, priced, and converted into a
// Booking, never persisted as-is.
type CreateOrderRequest struct {
	ItemID string `json:"item_id" binding:"required"`

	// Hotel stays
	CheckIn  *string `json:"check_in,omitempty"`  // "2026-01-15"
	CheckOut *string `json:"check_out,omitempty"` // "2026-01-18"

	// Flight/bus/train travel
	TravelDate *string `json:"travel_date,omitempty"`

	Guests []Guest `json:"guests,omitempty"`

	// TotalAmount is in minor currency units, computed client-side and
	// re-checked against inventory pricing server-side
	TotalAmount int64 `json:"total_amount" binding:"required"`

	ContactPhone string `json:"contact_phone" binding:"required"`
	ContactEmail string `json:"contact_email,omitempty"`
}

// Validate checks the request shape for the given vertical
func (r *CreateOrderRequest) Validate(vertical Vertical) error {
	if _, err := uuid.Parse(r.ItemID); err != nil {
		return errors.New("invalid item_id")
	}
	if r.TotalAmount <= 0 {
		return errors.New("total_amount must be a positive integer in minor units")
	}
	switch vertical {
	case VerticalHotel:
		checkIn, err := r.parseDate(r.CheckIn)
		if err != nil || checkIn == nil {
			return errors.New("check_in is required for hotel bookings (YYYY-MM-DD)")
		}
		checkOut, err := r.parseDate(r.CheckOut)
		if err != nil || checkOut == nil {
			return errors.New("check_out is required for hotel bookings (YYYY-MM-DD)")
		}
		if !checkOut.After(*checkIn) {
			return errors.New("check_out must be after check_in")
		}
	case VerticalFlight, VerticalBus, VerticalTrain:
		travel, err := r.parseDate(r.TravelDate)
		if err != nil || travel == nil {
			return errors.New("travel_date is required (YYYY-MM-DD)")
		}
		if len(r.Guests) == 0 {
			return errors.New("at least one passenger is required")
		}
	default:
		return errors.New("unknown booking vertical")
	}
	if len(r.Guests) > 10 {
		return errors.New("maximum 10 guests per booking")
	}
	return nil
}

// Dates resolves the request's date fields for the given vertical. Validate
// must have passed first.
func (r *CreateOrderRequest) Dates(vertical Vertical) (checkIn, checkOut, travel *time.Time) {
	if vertical == VerticalHotel {
		checkIn, _ = r.parseDate(r.CheckIn)
		checkOut, _ = r.parseDate(r.CheckOut)
		return checkIn, checkOut, nil
	}
	travel, _ = r.parseDate(r.TravelDate)
	return nil, nil, travel
}

func (r *CreateOrderRequest) parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateOrderResponse carries the gateway credentials the client checkout
// needs, plus our internal booking id. It is only returned after the
// pending booking row is safely persisted.
type CreateOrderResponse struct {
	BookingID uuid.UUID `json:"booking_id"`
	OrderID   string    `json:"order_id"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	// KeyID is the gateway's public key (pull-style) or the hosted
	// checkout URL (push-style)
	KeyID       string `json:"key_id,omitempty"`
	CheckoutURL string `json:"checkout_url,omitempty"`
	Gateway     string `json:"gateway"`
}

// VerifyPaymentRequest is the signed triplet the pull-style gateway's
// checkout widget hands back to the client on success.
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// VerifyPaymentResponse reports the outcome of signature verification and
// the confirm transition.
type VerifyPaymentResponse struct {
	Success   bool      `json:"success"`
	BookingID uuid.UUID `json:"booking_id,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// CancelBookingResponse reports the outcome of a cancellation, including
// whether the late-cancellation fee applies (cancelling on the check-in /
// travel date itself).
type CancelBookingResponse struct {
	BookingID uuid.UUID `json:"booking_id"`
	Status    string    `json:"status"`
	FeeLiable bool      `json:"fee_liable"`
	Message   string    `json:"message"`
}

// NotifyRequest asks for a post-confirmation side effect to run. Phone
// overrides the booking's stored contact phone when present.
type NotifyRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
	Phone     string `json:"phone,omitempty"`
}

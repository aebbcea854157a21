package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// BOOKING STATUSES (match DB ENUMs)
// ============================================================================

// BookingStatus represents the lifecycle status of a booking
// Matches PostgreSQL ENUM: booking_status
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// PaymentStatus represents the payment axis of a booking, independent of
// BookingStatus. The two move together on the confirm path
// (pending/pending -> paid/confirmed) but cancellation/refund is a separate
// transition.
// Matches PostgreSQL ENUM: payment_status
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Vertical identifies which inventory a booking belongs to
type Vertical string

const (
	VerticalHotel  Vertical = "hotel"
	VerticalFlight Vertical = "flight"
	VerticalBus    Vertical = "bus"
	VerticalTrain  Vertical = "train"
)

// Valid reports whether v is a known vertical
func (v Vertical) Valid() bool {
	switch v {
	case VerticalHotel, VerticalFlight, VerticalBus, VerticalTrain:
		return true
	}
	return false
}

// AllVerticals lists every vertical, in a stable order
func AllVerticals() []Vertical {
	return []Vertical{VerticalHotel, VerticalFlight, VerticalBus, VerticalTrain}
}

// ============================================================================
// JSONB PAYLOAD TYPES
// ============================================================================

// Guest is one traveller on a booking. The list is semi-structured: hotel
// bookings carry guests, flight/bus/train bookings carry passengers with
// seat assignments.
type Guest struct {
	Name      string  `json:"name"`
	Age       *int    `json:"age,omitempty"`
	Gender    *string `json:"gender,omitempty"`
	Seat      *string `json:"seat,omitempty"`
	IsPrimary bool    `json:"is_primary"`
}

// GuestList stores the guest/passenger list as JSONB
type GuestList []Guest

// Value implements the driver.Valuer interface
func (g GuestList) Value() (driver.Value, error) {
	if g == nil {
		return nil, nil
	}
	bytes, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

// Scan implements the sql.Scanner interface
func (g *GuestList) Scan(value interface{}) error {
	if value == nil {
		*g = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, g)
	case string:
		return json.Unmarshal([]byte(v), g)
	default:
		return fmt.Errorf("cannot scan %T into GuestList", value)
	}
}

// JSONB is a custom type for handling JSONB fields
type JSONB map[string]interface{}

// Value implements the driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	bytes, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

// Scan implements the sql.Scanner interface
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("cannot scan %T into JSONB", value)
	}
}

// ============================================================================
// BOOKING ENTITY
// ============================================================================

// Booking is one reservation row. Each vertical persists to its own table
// (hotel_bookings, flight_bookings, ...) but all share this lifecycle shape.
//
// GatewayOrderID is set exactly once at creation and never changes;
// re-initiating payment for a pending booking requires a new Booking.
// GatewayPaymentID is set exactly once, atomically with the confirm
// transition, so status=confirmed always implies payment_status=paid and a
// non-nil payment id.
type Booking struct {
	ID       uuid.UUID `json:"id" db:"id"`
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	Vertical Vertical  `json:"vertical" db:"vertical"`

	// Item reference plus a denormalized name for notifications/receipts
	ItemID   uuid.UUID `json:"item_id" db:"item_id"`
	ItemName string    `json:"item_name" db:"item_name"`

	// Stay parameters (hotel) or travel date (flight/bus/train)
	CheckIn    *time.Time `json:"check_in,omitempty" db:"check_in"`
	CheckOut   *time.Time `json:"check_out,omitempty" db:"check_out"`
	TravelDate *time.Time `json:"travel_date,omitempty" db:"travel_date"`

	Guests GuestList `json:"guests,omitempty" db:"guests"`

	// TotalAmount is in minor currency units (paise/cents)
	TotalAmount int64  `json:"total_amount" db:"total_amount"`
	Currency    string `json:"currency" db:"currency"`

	ContactPhone string `json:"contact_phone" db:"contact_phone"`
	ContactEmail string `json:"contact_email" db:"contact_email"`

	PaymentGateway   string  `json:"payment_gateway" db:"payment_gateway"`
	GatewayOrderID   string  `json:"gateway_order_id" db:"gateway_order_id"`
	GatewayPaymentID *string `json:"gateway_payment_id,omitempty" db:"gateway_payment_id"`

	Status        BookingStatus `json:"status" db:"status"`
	PaymentStatus PaymentStatus `json:"payment_status" db:"payment_status"`

	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty" db:"confirmed_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`
}

// IsConfirmed reports whether the booking completed the confirm transition
func (b *Booking) IsConfirmed() bool {
	return b.Status == BookingStatusConfirmed
}

// CancellationDate returns the date the cancellation rule is checked
// against: check-in for hotels, travel date otherwise.
func (b *Booking) CancellationDate() *time.Time {
	if b.Vertical == VerticalHotel {
		return b.CheckIn
	}
	return b.TravelDate
}

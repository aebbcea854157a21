package models

import (
	"time"

	"github.com/google/uuid"
)

// Hotel is a bookable hotel room listing. PricePerNight is in minor
// currency units (paise/cents), like every amount in this system.
type Hotel struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	City          string    `json:"city" db:"city"`
	Address       string    `json:"address" db:"address"`
	Description   *string   `json:"description,omitempty" db:"description"`
	PricePerNight int64     `json:"price_per_night" db:"price_per_night"`
	Currency      string    `json:"currency" db:"currency"`
	Rating        *float64  `json:"rating,omitempty" db:"rating"`
	ImageURL      *string   `json:"image_url,omitempty" db:"image_url"`
	Active        bool      `json:"active" db:"active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Flight is a bookable flight listing. Fare is per seat, minor units.
type Flight struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Airline       string    `json:"airline" db:"airline"`
	FlightNumber  string    `json:"flight_number" db:"flight_number"`
	Origin        string    `json:"origin" db:"origin"`
	Destination   string    `json:"destination" db:"destination"`
	DepartureTime time.Time `json:"departure_time" db:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time" db:"arrival_time"`
	Fare          int64     `json:"fare" db:"fare"`
	Currency      string    `json:"currency" db:"currency"`
	CabinClass    string    `json:"cabin_class" db:"cabin_class"`
	SeatsTotal    int       `json:"seats_total" db:"seats_total"`
	Active        bool      `json:"active" db:"active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// InventoryItem is the slice of an inventory row the payment flow needs:
// enough to name the item on receipts and to sanity-check ownership of the
// reference, nothing more.
type InventoryItem struct {
	ID       uuid.UUID `db:"id"`
	Name     string    `db:"name"`
	Price    int64     `db:"price"`
	Currency string    `db:"currency"`
}

// User is the profile slice joined into receipts and notifications.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Phone     string    `json:"phone" db:"phone"`
	Email     string    `json:"email" db:"email"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FullName joins the name parts, tolerating either being empty
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

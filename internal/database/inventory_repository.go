package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/voyago/booking-backend/internal/models"
)

// itemQueries projects each vertical's inventory table onto the common
// InventoryItem shape the payment flow prices bookings against.
var itemQueries = map[models.Vertical]string{
	models.VerticalHotel: `
		SELECT id, name, price_per_night AS price, currency
		FROM hotels WHERE id = $1 AND active = TRUE`,
	models.VerticalFlight: `
		SELECT id, airline || ' ' || flight_number AS name, fare AS price, currency
		FROM flights WHERE id = $1 AND active = TRUE`,
	models.VerticalBus: `
		SELECT id, operator_name || ' ' || route_name AS name, fare AS price, currency
		FROM bus_trips WHERE id = $1 AND active = TRUE`,
	models.VerticalTrain: `
		SELECT id, train_name || ' ' || train_number AS name, fare AS price, currency
		FROM train_trips WHERE id = $1 AND active = TRUE`,
}

// InventoryRepository reads the bookable listings for all verticals
type InventoryRepository struct {
	db DB
}

// NewInventoryRepository creates a new InventoryRepository
func NewInventoryRepository(db DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// GetItem loads the priced item a booking references. Returns nil when the
// id does not exist or the listing is inactive.
func (r *InventoryRepository) GetItem(vertical models.Vertical, id uuid.UUID) (*models.InventoryItem, error) {
	query, ok := itemQueries[vertical]
	if !ok {
		return nil, fmt.Errorf("unknown inventory vertical: %s", vertical)
	}

	var item models.InventoryItem
	err := r.db.Get(&item, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s inventory item: %w", vertical, err)
	}
	return &item, nil
}

// ListHotels returns active hotels, optionally filtered by city
func (r *InventoryRepository) ListHotels(city string, limit, offset int) ([]*models.Hotel, error) {
	var hotels []*models.Hotel
	var err error

	if city != "" {
		query := `
			SELECT * FROM hotels
			WHERE active = TRUE AND LOWER(city) = LOWER($1)
			ORDER BY rating DESC NULLS LAST, name ASC
			LIMIT $2 OFFSET $3`
		err = r.db.Select(&hotels, query, city, limit, offset)
	} else {
		query := `
			SELECT * FROM hotels
			WHERE active = TRUE
			ORDER BY rating DESC NULLS LAST, name ASC
			LIMIT $1 OFFSET $2`
		err = r.db.Select(&hotels, query, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	return hotels, nil
}

// GetHotelByID retrieves a hotel by id
func (r *InventoryRepository) GetHotelByID(id uuid.UUID) (*models.Hotel, error) {
	var hotel models.Hotel
	query := `SELECT * FROM hotels WHERE id = $1`

	err := r.db.Get(&hotel, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hotel: %w", err)
	}
	return &hotel, nil
}

// ListFlights returns active flights, optionally filtered by route
func (r *InventoryRepository) ListFlights(origin, destination string, limit, offset int) ([]*models.Flight, error) {
	var flights []*models.Flight
	var err error

	if origin != "" && destination != "" {
		query := `
			SELECT * FROM flights
			WHERE active = TRUE
			  AND LOWER(origin) = LOWER($1)
			  AND LOWER(destination) = LOWER($2)
			ORDER BY departure_time ASC
			LIMIT $3 OFFSET $4`
		err = r.db.Select(&flights, query, origin, destination, limit, offset)
	} else {
		query := `
			SELECT * FROM flights
			WHERE active = TRUE
			ORDER BY departure_time ASC
			LIMIT $1 OFFSET $2`
		err = r.db.Select(&flights, query, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list flights: %w", err)
	}
	return flights, nil
}

// GetFlightByID retrieves a flight by id
func (r *InventoryRepository) GetFlightByID(id uuid.UUID) (*models.Flight, error) {
	var flight models.Flight
	query := `SELECT * FROM flights WHERE id = $1`

	err := r.db.Get(&flight, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}
	return &flight, nil
}

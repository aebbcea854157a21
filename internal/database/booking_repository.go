package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/voyago/booking-backend/internal/models"
)

// bookingTables maps each vertical to its table. Keeping the mapping closed
// here means a vertical can never smuggle arbitrary SQL into a query.
var bookingTables = map[models.Vertical]string{
	models.VerticalHotel:  "hotel_bookings",
	models.VerticalFlight: "flight_bookings",
	models.VerticalBus:    "bus_bookings",
	models.VerticalTrain:  "train_bookings",
}

const bookingColumns = `
	id, user_id, item_id, item_name,
	check_in, check_out, travel_date, guests,
	total_amount, currency, contact_phone, contact_email,
	payment_gateway, gateway_order_id, gateway_payment_id,
	status, payment_status,
	created_at, updated_at, confirmed_at, cancelled_at`

// BookingRepository handles booking rows across all four vertical tables,
// which share an identical lifecycle shape.
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func tableFor(vertical models.Vertical) (string, error) {
	table, ok := bookingTables[vertical]
	if !ok {
		return "", fmt.Errorf("unknown booking vertical: %s", vertical)
	}
	return table, nil
}

// Insert persists a new booking in pending/pending state. The id and
// timestamps are set here; the gateway order id must already be present.
func (r *BookingRepository) Insert(booking *models.Booking) error {
	table, err := tableFor(booking.Vertical)
	if err != nil {
		return err
	}

	// Callers may pre-assign the id (it is shared with the gateway
	// order metadata before the row exists)
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.Status = models.BookingStatusPending
	booking.PaymentStatus = models.PaymentStatusPending
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt

	query := fmt.Sprintf(`
		INSERT INTO %s (
			id, user_id, item_id, item_name,
			check_in, check_out, travel_date, guests,
			total_amount, currency, contact_phone, contact_email,
			payment_gateway, gateway_order_id,
			status, payment_status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
		)`, table)

	_, err = r.db.Exec(query,
		booking.ID, booking.UserID, booking.ItemID, booking.ItemName,
		booking.CheckIn, booking.CheckOut, booking.TravelDate, booking.Guests,
		booking.TotalAmount, booking.Currency, booking.ContactPhone, booking.ContactEmail,
		booking.PaymentGateway, booking.GatewayOrderID,
		booking.Status, booking.PaymentStatus, booking.CreatedAt, booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s booking: %w", booking.Vertical, err)
	}
	return nil
}

// ConfirmByOrderID performs the single atomic confirm transition: set
// payment_status=paid, status=confirmed and record the gateway payment id,
// matched on the stored order id alone.
//
// The update is deliberately NOT conditioned on the current status: all
// observed transitions are monotonic pending->confirmed, so duplicate
// verify calls re-apply identical values and the statement stays
// idempotent. No prior read participates in the decision.
func (r *BookingRepository) ConfirmByOrderID(vertical models.Vertical, orderID, paymentID string) (uuid.UUID, error) {
	table, err := tableFor(vertical)
	if err != nil {
		return uuid.Nil, err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET payment_status = 'paid',
		    status = 'confirmed',
		    gateway_payment_id = $2,
		    confirmed_at = COALESCE(confirmed_at, NOW()),
		    updated_at = NOW()
		WHERE gateway_order_id = $1
		  AND status <> 'cancelled'
		RETURNING id`, table)

	var bookingID uuid.UUID
	err = r.db.QueryRow(query, orderID, paymentID).Scan(&bookingID)
	if err == sql.ErrNoRows {
		// Either the order is unknown or the booking was cancelled
		// (user cancel or expiry sweep) before payment completed. The
		// guard keeps a late completion from resurrecting it.
		existing, getErr := r.GetByOrderID(vertical, orderID)
		if getErr == nil && existing != nil {
			return uuid.Nil, models.ErrBookingCancelled
		}
		return uuid.Nil, models.ErrBookingNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to confirm booking for order %s: %w", orderID, err)
	}
	return bookingID, nil
}

// GetByID retrieves a booking by id
func (r *BookingRepository) GetByID(vertical models.Vertical, id uuid.UUID) (*models.Booking, error) {
	table, err := tableFor(vertical)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, bookingColumns, table)

	booking, err := r.scanBooking(query, id)
	if err != nil {
		return nil, err
	}
	if booking != nil {
		booking.Vertical = vertical
	}
	return booking, nil
}

// GetByOrderID retrieves a booking by its gateway order id
func (r *BookingRepository) GetByOrderID(vertical models.Vertical, orderID string) (*models.Booking, error) {
	table, err := tableFor(vertical)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE gateway_order_id = $1`, bookingColumns, table)

	booking, err := r.scanBooking(query, orderID)
	if err != nil {
		return nil, err
	}
	if booking != nil {
		booking.Vertical = vertical
	}
	return booking, nil
}

// ListByUser retrieves a user's bookings for one vertical, newest first
func (r *BookingRepository) ListByUser(vertical models.Vertical, userID uuid.UUID, limit, offset int) ([]*models.Booking, error) {
	table, err := tableFor(vertical)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, bookingColumns, table)

	rows, err := r.db.Query(query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s bookings: %w", vertical, err)
	}
	defer rows.Close()

	bookings := make([]*models.Booking, 0)
	for rows.Next() {
		booking, err := scanBookingRow(rows)
		if err != nil {
			return nil, err
		}
		booking.Vertical = vertical
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

// CancelConfirmed flips a confirmed booking into cancelled/refunded.
// Unlike the confirm transition this IS guarded on the current status: a
// pending or already-cancelled booking must not pass through here.
func (r *BookingRepository) CancelConfirmed(vertical models.Vertical, id, userID uuid.UUID) (bool, error) {
	table, err := tableFor(vertical)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET status = 'cancelled',
		    payment_status = 'refunded',
		    cancelled_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND status = 'confirmed'`, table)

	result, err := r.db.Exec(query, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to cancel booking %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ExpirePending cancels bookings still pending/pending after the TTL. Rows
// that were never paid go straight to cancelled; payment_status stays
// pending because nothing was ever charged.
func (r *BookingRepository) ExpirePending(vertical models.Vertical, olderThan time.Time) (int64, error) {
	table, err := tableFor(vertical)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET status = 'cancelled',
		    cancelled_at = NOW(),
		    updated_at = NOW()
		WHERE status = 'pending'
		  AND payment_status = 'pending'
		  AND created_at < $1`, table)

	result, err := r.db.Exec(query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to expire pending %s bookings: %w", vertical, err)
	}
	return result.RowsAffected()
}

// scanBooking runs a single-row query and maps sql.ErrNoRows to nil
func (r *BookingRepository) scanBooking(query string, arg interface{}) (*models.Booking, error) {
	row := r.db.QueryRow(query, arg)

	var b models.Booking
	err := row.Scan(
		&b.ID, &b.UserID, &b.ItemID, &b.ItemName,
		&b.CheckIn, &b.CheckOut, &b.TravelDate, &b.Guests,
		&b.TotalAmount, &b.Currency, &b.ContactPhone, &b.ContactEmail,
		&b.PaymentGateway, &b.GatewayOrderID, &b.GatewayPaymentID,
		&b.Status, &b.PaymentStatus,
		&b.CreatedAt, &b.UpdatedAt, &b.ConfirmedAt, &b.CancelledAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}
	return &b, nil
}

// rowScanner covers *sql.Rows for multi-row scans
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBookingRow(rows rowScanner) (*models.Booking, error) {
	var b models.Booking
	err := rows.Scan(
		&b.ID, &b.UserID, &b.ItemID, &b.ItemName,
		&b.CheckIn, &b.CheckOut, &b.TravelDate, &b.Guests,
		&b.TotalAmount, &b.Currency, &b.ContactPhone, &b.ContactEmail,
		&b.PaymentGateway, &b.GatewayOrderID, &b.GatewayPaymentID,
		&b.Status, &b.PaymentStatus,
		&b.CreatedAt, &b.UpdatedAt, &b.ConfirmedAt, &b.CancelledAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}
	return &b, nil
}

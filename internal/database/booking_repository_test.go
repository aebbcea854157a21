package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voyago/booking-backend/internal/models"
)

func setupBookingRepoTest(t *testing.T) (*BookingRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewBookingRepository(&PostgresDB{DB: sqlxDB})

	return repo, mock, func() { db.Close() }
}

func TestBookingRepository_Insert(t *testing.T) {
	repo, mock, cleanup := setupBookingRepoTest(t)
	defer cleanup()

	checkIn := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 10, 4, 0, 0, 0, 0, time.UTC)
	booking := &models.Booking{
		UserID:         uuid.New(),
		Vertical:       models.VerticalHotel,
		ItemID:         uuid.New(),
		ItemName:       "Sea Breeze Resort",
		CheckIn:        &checkIn,
		CheckOut:       &checkOut,
		TotalAmount:    150000,
		Currency:       "INR",
		ContactPhone:   "+919812345678",
		PaymentGateway: "razorpay",
		GatewayOrderID: "order_abc123",
	}

	mock.ExpectExec("INSERT INTO hotel_bookings").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Insert(booking)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, booking.ID)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Equal(t, models.PaymentStatusPending, booking.PaymentStatus)
	assert.False(t, booking.CreatedAt.IsZero())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_Insert_UnknownVertical(t *testing.T) {
	repo, _, cleanup := setupBookingRepoTest(t)
	defer cleanup()

	err := repo.Insert(&models.Booking{Vertical: "cruise"})
	assert.Error(t, err)
}

func TestBookingRepository_ConfirmByOrderID(t *testing.T) {
	repo, mock, cleanup := setupBookingRepoTest(t)
	defer cleanup()

	bookingID := uuid.New()

	mock.ExpectQuery("UPDATE flight_bookings").
		WithArgs("order_xyz", "pay_123").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(bookingID.String()))

	got, err := repo.ConfirmByOrderID(models.VerticalFlight, "order_xyz", "pay_123")
	require.NoError(t, err)
	assert.Equal(t, bookingID, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_ConfirmByOrderID_Idempotent(t *testing.T) {
	repo, mock, cleanup := setupBookingRepoTest(t)
	defer cleanup()

	bookingID := uuid.New()

	// Two identical confirms for the same order return the same id
	for i := 0; i < 2; i++ {
		mock.ExpectQuery("UPDATE hotel_bookings").
			WithArgs("order_dup", "pay_dup").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(bookingID.String()))
	}

	first, err := repo.ConfirmByOrderID(models.VerticalHotel, "order_dup", "pay_dup")
	require.NoError(t, err)
	second, err := repo.ConfirmByOrderID(models.VerticalHotel, "order_dup", "pay_dup")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_ConfirmByOrderID_UnknownOrder(t *testing.T) {
	repo, mock, cleanup := setupBookingRepoTest(t)
	defer cleanup()

	mock.ExpectQuery("UPDATE bus_bookings").
		WithArgs("order_nope", "pay_1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT (.+) FROM bus_bookings").
		WithArgs("order_nope").
		WillReturnRows(bookingRows())

	_, err := repo.ConfirmByOrderID(models.VerticalBus, "order_nope", "pay_1")
	assert.ErrorIs(t, err, models.ErrBookingNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func bookingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "item_id", "item_name",
		"check_in", "check_out", "travel_date", "guests",
		"total_amount", "currency", "contact_phone", "contact_email",
		"payment_gateway", "gateway_order_id", "gateway_payment_id",
		"status", "payment_status",
		"created_at", "updated_at", "confirmed_at", "cancelled_at",
	})
}

func TestBookingRepository_ConfirmByOrderID_CancelledBookingNotResurrected(t *testing.T) {
	repo, mock, cleanup := setupBookingRepoTest(t)
	defer cleanup()

	// The guarded UPDATE matches nothing, but the row exists: it was
	// cancelled before the payment completed.
	mock.ExpectQuery("UPDATE hotel_bookings").
		WithArgs("order_late", "pay_late").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	now := time.Now()
	rows := bookingRows().AddRow(
		uuid.New(), uuid.New(), uuid.New(), "Sea Breeze Resort",
		now, now.Add(72*time.Hour), nil, []byte(`[]`),
		int64(150000), "INR", "+919812345678", "",
		"razorpay", "order_late", nil,
		"cancelled", "pending",
		now, now, nil, now,
	)
	mock.ExpectQuery("SELECT (.+) FROM hotel_bookings").
		WithArgs("order_late").
		WillReturnRows(rows)

	_, err := repo.ConfirmByOrderID(models.VerticalHotel, "order_late", "pay_late")
	assert.ErrorIs(t, err, models.ErrBookingCancelled)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_CancelConfirmed(t *testing.T) {
	repo, mock, cleanup := setupBookingRepoTest(t)
	defer cleanup()

	bookingID := uuid.New()
	userID := uuid.New()

	mock.ExpectExec("UPDATE hotel_bookings").
		WithArgs(bookingID, userID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	updated, err := repo.CancelConfirmed(models.VerticalHotel, bookingID, userID)
	require.NoError(t, err)
	assert.True(t, updated)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_CancelConfirmed_NotConfirmed(t *testing.T) {
	repo, mock, cleanup := setupBookingRepoTest(t)
	defer cleanup()

	bookingID := uuid.New()
	userID := uuid.New()

	// The guard (status = 'confirmed') matches no rows
	mock.ExpectExec("UPDATE train_bookings").
		WithArgs(bookingID, userID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	updated, err := repo.CancelConfirmed(models.VerticalTrain, bookingID, userID)
	require.NoError(t, err)
	assert.False(t, updated)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_ExpirePending(t *testing.T) {
	repo, mock, cleanup := setupBookingRepoTest(t)
	defer cleanup()

	cutoff := time.Now().Add(-24 * time.Hour)

	mock.ExpectExec("UPDATE hotel_bookings").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	expired, err := repo.ExpirePending(models.VerticalHotel, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), expired)

	assert.NoError(t, mock.ExpectationsWereMet())
}

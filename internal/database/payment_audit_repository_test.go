package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voyago/booking-backend/internal/models"
)

func setupAuditRepoTest(t *testing.T) (*PaymentAuditRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewPaymentAuditRepository(&PostgresDB{DB: sqlxDB}, logger)

	return repo, mock, func() { db.Close() }
}

func auditRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "booking_id", "order_id",
		"event_type", "event_source",
		"expected_amount", "received_amount", "amounts_match",
		"created_at",
	})
}

func TestPaymentAuditRepository_Log(t *testing.T) {
	repo, mock, cleanup := setupAuditRepoTest(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO payment_audits").
		WillReturnResult(sqlmock.NewResult(0, 1))

	audit := models.NewPaymentAudit(models.PaymentEventOrderCreated, models.PaymentSourceBackend).
		SetGatewayRefs("razorpay", "order_a1", "")
	require.NoError(t, repo.Log(audit))

	assert.NotEqual(t, uuid.Nil, audit.ID)
	assert.False(t, audit.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentAuditRepository_GetByBookingID(t *testing.T) {
	repo, mock, cleanup := setupAuditRepoTest(t)
	defer cleanup()

	bookingID := uuid.New()
	now := time.Now()
	rows := auditRows().
		AddRow(uuid.New(), bookingID, "order_a1", "order_created", "backend", int64(150000), int64(150000), true, now).
		AddRow(uuid.New(), bookingID, "order_a1", "booking_confirmed", "client", nil, nil, nil, now.Add(time.Minute))

	mock.ExpectQuery("SELECT (.+) FROM payment_audits").
		WithArgs(bookingID).
		WillReturnRows(rows)

	audits, err := repo.GetByBookingID(bookingID)
	require.NoError(t, err)
	require.Len(t, audits, 2)
	assert.Equal(t, models.PaymentEventOrderCreated, audits[0].EventType)
	assert.Equal(t, models.PaymentEventBookingConfirmed, audits[1].EventType)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentAuditRepository_GetAmountMismatches(t *testing.T) {
	repo, mock, cleanup := setupAuditRepoTest(t)
	defer cleanup()

	rows := auditRows().
		AddRow(uuid.New(), uuid.New(), "cs_m_1", "webhook_received", "stripe_webhook", int64(150000), int64(99999), false, time.Now())

	mock.ExpectQuery("SELECT (.+) FROM payment_audits").
		WithArgs(50).
		WillReturnRows(rows)

	audits, err := repo.GetAmountMismatches(50)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	require.NotNil(t, audits[0].AmountsMatch)
	assert.False(t, *audits[0].AmountsMatch)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentAuditRepository_GetByOrderID(t *testing.T) {
	repo, mock, cleanup := setupAuditRepoTest(t)
	defer cleanup()

	rows := auditRows().
		AddRow(uuid.New(), nil, "order_a2", "signature_mismatch", "client", nil, nil, nil, time.Now())

	mock.ExpectQuery("SELECT (.+) FROM payment_audits").
		WithArgs("order_a2").
		WillReturnRows(rows)

	audits, err := repo.GetByOrderID("order_a2")
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, models.PaymentEventSignatureMismatch, audits[0].EventType)

	assert.NoError(t, mock.ExpectationsWereMet())
}

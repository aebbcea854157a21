package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/voyago/booking-backend/internal/models"
)

// The stores the services depend on are narrow interfaces rather than the
// concrete repositories, so tests can substitute fakes without a database.

// BookingStore persists bookings across the vertical tables
type BookingStore interface {
	Insert(booking *models.Booking) error
	GetByID(vertical models.Vertical, id uuid.UUID) (*models.Booking, error)
	GetByOrderID(vertical models.Vertical, orderID string) (*models.Booking, error)
	ConfirmByOrderID(vertical models.Vertical, orderID, paymentID string) (uuid.UUID, error)
	CancelConfirmed(vertical models.Vertical, id, userID uuid.UUID) (bool, error)
	ListByUser(vertical models.Vertical, userID uuid.UUID, limit, offset int) ([]*models.Booking, error)
	ExpirePending(vertical models.Vertical, olderThan time.Time) (int64, error)
}

// InventoryStore resolves the priced item a booking references
type InventoryStore interface {
	GetItem(vertical models.Vertical, id uuid.UUID) (*models.InventoryItem, error)
}

// UserStore reads the profile slice used in notifications and receipts
type UserStore interface {
	GetByID(id uuid.UUID) (*models.User, error)
}

// AuditLogger records payment audit events
type AuditLogger interface {
	Log(audit *models.PaymentAudit) error
}

// AuditReader reads recorded payment events back for support and
// reconciliation surfaces
type AuditReader interface {
	GetByOrderID(orderID string) ([]*models.PaymentAudit, error)
	GetByBookingID(bookingID uuid.UUID) ([]*models.PaymentAudit, error)
	GetAmountMismatches(limit int) ([]*models.PaymentAudit, error)
}

// ReceiptGenerator renders the receipt document for a booking
type ReceiptGenerator interface {
	Generate(booking *models.Booking) ([]byte, string, error)
}

// Notifier fires post-transition side effects. Implementations must never
// block the caller; failures are theirs to retry and log.
type Notifier interface {
	BookingConfirmed(booking *models.Booking)
	BookingCancelled(booking *models.Booking)
}

// RequestMeta carries the caller context recorded into audit rows
type RequestMeta struct {
	IP        string
	UserAgent string
	Client    string
}

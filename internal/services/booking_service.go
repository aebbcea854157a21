package services

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/voyago/booking-backend/internal/models"
)

// BookingService covers the read and cancellation paths that sit outside
// the payment flow.
type BookingService struct {
	bookings BookingStore
	audit    AuditLogger
	trail    AuditReader
	notifier Notifier
	logger   *logrus.Logger

	// now is swappable for date-boundary tests
	now func() time.Time
}

// NewBookingService creates a new BookingService
func NewBookingService(bookings BookingStore, audit AuditLogger, trail AuditReader, notifier Notifier, logger *logrus.Logger) *BookingService {
	return &BookingService{
		bookings: bookings,
		audit:    audit,
		trail:    trail,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// PaymentTrail returns the payment events recorded for one of the user's
// bookings, oldest first. Ownership is enforced the same way as GetBooking.
func (s *BookingService) PaymentTrail(userID, bookingID uuid.UUID) ([]*models.PaymentAudit, error) {
	if _, err := s.GetBooking(userID, bookingID); err != nil {
		return nil, err
	}
	return s.trail.GetByBookingID(bookingID)
}

// ListBookings returns a user's bookings, newest first. With an empty
// vertical it merges all four verticals.
func (s *BookingService) ListBookings(userID uuid.UUID, vertical models.Vertical, limit, offset int) ([]*models.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	if vertical != "" {
		return s.bookings.ListByUser(vertical, userID, limit, offset)
	}

	merged := make([]*models.Booking, 0)
	for _, v := range models.AllVerticals() {
		bookings, err := s.bookings.ListByUser(v, userID, limit, offset)
		if err != nil {
			return nil, err
		}
		merged = append(merged, bookings...)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// GetBooking returns one booking, scoped to its owner. Booking ids are
// uuids, unique across all vertical tables, so the id alone identifies the
// booking; the tables are probed in order.
func (s *BookingService) GetBooking(userID, id uuid.UUID) (*models.Booking, error) {
	for _, vertical := range models.AllVerticals() {
		booking, err := s.bookings.GetByID(vertical, id)
		if err != nil {
			return nil, &models.PersistenceError{Op: "load booking", Err: err}
		}
		if booking != nil {
			if booking.UserID != userID {
				return nil, models.ErrBookingNotFound
			}
			return booking, nil
		}
	}
	return nil, models.ErrBookingNotFound
}

// CancelBooking cancels a confirmed booking. The date rule is enforced here
// on server time, never trusted from the client:
//
//	today after check-in/travel date  -> refused
//	today equals the date             -> allowed, late fee applies
//	today before the date             -> allowed, full refund
func (s *BookingService) CancelBooking(userID, id uuid.UUID, meta RequestMeta) (*models.CancelBookingResponse, error) {
	booking, err := s.GetBooking(userID, id)
	if err != nil {
		return nil, err
	}
	vertical := booking.Vertical
	if !booking.IsConfirmed() {
		return nil, models.ErrNotCancellable
	}

	deadline := booking.CancellationDate()
	if deadline == nil {
		return nil, models.ErrNotCancellable
	}

	today := truncateToDate(s.now())
	target := truncateToDate(*deadline)

	if today.After(target) {
		return nil, models.ErrCancellationClosed
	}
	feeLiable := today.Equal(target)

	updated, err := s.bookings.CancelConfirmed(vertical, id, userID)
	if err != nil {
		return nil, &models.PersistenceError{Op: "cancel booking", Err: err}
	}
	if !updated {
		// Lost a race with another cancel or a concurrent transition
		return nil, models.ErrNotCancellable
	}

	cancelled := models.NewPaymentAudit(models.PaymentEventBookingCancelled, models.PaymentSourceClient).
		SetBooking(id, vertical).
		SetGatewayRefs(booking.PaymentGateway, booking.GatewayOrderID, "").
		SetMetadata(meta.IP, meta.UserAgent, meta.Client)
	if err := s.audit.Log(cancelled); err != nil {
		s.logger.WithError(err).Error("Failed to record cancellation audit")
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": id,
		"vertical":   vertical,
		"fee_liable": feeLiable,
	}).Info("Booking cancelled")

	booking.Status = models.BookingStatusCancelled
	s.notifier.BookingCancelled(booking)

	message := "booking cancelled, refund initiated"
	if feeLiable {
		message = "booking cancelled on the travel date, late cancellation fee applies"
	}
	return &models.CancelBookingResponse{
		BookingID: id,
		Status:    string(models.BookingStatusCancelled),
		FeeLiable: feeLiable,
		Message:   message,
	}, nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

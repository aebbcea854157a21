package services

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/voyago/booking-backend/internal/models"
	"github.com/voyago/booking-backend/internal/outbox"
	"github.com/voyago/booking-backend/pkg/sms"
)

// NotifierService fans booking transitions out into SMS and receipt tasks
// via the outbox. Everything here is fire-and-forget: the payment flow has
// already committed by the time a task is queued.
type NotifierService struct {
	queue    *outbox.Outbox
	gateway  sms.Gateway
	receipts ReceiptGenerator
	logger   *logrus.Logger
}

// NewNotifierService creates a new NotifierService
func NewNotifierService(queue *outbox.Outbox, gateway sms.Gateway, receipts ReceiptGenerator, logger *logrus.Logger) *NotifierService {
	return &NotifierService{
		queue:    queue,
		gateway:  gateway,
		receipts: receipts,
		logger:   logger,
	}
}

// BookingConfirmed queues the confirmation SMS and the receipt render
func (s *NotifierService) BookingConfirmed(booking *models.Booking) {
	phone := booking.ContactPhone
	message := confirmationMessage(booking)
	s.queue.Enqueue(outbox.Task{
		Kind: "booking_confirmed_sms",
		Ref:  booking.ID.String(),
		Run: func() error {
			return s.gateway.Send(phone, message)
		},
	})
	s.queue.Enqueue(outbox.Task{
		Kind: "booking_confirmed_receipt",
		Ref:  booking.ID.String(),
		Run: func() error {
			pdf, filename, err := s.receipts.Generate(booking)
			if err != nil {
				return err
			}
			s.logger.WithFields(logrus.Fields{
				"booking_id": booking.ID,
				"filename":   filename,
				"bytes":      len(pdf),
			}).Info("Receipt generated")
			return nil
		},
	})
}

// BookingCancelled queues the cancellation SMS
func (s *NotifierService) BookingCancelled(booking *models.Booking) {
	phone := booking.ContactPhone
	message := fmt.Sprintf(
		"Your %s booking for %s has been cancelled. Refund will be processed to the original payment method.",
		booking.Vertical, booking.ItemName,
	)
	s.queue.Enqueue(outbox.Task{
		Kind: "booking_cancelled_sms",
		Ref:  booking.ID.String(),
		Run: func() error {
			return s.gateway.Send(phone, message)
		},
	})
}

// SendBookingSMS sends the confirmation message for a booking immediately,
// to the given phone when present, else the booking's contact phone. Used
// by the resend endpoint.
func (s *NotifierService) SendBookingSMS(booking *models.Booking, phone string) error {
	if phone == "" {
		phone = booking.ContactPhone
	}
	return s.gateway.Send(phone, confirmationMessage(booking))
}

func confirmationMessage(booking *models.Booking) string {
	ref := booking.GatewayOrderID
	if len(ref) > 12 {
		ref = ref[:12]
	}
	switch booking.Vertical {
	case models.VerticalHotel:
		checkIn := ""
		if booking.CheckIn != nil {
			checkIn = booking.CheckIn.Format("02 Jan 2006")
		}
		return fmt.Sprintf("Booking confirmed! %s from %s. Ref %s. Show this SMS at check-in.",
			booking.ItemName, checkIn, ref)
	default:
		travel := ""
		if booking.TravelDate != nil {
			travel = booking.TravelDate.Format("02 Jan 2006")
		}
		return fmt.Sprintf("Booking confirmed! %s on %s for %d traveller(s). Ref %s.",
			booking.ItemName, travel, len(booking.Guests), ref)
	}
}

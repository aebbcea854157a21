package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/voyago/booking-backend/internal/gateway"
	"github.com/voyago/booking-backend/internal/models"
)

// OrchestratorConfig holds configuration for the orchestrator
type OrchestratorConfig struct {
	DefaultCurrency string
	// PendingTTL is how long an unpaid booking may sit before the sweep
	// cancels it
	PendingTTL time.Duration
}

// DefaultOrchestratorConfig returns default configuration
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		DefaultCurrency: "INR",
		PendingTTL:      24 * time.Hour,
	}
}

// BookingOrchestratorService drives the pending -> paid -> confirmed flow:
// it opens the gateway order, persists the pending booking, verifies the
// completion proof, applies the atomic confirm transition, and hands the
// confirmed booking to the notifier.
type BookingOrchestratorService struct {
	bookings  BookingStore
	inventory InventoryStore
	audit     AuditLogger
	notifier  Notifier
	gateways  map[string]gateway.PaymentGateway
	config    OrchestratorConfig
	logger    *logrus.Logger
}

// NewBookingOrchestratorService creates a new orchestrator service
func NewBookingOrchestratorService(
	bookings BookingStore,
	inventory InventoryStore,
	audit AuditLogger,
	notifier Notifier,
	gateways []gateway.PaymentGateway,
	config OrchestratorConfig,
	logger *logrus.Logger,
) *BookingOrchestratorService {
	byName := make(map[string]gateway.PaymentGateway, len(gateways))
	for _, g := range gateways {
		byName[g.Name()] = g
	}
	return &BookingOrchestratorService{
		bookings:  bookings,
		inventory: inventory,
		audit:     audit,
		notifier:  notifier,
		gateways:  byName,
		config:    config,
		logger:    logger,
	}
}

// ============================================================================
// CREATE ORDER (Phase 1)
// ============================================================================

// CreateOrder opens a payment order and persists the pending booking. The
// response is only built after the booking row is safely stored: a gateway
// order with no matching row would strand the payment.
func (s *BookingOrchestratorService) CreateOrder(
	ctx context.Context,
	userID uuid.UUID,
	vertical models.Vertical,
	gatewayName string,
	req *models.CreateOrderRequest,
	meta RequestMeta,
) (*models.CreateOrderResponse, error) {
	// 1. Validate request shape for this vertical
	if err := req.Validate(vertical); err != nil {
		return nil, err
	}

	gw, ok := s.gateways[gatewayName]
	if !ok {
		return nil, fmt.Errorf("unsupported payment gateway: %s", gatewayName)
	}

	// 2. Resolve the priced inventory item
	itemID, _ := uuid.Parse(req.ItemID)
	item, err := s.inventory.GetItem(vertical, itemID)
	if err != nil {
		return nil, &models.PersistenceError{Op: "load inventory item", Err: err}
	}
	if item == nil {
		return nil, models.ErrNotFound
	}

	// 3. Price server-side and refuse stale client totals. The client's
	// number is a display value; the inventory row is the authority.
	checkIn, checkOut, travelDate := req.Dates(vertical)
	expected := s.priceBooking(vertical, item, checkIn, checkOut, len(req.Guests))
	if req.TotalAmount != expected {
		return nil, fmt.Errorf("total_amount does not match current pricing: sent %d, expected %d", req.TotalAmount, expected)
	}

	currency := item.Currency
	if currency == "" {
		currency = s.config.DefaultCurrency
	}

	bookingID := uuid.New()

	// 4. Open the gateway order
	order, err := gw.CreateOrder(ctx, gateway.OrderParams{
		Amount:    expected,
		Currency:  currency,
		BookingID: bookingID,
		Vertical:  string(vertical),
		ItemName:  item.Name,
		Receipt:   fmt.Sprintf("bk_%d", time.Now().UnixNano()),
	})
	if err != nil {
		failure := models.NewPaymentAudit(models.PaymentEventOrderFailed, models.PaymentSourceBackend).
			SetGatewayRefs(gw.Name(), "", "").
			SetError(err.Error()).
			SetMetadata(meta.IP, meta.UserAgent, meta.Client)
		failure.SetBooking(bookingID, vertical)
		s.logAudit(failure)
		return nil, err
	}

	// 5. Persist the pending booking under the same id the gateway
	// order references, so gateway-side metadata stays reconcilable.
	booking := &models.Booking{
		ID:             bookingID,
		UserID:         userID,
		Vertical:       vertical,
		ItemID:         itemID,
		ItemName:       item.Name,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		TravelDate:     travelDate,
		Guests:         models.GuestList(req.Guests),
		TotalAmount:    expected,
		Currency:       currency,
		ContactPhone:   req.ContactPhone,
		ContactEmail:   req.ContactEmail,
		PaymentGateway: gw.Name(),
		GatewayOrderID: order.ID,
	}
	if err := s.bookings.Insert(booking); err != nil {
		// The order exists gateway-side but nothing references it; the
		// client gets an error and no payment can be matched to it.
		failure := models.NewPaymentAudit(models.PaymentEventOrderFailed, models.PaymentSourceBackend).
			SetGatewayRefs(gw.Name(), order.ID, "").
			SetError(err.Error()).
			SetMetadata(meta.IP, meta.UserAgent, meta.Client)
		s.logAudit(failure)
		return nil, &models.PersistenceError{Op: "insert booking", Err: err}
	}

	created := models.NewPaymentAudit(models.PaymentEventOrderCreated, models.PaymentSourceBackend).
		SetBooking(booking.ID, vertical).
		SetGatewayRefs(gw.Name(), order.ID, "").
		SetMetadata(meta.IP, meta.UserAgent, meta.Client)
	created.SetAmounts(expected, expected)
	s.logAudit(created)

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"vertical":   vertical,
		"order_id":   order.ID,
		"amount":     expected,
		"gateway":    gw.Name(),
	}).Info("Booking order created")

	return &models.CreateOrderResponse{
		BookingID:   booking.ID,
		OrderID:     order.ID,
		Amount:      expected,
		Currency:    currency,
		KeyID:       order.KeyID,
		CheckoutURL: order.CheckoutURL,
		Gateway:     gw.Name(),
	}, nil
}

// priceBooking computes the authoritative total in minor units
func (s *BookingOrchestratorService) priceBooking(
	vertical models.Vertical,
	item *models.InventoryItem,
	checkIn, checkOut *time.Time,
	guestCount int,
) int64 {
	switch vertical {
	case models.VerticalHotel:
		nights := int64(checkOut.Sub(*checkIn).Hours() / 24)
		if nights < 1 {
			nights = 1
		}
		return item.Price * nights
	default:
		seats := int64(guestCount)
		if seats < 1 {
			seats = 1
		}
		return item.Price * seats
	}
}

// ============================================================================
// VERIFY PAYMENT (Phase 2, pull-style callback)
// ============================================================================

// VerifyPayment checks the signed triplet the checkout widget handed back
// and, on success, applies the confirm transition. Duplicate calls for the
// same order re-apply the same values and return success again.
func (s *BookingOrchestratorService) VerifyPayment(
	vertical models.Vertical,
	gatewayName string,
	req *models.VerifyPaymentRequest,
	meta RequestMeta,
) (*models.VerifyPaymentResponse, error) {
	gw, ok := s.gateways[gatewayName]
	if !ok {
		return nil, fmt.Errorf("unsupported payment gateway: %s", gatewayName)
	}

	completion := gateway.Completion{
		OrderID:   req.RazorpayOrderID,
		PaymentID: req.RazorpayPaymentID,
		Signature: req.RazorpaySignature,
	}

	// 1. Signature first. Nothing is read or written before the proof
	// checks out.
	if !gw.VerifyCompletion(completion) {
		mismatch := models.NewPaymentAudit(models.PaymentEventSignatureMismatch, models.PaymentSourceClient).
			SetGatewayRefs(gw.Name(), req.RazorpayOrderID, req.RazorpayPaymentID).
			SetError("signature verification failed").
			SetMetadata(meta.IP, meta.UserAgent, meta.Client)
		s.logAudit(mismatch)

		s.logger.WithFields(logrus.Fields{
			"order_id": req.RazorpayOrderID,
			"ip":       meta.IP,
		}).Warn("Payment signature mismatch")

		return nil, models.ErrSignatureMismatch
	}

	verified := models.NewPaymentAudit(models.PaymentEventVerified, models.PaymentSourceClient).
		SetGatewayRefs(gw.Name(), req.RazorpayOrderID, req.RazorpayPaymentID).
		SetMetadata(meta.IP, meta.UserAgent, meta.Client)
	s.logAudit(verified)

	// 2. Atomic confirm, matched on the order id alone
	bookingID, err := s.confirmBooking(vertical, gw.Name(), req.RazorpayOrderID, req.RazorpayPaymentID, models.PaymentSourceClient, meta)
	if err != nil {
		return nil, err
	}

	return &models.VerifyPaymentResponse{
		Success:   true,
		BookingID: bookingID,
	}, nil
}

// ============================================================================
// WEBHOOK CONFIRM (Phase 2, push-style)
// ============================================================================

// ConfirmFromWebhook applies a gateway-signed completion delivered over a
// webhook. The signature was already validated when the payload was parsed;
// this records the delivery, cross-checks amounts, and confirms.
func (s *BookingOrchestratorService) ConfirmFromWebhook(
	gatewayName string,
	result *gateway.WebhookResult,
	meta RequestMeta,
) (uuid.UUID, error) {
	vertical := models.Vertical(result.Vertical)
	if !vertical.Valid() {
		return uuid.Nil, fmt.Errorf("webhook session missing vertical metadata")
	}

	received := models.NewPaymentAudit(models.PaymentEventWebhookReceived, models.PaymentSourceStripeWebhook).
		SetGatewayRefs(gatewayName, result.OrderID, result.PaymentID).
		SetMetadata(meta.IP, meta.UserAgent, meta.Client)

	// Cross-check what the gateway charged against what we stored. A
	// mismatch is recorded loudly but does not block the confirm: the
	// money has already moved, and the audit trail is how it gets chased.
	booking, err := s.bookings.GetByOrderID(vertical, result.OrderID)
	if err == nil && booking != nil {
		received.SetBooking(booking.ID, vertical)
		if !received.SetAmounts(booking.TotalAmount, result.Amount) {
			s.logger.WithFields(logrus.Fields{
				"order_id": result.OrderID,
				"expected": booking.TotalAmount,
				"received": result.Amount,
			}).Error("Webhook amount does not match stored booking amount")
		}
	}
	s.logAudit(received)

	return s.confirmBooking(vertical, gatewayName, result.OrderID, result.PaymentID, models.PaymentSourceStripeWebhook, meta)
}

// confirmBooking runs the single-statement transition and the follow-on
// audit and notification work shared by both completion paths.
func (s *BookingOrchestratorService) confirmBooking(
	vertical models.Vertical,
	gatewayName, orderID, paymentID string,
	source models.PaymentEventSource,
	meta RequestMeta,
) (uuid.UUID, error) {
	bookingID, err := s.bookings.ConfirmByOrderID(vertical, orderID, paymentID)
	if err != nil {
		if errors.Is(err, models.ErrBookingNotFound) {
			s.logger.WithFields(logrus.Fields{
				"order_id": orderID,
				"vertical": vertical,
			}).Warn("Payment completion for unknown order")
			return uuid.Nil, models.ErrBookingNotFound
		}
		if errors.Is(err, models.ErrBookingCancelled) {
			// Money moved for a booking that no longer exists in a
			// confirmable state. Audited for ops to reconcile a refund.
			s.logger.WithFields(logrus.Fields{
				"order_id":   orderID,
				"payment_id": paymentID,
				"vertical":   vertical,
			}).Error("Payment completed for cancelled booking")
			rejected := models.NewPaymentAudit(models.PaymentEventWebhookRejected, source).
				SetGatewayRefs(gatewayName, orderID, paymentID).
				SetMetadata(meta.IP, meta.UserAgent, meta.Client)
			rejected.SetError("payment completed after booking was cancelled")
			s.logAudit(rejected)
			return uuid.Nil, models.ErrBookingCancelled
		}
		return uuid.Nil, &models.PersistenceError{Op: "confirm booking", Err: err}
	}

	confirmed := models.NewPaymentAudit(models.PaymentEventBookingConfirmed, source).
		SetBooking(bookingID, vertical).
		SetGatewayRefs(gatewayName, orderID, paymentID).
		SetMetadata(meta.IP, meta.UserAgent, meta.Client)
	s.logAudit(confirmed)

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"vertical":   vertical,
		"order_id":   orderID,
		"payment_id": paymentID,
	}).Info("Booking confirmed")

	// Side effects run off the request path; a notification failure can
	// never unwind a confirmed payment.
	if booking, err := s.bookings.GetByID(vertical, bookingID); err == nil && booking != nil {
		s.notifier.BookingConfirmed(booking)
	}

	return bookingID, nil
}

// logAudit records an audit event; failures are logged by the repository
// and deliberately not propagated, the booking transition outranks the
// audit row.
func (s *BookingOrchestratorService) logAudit(audit *models.PaymentAudit) {
	if err := s.audit.Log(audit); err != nil {
		s.logger.WithError(err).WithField("event_type", audit.EventType).Error("Failed to record payment audit")
	}
}

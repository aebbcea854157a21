package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/voyago/booking-backend/internal/gateway"
	"github.com/voyago/booking-backend/internal/models"
)

// fakeBookingStore is an in-memory BookingStore keyed by gateway order id
type fakeBookingStore struct {
	mu       sync.Mutex
	byOrder  map[string]*models.Booking
	insert   error
	confirms int
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{byOrder: make(map[string]*models.Booking)}
}

func (s *fakeBookingStore) Insert(booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insert != nil {
		return s.insert
	}
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.Status = models.BookingStatusPending
	booking.PaymentStatus = models.PaymentStatusPending
	booking.CreatedAt = time.Now()
	s.byOrder[booking.GatewayOrderID] = booking
	return nil
}

func (s *fakeBookingStore) GetByID(vertical models.Vertical, id uuid.UUID) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.byOrder {
		if b.ID == id && b.Vertical == vertical {
			return b, nil
		}
	}
	return nil, nil
}

func (s *fakeBookingStore) GetByOrderID(vertical models.Vertical, orderID string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byOrder[orderID]
	if !ok || b.Vertical != vertical {
		return nil, nil
	}
	return b, nil
}

func (s *fakeBookingStore) ConfirmByOrderID(vertical models.Vertical, orderID, paymentID string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirms++
	b, ok := s.byOrder[orderID]
	if !ok || b.Vertical != vertical {
		return uuid.Nil, models.ErrBookingNotFound
	}
	if b.Status == models.BookingStatusCancelled {
		return uuid.Nil, models.ErrBookingCancelled
	}
	b.Status = models.BookingStatusConfirmed
	b.PaymentStatus = models.PaymentStatusPaid
	b.GatewayPaymentID = &paymentID
	return b.ID, nil
}

func (s *fakeBookingStore) CancelConfirmed(vertical models.Vertical, id, userID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.byOrder {
		if b.ID == id && b.Vertical == vertical && b.UserID == userID && b.Status == models.BookingStatusConfirmed {
			b.Status = models.BookingStatusCancelled
			b.PaymentStatus = models.PaymentStatusRefunded
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeBookingStore) ListByUser(vertical models.Vertical, userID uuid.UUID, limit, offset int) ([]*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Booking, 0)
	for _, b := range s.byOrder {
		if b.Vertical == vertical && b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeBookingStore) ExpirePending(vertical models.Vertical, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, b := range s.byOrder {
		if b.Vertical == vertical && b.Status == models.BookingStatusPending &&
			b.PaymentStatus == models.PaymentStatusPending && b.CreatedAt.Before(olderThan) {
			b.Status = models.BookingStatusCancelled
			n++
		}
	}
	return n, nil
}

// fakeInventory serves a fixed set of items
type fakeInventory struct {
	items map[uuid.UUID]*models.InventoryItem
}

func (s *fakeInventory) GetItem(vertical models.Vertical, id uuid.UUID) (*models.InventoryItem, error) {
	return s.items[id], nil
}

// fakeAudit records every audit event it receives
type fakeAudit struct {
	mu     sync.Mutex
	events []*models.PaymentAudit
}

func (a *fakeAudit) Log(audit *models.PaymentAudit) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, audit)
	return nil
}

func (a *fakeAudit) GetByOrderID(orderID string) ([]*models.PaymentAudit, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []*models.PaymentAudit
	for _, e := range a.events {
		if e.OrderID != nil && *e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (a *fakeAudit) GetByBookingID(bookingID uuid.UUID) ([]*models.PaymentAudit, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []*models.PaymentAudit
	for _, e := range a.events {
		if e.BookingID != nil && *e.BookingID == bookingID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (a *fakeAudit) GetAmountMismatches(limit int) ([]*models.PaymentAudit, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []*models.PaymentAudit
	for _, e := range a.events {
		if e.AmountsMatch != nil && !*e.AmountsMatch && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (a *fakeAudit) eventTypes() []models.PaymentEventType {
	a.mu.Lock()
	defer a.mu.Unlock()
	types := make([]models.PaymentEventType, 0, len(a.events))
	for _, e := range a.events {
		types = append(types, e.EventType)
	}
	return types
}

func (a *fakeAudit) lastOfType(eventType models.PaymentEventType) *models.PaymentAudit {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := len(a.events) - 1; i >= 0; i-- {
		if a.events[i].EventType == eventType {
			return a.events[i]
		}
	}
	return nil
}

// fakeNotifier records which bookings were notified
type fakeNotifier struct {
	mu        sync.Mutex
	confirmed []uuid.UUID
	cancelled []uuid.UUID
}

func (n *fakeNotifier) BookingConfirmed(booking *models.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, booking.ID)
}

func (n *fakeNotifier) BookingCancelled(booking *models.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, booking.ID)
}

// fakeGateway is a controllable PaymentGateway
type fakeGateway struct {
	name         string
	orderID      string
	createErr    error
	createCalls  int
	lastParams   gateway.OrderParams
	validTriplet map[string]string // orderID|paymentID -> signature
}

func newFakeGateway(name, orderID string) *fakeGateway {
	return &fakeGateway{
		name:         name,
		orderID:      orderID,
		validTriplet: make(map[string]string),
	}
}

func (g *fakeGateway) Name() string { return g.name }

func (g *fakeGateway) CreateOrder(ctx context.Context, params gateway.OrderParams) (*gateway.Order, error) {
	g.createCalls++
	g.lastParams = params
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &gateway.Order{ID: g.orderID, KeyID: "key_test"}, nil
}

func (g *fakeGateway) accept(orderID, paymentID, signature string) {
	g.validTriplet[orderID+"|"+paymentID] = signature
}

func (g *fakeGateway) VerifyCompletion(completion gateway.Completion) bool {
	sig, ok := g.validTriplet[completion.OrderID+"|"+completion.PaymentID]
	return ok && sig == completion.Signature
}

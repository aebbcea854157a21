package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voyago/booking-backend/internal/gateway"
	"github.com/voyago/booking-backend/internal/middleware"
	"github.com/voyago/booking-backend/internal/models"
	"github.com/voyago/booking-backend/internal/services"
	"github.com/voyago/booking-backend/pkg/jwt"
)

// In-memory implementations of the service ports, enough to drive the
// handlers through real orchestrator logic without a database.

type memBookingStore struct {
	mu      sync.Mutex
	byOrder map[string]*models.Booking
}

func newMemBookingStore() *memBookingStore {
	return &memBookingStore{byOrder: make(map[string]*models.Booking)}
}

func (s *memBookingStore) Insert(b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.Status = models.BookingStatusPending
	b.PaymentStatus = models.PaymentStatusPending
	b.CreatedAt = time.Now()
	s.byOrder[b.GatewayOrderID] = b
	return nil
}

func (s *memBookingStore) GetByID(v models.Vertical, id uuid.UUID) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.byOrder {
		if b.ID == id && b.Vertical == v {
			return b, nil
		}
	}
	return nil, nil
}

func (s *memBookingStore) GetByOrderID(v models.Vertical, orderID string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byOrder[orderID]
	if !ok || b.Vertical != v {
		return nil, nil
	}
	return b, nil
}

func (s *memBookingStore) ConfirmByOrderID(v models.Vertical, orderID, paymentID string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byOrder[orderID]
	if !ok || b.Vertical != v {
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

func (s *memBookingStore) CancelConfirmed(v models.Vertical, id, userID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.byOrder {
		if b.ID == id && b.UserID == userID && b.Status == models.BookingStatusConfirmed {
			b.Status = models.BookingStatusCancelled
			b.PaymentStatus = models.PaymentStatusRefunded
			return true, nil
		}
	}
	return false, nil
}

func (s *memBookingStore) ListByUser(v models.Vertical, userID uuid.UUID, limit, offset int) ([]*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Booking, 0)
	for _, b := range s.byOrder {
		if b.Vertical == v && b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memBookingStore) ExpirePending(v models.Vertical, olderThan time.Time) (int64, error) {
	return 0, nil
}

type memInventory struct {
	items map[uuid.UUID]*models.InventoryItem
}

func (s *memInventory) GetItem(v models.Vertical, id uuid.UUID) (*models.InventoryItem, error) {
	return s.items[id], nil
}

type memAudit struct{}

func (memAudit) Log(*models.PaymentAudit) error { return nil }

type memNotifier struct{}

func (memNotifier) BookingConfirmed(*models.Booking) {}
func (memNotifier) BookingCancelled(*models.Booking) {}

type stubGateway struct {
	orderID   string
	signature string
}

func (g *stubGateway) Name() string { return "razorpay" }

func (g *stubGateway) CreateOrder(ctx context.Context, params gateway.OrderParams) (*gateway.Order, error) {
	return &gateway.Order{ID: g.orderID, KeyID: "key_test"}, nil
}

func (g *stubGateway) VerifyCompletion(c gateway.Completion) bool {
	return c.Signature == g.signature
}

type paymentTestEnv struct {
	router *gin.Engine
	store  *memBookingStore
	jwt    *jwt.Service
	itemID uuid.UUID
}

func setupPaymentTest(t *testing.T) *paymentTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	itemID := uuid.New()
	store := newMemBookingStore()
	orchestrator := services.NewBookingOrchestratorService(
		store,
		&memInventory{items: map[uuid.UUID]*models.InventoryItem{
			itemID: {ID: itemID, Name: "Sea Breeze Resort", Price: 50000, Currency: "INR"},
		}},
		memAudit{},
		memNotifier{},
		[]gateway.PaymentGateway{&stubGateway{orderID: "order_h1", signature: "sig_valid"}},
		services.DefaultOrchestratorConfig(),
		logger,
	)

	jwtService := jwt.NewService("handler-test-secret", time.Hour)
	handler := NewPaymentHandler(orchestrator, logger)

	router := gin.New()
	payments := router.Group("/api/v1/payments")
	{
		orders := payments.Group("")
		orders.Use(middleware.AuthMiddleware(jwtService, logger))
		{
			orders.POST("/create-order", handler.CreateHotelOrder)
		}
		payments.POST("/verify", handler.VerifyHotelPayment)
	}

	return &paymentTestEnv{router: router, store: store, jwt: jwtService, itemID: itemID}
}

func (env *paymentTestEnv) createOrder(t *testing.T) *models.CreateOrderResponse {
	t.Helper()
	token, err := env.jwt.GenerateAccessToken(uuid.New(), "+919812345678")
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]interface{}{
		"item_id":       env.itemID.String(),
		"check_in":      "2026-10-01",
		"check_out":     "2026-10-04",
		"total_amount":  150000,
		"contact_phone": "+919812345678",
	})
	req := httptest.NewRequest("POST", "/api/v1/payments/create-order", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.CreateOrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return &resp
}

func TestCreateOrderEndpoint(t *testing.T) {
	env := setupPaymentTest(t)

	resp := env.createOrder(t)
	assert.Equal(t, "order_h1", resp.OrderID)
	assert.Equal(t, int64(150000), resp.Amount)
	assert.Equal(t, "key_test", resp.KeyID)
	assert.NotEqual(t, uuid.Nil, resp.BookingID)
}

func TestCreateOrderEndpoint_Unauthenticated(t *testing.T) {
	env := setupPaymentTest(t)

	req := httptest.NewRequest("POST", "/api/v1/payments/create-order", bytes.NewReader([]byte("{}")))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateOrderEndpoint_UnknownItem(t *testing.T) {
	env := setupPaymentTest(t)

	token, _ := env.jwt.GenerateAccessToken(uuid.New(), "+919812345678")
	body, _ := json.Marshal(map[string]interface{}{
		"item_id":       uuid.New().String(),
		"check_in":      "2026-10-01",
		"check_out":     "2026-10-04",
		"total_amount":  150000,
		"contact_phone": "+919812345678",
	})
	req := httptest.NewRequest("POST", "/api/v1/payments/create-order", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerifyEndpoint_Success(t *testing.T) {
	env := setupPaymentTest(t)
	order := env.createOrder(t)

	body, _ := json.Marshal(models.VerifyPaymentRequest{
		RazorpayOrderID:   order.OrderID,
		RazorpayPaymentID: "pay_abc",
		RazorpaySignature: "sig_valid",
	})
	req := httptest.NewRequest("POST", "/api/v1/payments/verify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.VerifyPaymentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, order.BookingID, resp.BookingID)

	booking, _ := env.store.GetByOrderID(models.VerticalHotel, order.OrderID)
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
}

func TestVerifyEndpoint_BadSignature(t *testing.T) {
	env := setupPaymentTest(t)
	order := env.createOrder(t)

	body, _ := json.Marshal(models.VerifyPaymentRequest{
		RazorpayOrderID:   order.OrderID,
		RazorpayPaymentID: "pay_abc",
		RazorpaySignature: "sig_forged",
	})
	req := httptest.NewRequest("POST", "/api/v1/payments/verify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.VerifyPaymentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "payment signature verification failed", resp.Error)

	// The booking is untouched
	booking, _ := env.store.GetByOrderID(models.VerticalHotel, order.OrderID)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
}

func TestVerifyEndpoint_MissingFields(t *testing.T) {
	env := setupPaymentTest(t)

	req := httptest.NewRequest("POST", "/api/v1/payments/verify", bytes.NewReader([]byte(`{"razorpay_order_id": "order_1"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyEndpoint_UnknownOrder(t *testing.T) {
	env := setupPaymentTest(t)

	body, _ := json.Marshal(models.VerifyPaymentRequest{
		RazorpayOrderID:   "order_ghost",
		RazorpayPaymentID: "pay_abc",
		RazorpaySignature: "sig_valid",
	})
	req := httptest.NewRequest("POST", "/api/v1/payments/verify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

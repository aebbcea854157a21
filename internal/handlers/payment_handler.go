package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mssola/user_agent"
	"github.com/sirupsen/logrus"
	"github.com/voyago/booking-backend/internal/middleware"
	"github.com/voyago/booking-backend/internal/models"
	"github.com/voyago/booking-backend/internal/services"
)

// PaymentHandler handles order creation and payment verification endpoints
type PaymentHandler struct {
	orchestrator *services.BookingOrchestratorService
	logger       *logrus.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(orchestrator *services.BookingOrchestratorService, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// requestMeta extracts the caller context recorded into audit rows
func requestMeta(c *gin.Context) services.RequestMeta {
	rawUA := c.Request.UserAgent()
	ua := user_agent.New(rawUA)
	browser, version := ua.Browser()
	client := browser
	if version != "" {
		client = browser + "/" + version
	}
	if ua.OS() != "" {
		client = client + " (" + ua.OS() + ")"
	}
	return services.RequestMeta{
		IP:        c.ClientIP(),
		UserAgent: rawUA,
		Client:    client,
	}
}

// ============================================================================
// CREATE ORDER - POST /api/v1/payments/create-order (+ vertical variants)
// ============================================================================

// CreateHotelOrder creates a payment order for a hotel booking
// @Summary Create hotel booking order
// @Tags Payments
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param request body models.CreateOrderRequest true "Booking request"
// @Success 201 {object} models.CreateOrderResponse
// @Router /payments/create-order [post]
func (h *PaymentHandler) CreateHotelOrder(c *gin.Context) {
	h.createOrder(c, models.VerticalHotel)
}

// CreateFlightOrder creates a payment order for a flight booking
func (h *PaymentHandler) CreateFlightOrder(c *gin.Context) {
	h.createOrder(c, models.VerticalFlight)
}

// CreateBusOrder creates a payment order for a bus booking
func (h *PaymentHandler) CreateBusOrder(c *gin.Context) {
	h.createOrder(c, models.VerticalBus)
}

// CreateTrainOrder creates a payment order for a train booking
func (h *PaymentHandler) CreateTrainOrder(c *gin.Context) {
	h.createOrder(c, models.VerticalTrain)
}

func (h *PaymentHandler) createOrder(c *gin.Context, vertical models.Vertical) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	// Pull-style checkout is the default; ?gateway=stripe selects the
	// hosted redirect flow instead.
	gatewayName := c.DefaultQuery("gateway", "razorpay")

	response, err := h.orchestrator.CreateOrder(c.Request.Context(), userCtx.UserID, vertical, gatewayName, &req, requestMeta(c))
	if err != nil {
		h.respondOrderError(c, vertical, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *PaymentHandler) respondOrderError(c *gin.Context, vertical models.Vertical, err error) {
	var gatewayErr *models.GatewayError
	var persistErr *models.PersistenceError

	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found or no longer available"})
	case errors.As(err, &gatewayErr):
		h.logger.WithError(err).WithField("vertical", vertical).Error("Gateway order creation failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway unavailable, please retry"})
	case errors.As(err, &persistErr):
		h.logger.WithError(err).WithField("vertical", vertical).Error("Order persistence failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create booking"})
	default:
		// Validation errors are safe to echo; they describe the request,
		// not the system.
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// ============================================================================
// VERIFY PAYMENT - POST /api/v1/payments/verify (+ vertical variants)
// ============================================================================

// VerifyHotelPayment verifies a hotel booking payment
// @Summary Verify payment signature and confirm booking
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body models.VerifyPaymentRequest true "Signed payment triplet"
// @Success 200 {object} models.VerifyPaymentResponse
// @Router /payments/verify [post]
func (h *PaymentHandler) VerifyHotelPayment(c *gin.Context) {
	h.verifyPayment(c, models.VerticalHotel)
}

// VerifyFlightPayment verifies a flight booking payment
func (h *PaymentHandler) VerifyFlightPayment(c *gin.Context) {
	h.verifyPayment(c, models.VerticalFlight)
}

// VerifyBusPayment verifies a bus booking payment
func (h *PaymentHandler) VerifyBusPayment(c *gin.Context) {
	h.verifyPayment(c, models.VerticalBus)
}

// VerifyTrainPayment verifies a train booking payment
func (h *PaymentHandler) VerifyTrainPayment(c *gin.Context) {
	h.verifyPayment(c, models.VerticalTrain)
}

func (h *PaymentHandler) verifyPayment(c *gin.Context, vertical models.Vertical) {
	var req models.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.VerifyPaymentResponse{
			Success: false,
			Error:   "invalid request: " + err.Error(),
		})
		return
	}

	response, err := h.orchestrator.VerifyPayment(vertical, "razorpay", &req, requestMeta(c))
	if err != nil {
		h.respondVerifyError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *PaymentHandler) respondVerifyError(c *gin.Context, err error) {
	var persistErr *models.PersistenceError

	switch {
	case errors.Is(err, models.ErrSignatureMismatch):
		c.JSON(http.StatusBadRequest, models.VerifyPaymentResponse{
			Success: false,
			Error:   "payment signature verification failed",
		})
	case errors.Is(err, models.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, models.VerifyPaymentResponse{
			Success: false,
			Error:   "no booking found for this order",
		})
	case errors.Is(err, models.ErrBookingCancelled):
		c.JSON(http.StatusConflict, models.VerifyPaymentResponse{
			Success: false,
			Error:   "booking was cancelled before payment completed, contact support for a refund",
		})
	case errors.As(err, &persistErr):
		h.logger.WithError(err).Error("Payment confirm failed")
		c.JSON(http.StatusInternalServerError, models.VerifyPaymentResponse{
			Success: false,
			Error:   "failed to confirm booking",
		})
	default:
		c.JSON(http.StatusBadRequest, models.VerifyPaymentResponse{
			Success: false,
			Error:   err.Error(),
		})
	}
}

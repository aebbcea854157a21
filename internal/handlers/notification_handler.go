package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/voyago/booking-backend/internal/middleware"
	"github.com/voyago/booking-backend/internal/models"
	"github.com/voyago/booking-backend/internal/services"
)

// NotificationHandler handles SMS resend and receipt endpoints
type NotificationHandler struct {
	bookingService *services.BookingService
	notifier       *services.NotifierService
	receipts       *services.ReceiptService
	logger         *logrus.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(
	bookingService *services.BookingService,
	notifier *services.NotifierService,
	receipts *services.ReceiptService,
	logger *logrus.Logger,
) *NotificationHandler {
	return &NotificationHandler{
		bookingService: bookingService,
		notifier:       notifier,
		receipts:       receipts,
		logger:         logger,
	}
}

// SendSMS re-sends the booking confirmation SMS.
// Delivery is best-effort: provider failures are logged and reported as
// success=false, never as an HTTP error. The client cannot fix a gateway
// outage, and the booking itself is unaffected.
// @Summary Resend booking confirmation SMS
// @Tags Notifications
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param request body models.NotifyRequest true "Booking reference"
// @Success 200 {object} map[string]interface{}
// @Router /notifications/send-sms [post]
func (h *NotificationHandler) SendSMS(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req models.NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking_id"})
		return
	}

	booking, err := h.bookingService.GetBooking(userCtx.UserID, bookingID)
	if err != nil {
		if errors.Is(err, models.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to load booking for SMS")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load booking"})
		return
	}

	if err := h.notifier.SendBookingSMS(booking, req.Phone); err != nil {
		h.logger.WithError(err).WithField("booking_id", bookingID).Warn("SMS delivery failed")
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "SMS could not be delivered"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GenerateReceipt builds the receipt for a booking and reports success
// @Summary Generate booking receipt
// @Tags Notifications
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param request body models.NotifyRequest true "Booking reference"
// @Success 200 {object} map[string]interface{}
// @Router /receipts/generate [post]
func (h *NotificationHandler) GenerateReceipt(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req models.NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking_id"})
		return
	}

	booking, err := h.bookingService.GetBooking(userCtx.UserID, bookingID)
	if err != nil {
		if errors.Is(err, models.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load booking"})
		return
	}

	if _, _, err := h.receipts.Generate(booking); err != nil {
		h.logger.WithError(err).WithField("booking_id", bookingID).Warn("Receipt generation failed")
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "receipt could not be generated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "booking_id": bookingID})
}

// DownloadReceipt streams the receipt PDF
// @Summary Download booking receipt PDF
// @Tags Notifications
// @Produce application/pdf
// @Param Authorization header string true "Bearer token"
// @Param booking_id path string true "Booking ID"
// @Success 200 {file} binary
// @Router /receipts/{booking_id} [get]
func (h *NotificationHandler) DownloadReceipt(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	booking, err := h.bookingService.GetBooking(userCtx.UserID, bookingID)
	if err != nil {
		if errors.Is(err, models.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load booking"})
		return
	}

	if !booking.IsConfirmed() {
		c.JSON(http.StatusConflict, gin.H{"error": "receipt available for confirmed bookings only"})
		return
	}

	pdf, filename, err := h.receipts.Generate(booking)
	if err != nil {
		h.logger.WithError(err).WithField("booking_id", bookingID).Error("Receipt rendering failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate receipt"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/voyago/booking-backend/internal/middleware"
	"github.com/voyago/booking-backend/internal/models"
	"github.com/voyago/booking-backend/internal/services"
)

// BookingHandler handles booking listing and cancellation endpoints
type BookingHandler struct {
	bookingService *services.BookingService
	logger         *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingService *services.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		logger:         logger,
	}
}

// ListBookings lists the caller's bookings
// @Summary List my bookings
// @Tags Bookings
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param vertical query string false "Filter by vertical (hotel/flight/bus/train)"
// @Success 200 {object} map[string]interface{}
// @Router /bookings [get]
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	vertical := models.Vertical(c.Query("vertical"))
	if vertical != "" && !vertical.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown vertical"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	bookings, err := h.bookingService.ListBookings(userCtx.UserID, vertical, limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list bookings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// GetBooking returns one booking
// @Summary Get a booking
// @Tags Bookings
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "Booking ID"
// @Success 200 {object} models.Booking
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	booking, err := h.bookingService.GetBooking(userCtx.UserID, id)
	if err != nil {
		if errors.Is(err, models.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to get booking")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load booking"})
		return
	}

	c.JSON(http.StatusOK, booking)
}

// GetPaymentTrail returns the payment events recorded for a booking
// @Summary Payment trail for a booking
// @Tags Bookings
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "Booking ID"
// @Success 200 {object} map[string]interface{}
// @Router /bookings/{id}/payments [get]
func (h *BookingHandler) GetPaymentTrail(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	events, err := h.bookingService.PaymentTrail(userCtx.UserID, id)
	if err != nil {
		if errors.Is(err, models.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to load payment trail")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load payment trail"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"booking_id": id,
		"events":     events,
		"count":      len(events),
	})
}

// CancelBooking cancels a confirmed booking
// @Summary Cancel a booking
// @Description Cancels a confirmed booking. Refused after the check-in /
// travel date has passed; cancelling on the date itself incurs a fee.
// @Tags Bookings
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "Booking ID"
// @Success 200 {object} models.CancelBookingResponse
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	response, err := h.bookingService.CancelBooking(userCtx.UserID, id, requestMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		case errors.Is(err, models.ErrCancellationClosed):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "cancellation window has closed"})
		case errors.Is(err, models.ErrNotCancellable):
			c.JSON(http.StatusConflict, gin.H{"error": "booking is not in a cancellable state"})
		default:
			h.logger.WithError(err).WithField("booking_id", id).Error("Cancellation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel booking"})
		}
		return
	}

	c.JSON(http.StatusOK, response)
}

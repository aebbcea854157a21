package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/voyago/booking-backend/internal/gateway"
	"github.com/voyago/booking-backend/internal/models"
	"github.com/voyago/booking-backend/internal/services"
)

// Stripe payloads are small; anything larger is not a webhook we sent for.
const maxWebhookBody = 1 << 16

// StripeWebhookHandler receives push-style payment confirmations
type StripeWebhookHandler struct {
	stripe       *gateway.StripeGateway
	orchestrator *services.BookingOrchestratorService
	logger       *logrus.Logger
}

// NewStripeWebhookHandler creates a new StripeWebhookHandler
func NewStripeWebhookHandler(stripe *gateway.StripeGateway, orchestrator *services.BookingOrchestratorService, logger *logrus.Logger) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		stripe:       stripe,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// HandleWebhook processes a Stripe webhook delivery
// @Summary Stripe payment webhook
// @Tags Payments
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /payments/stripe-webhook [post]
func (h *StripeWebhookHandler) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read webhook body"})
		return
	}

	signature := c.GetHeader("Stripe-Signature")

	result, err := h.stripe.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, models.ErrSignatureMismatch) {
			h.logger.WithField("ip", c.ClientIP()).Warn("Stripe webhook signature rejected")
			// 400 makes Stripe retry; a transiently wrong clock or
			// rotated secret should not lose the confirmation.
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
			return
		}
		h.logger.WithError(err).Error("Failed to parse Stripe webhook")
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed webhook payload"})
		return
	}

	if !result.Completed {
		// Acknowledged, nothing to do for this event type
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	bookingID, err := h.orchestrator.ConfirmFromWebhook("stripe", result, services.RequestMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		if errors.Is(err, models.ErrBookingNotFound) {
			// The session exists Stripe-side but we have no row for it;
			// non-2xx keeps the retry loop alive in case row creation
			// raced the webhook.
			c.JSON(http.StatusNotFound, gin.H{"error": "no booking for session"})
			return
		}
		if errors.Is(err, models.ErrBookingCancelled) {
			// Retrying cannot change the outcome; acknowledge so Stripe
			// stops redelivering. The rejection is already audited.
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		h.logger.WithError(err).WithField("order_id", result.OrderID).Error("Webhook confirm failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to confirm booking"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true, "booking_id": bookingID})
}

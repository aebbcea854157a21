package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/voyago/booking-backend/internal/models"
)

// StripeGateway opens Checkout sessions and validates signed webhooks.
// Unlike Razorpay there is no client callback; confirmation only ever
// arrives on the webhook.
type StripeGateway struct {
	secretKey     string
	webhookSecret string
	successURL    string
	cancelURL     string
	logger        *logrus.Logger
}

// WebhookResult is the confirmation extracted from a completed checkout
// session event.
type WebhookResult struct {
	OrderID   string
	PaymentID string
	Vertical  string
	Amount    int64
	// Completed is false for event types we acknowledge but ignore
	Completed bool
}

// NewStripeGateway creates a new Stripe gateway
func NewStripeGateway(secretKey, webhookSecret, successURL, cancelURL string, logger *logrus.Logger) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		successURL:    successURL,
		cancelURL:     cancelURL,
		logger:        logger,
	}
}

// Name identifies the provider
func (g *StripeGateway) Name() string {
	return "stripe"
}

// CreateOrder opens a Checkout session. The session id doubles as our
// gateway order id, and the vertical rides in session metadata so the
// webhook can route the confirmation back to the right table.
func (g *StripeGateway) CreateOrder(ctx context.Context, params OrderParams) (*Order, error) {
	sessionParams := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(params.Currency)),
					UnitAmount: stripe.Int64(params.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(params.ItemName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(g.successURL),
		CancelURL:         stripe.String(g.cancelURL),
		ClientReferenceID: stripe.String(params.BookingID.String()),
	}
	sessionParams.Context = ctx
	sessionParams.AddMetadata("booking_id", params.BookingID.String())
	sessionParams.AddMetadata("vertical", params.Vertical)
	sessionParams.AddMetadata("receipt", params.Receipt)

	sess, err := session.New(sessionParams)
	if err != nil {
		return nil, &models.GatewayError{Gateway: g.Name(), Err: err}
	}

	g.logger.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"booking_id": params.BookingID,
		"amount":     params.Amount,
	}).Info("Stripe checkout session created")

	return &Order{ID: sess.ID, CheckoutURL: sess.URL}, nil
}

// VerifyCompletion validates the webhook signature header against the
// endpoint secret.
func (g *StripeGateway) VerifyCompletion(completion Completion) bool {
	if len(completion.WebhookPayload) == 0 || completion.WebhookHeader == "" {
		return false
	}
	_, err := webhook.ConstructEvent(completion.WebhookPayload, completion.WebhookHeader, g.webhookSecret)
	return err == nil
}

// ParseWebhook validates and decodes a webhook delivery. Signature failures
// come back as an error so the handler can reject with 400 and have Stripe
// retry; event types other than checkout completion return Completed=false
// and should be acknowledged without action.
func (g *StripeGateway) ParseWebhook(payload []byte, signatureHeader string) (*WebhookResult, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
	if err != nil {
		return nil, models.ErrSignatureMismatch
	}

	if event.Type != "checkout.session.completed" {
		g.logger.WithField("event_type", event.Type).Debug("Ignoring Stripe event")
		return &WebhookResult{Completed: false}, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}

	result := &WebhookResult{
		OrderID:   sess.ID,
		Vertical:  sess.Metadata["vertical"],
		Amount:    sess.AmountTotal,
		Completed: true,
	}
	if sess.PaymentIntent != nil {
		result.PaymentID = sess.PaymentIntent.ID
	}
	return result, nil
}

package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/sirupsen/logrus"

	"github.com/voyago/booking-backend/internal/models"
)

// RazorpayGateway opens orders with Razorpay and verifies the client-side
// checkout callback signature.
type RazorpayGateway struct {
	client    *razorpay.Client
	keyID     string
	keySecret string
	logger    *logrus.Logger
}

// NewRazorpayGateway creates a new Razorpay gateway
func NewRazorpayGateway(keyID, keySecret string, logger *logrus.Logger) *RazorpayGateway {
	return &RazorpayGateway{
		client:    razorpay.NewClient(keyID, keySecret),
		keyID:     keyID,
		keySecret: keySecret,
		logger:    logger,
	}
}

// Name identifies the provider
func (g *RazorpayGateway) Name() string {
	return "razorpay"
}

// CreateOrder opens a Razorpay order for the given amount. Razorpay takes
// amounts in minor units, which is already our internal representation.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, params OrderParams) (*Order, error) {
	data := map[string]interface{}{
		"amount":   params.Amount,
		"currency": params.Currency,
		"receipt":  params.Receipt,
		"notes": map[string]interface{}{
			"booking_id": params.BookingID.String(),
			"vertical":   params.Vertical,
			"item_name":  params.ItemName,
		},
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, &models.GatewayError{Gateway: g.Name(), Err: err}
	}

	orderID, ok := body["id"].(string)
	if !ok || orderID == "" {
		return nil, &models.GatewayError{
			Gateway: g.Name(),
			Err:     fmt.Errorf("order response missing id"),
		}
	}

	g.logger.WithFields(logrus.Fields{
		"order_id":   orderID,
		"booking_id": params.BookingID,
		"amount":     params.Amount,
	}).Info("Razorpay order created")

	return &Order{ID: orderID, KeyID: g.keyID}, nil
}

// VerifyCompletion recomputes the checkout callback signature over
// "<order_id>|<payment_id>" with the key secret and compares it in constant
// time against what the client submitted.
func (g *RazorpayGateway) VerifyCompletion(completion Completion) bool {
	if completion.OrderID == "" || completion.PaymentID == "" || completion.Signature == "" {
		return false
	}

	message := completion.OrderID + "|" + completion.PaymentID

	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(message))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(completion.Signature))
}

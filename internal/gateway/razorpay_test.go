package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

const testKeySecret = "test-key-secret-4242"

func signTriplet(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func testRazorpayGateway() *RazorpayGateway {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewRazorpayGateway("rzp_test_key", testKeySecret, logger)
}

func TestRazorpayVerifyCompletion_ValidSignature(t *testing.T) {
	gw := testRazorpayGateway()

	ok := gw.VerifyCompletion(Completion{
		OrderID:   "order_N5X1a2b3",
		PaymentID: "pay_N5X9z8y7",
		Signature: signTriplet(testKeySecret, "order_N5X1a2b3", "pay_N5X9z8y7"),
	})
	assert.True(t, ok)
}

func TestRazorpayVerifyCompletion_TamperedSignature(t *testing.T) {
	gw := testRazorpayGateway()

	valid := signTriplet(testKeySecret, "order_N5X1a2b3", "pay_N5X9z8y7")

	// Flipping any single hex digit must fail verification
	for i := 0; i < len(valid); i += 7 {
		tampered := []byte(valid)
		if tampered[i] == 'a' {
			tampered[i] = 'b'
		} else {
			tampered[i] = 'a'
		}
		ok := gw.VerifyCompletion(Completion{
			OrderID:   "order_N5X1a2b3",
			PaymentID: "pay_N5X9z8y7",
			Signature: string(tampered),
		})
		assert.False(t, ok, "tampered signature at index %d accepted", i)
	}
}

func TestRazorpayVerifyCompletion_SwappedIDs(t *testing.T) {
	gw := testRazorpayGateway()

	// Signature over one pair must not verify another pair
	sig := signTriplet(testKeySecret, "order_A", "pay_A")
	ok := gw.VerifyCompletion(Completion{
		OrderID:   "order_B",
		PaymentID: "pay_A",
		Signature: sig,
	})
	assert.False(t, ok)
}

func TestRazorpayVerifyCompletion_MissingFields(t *testing.T) {
	gw := testRazorpayGateway()

	cases := []Completion{
		{},
		{OrderID: "order_1", PaymentID: "pay_1"},
		{OrderID: "order_1", Signature: "abc"},
		{PaymentID: "pay_1", Signature: "abc"},
	}
	for _, completion := range cases {
		assert.False(t, gw.VerifyCompletion(completion))
	}
}

func TestRazorpayVerifyCompletion_WrongSecret(t *testing.T) {
	gw := testRazorpayGateway()

	sig := signTriplet("some-other-secret", "order_1", "pay_1")
	ok := gw.VerifyCompletion(Completion{
		OrderID:   "order_1",
		PaymentID: "pay_1",
		Signature: sig,
	})
	assert.False(t, ok)
}

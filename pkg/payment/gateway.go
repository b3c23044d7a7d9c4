// Package payment wraps the hosted payment gateway: order creation through
// its SDK and HMAC signature verification of completed payments.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// ErrMissingSecret makes an empty gateway secret a startup failure; a blank
// secret must never verify a signature by accident.
var ErrMissingSecret = errors.New("payment gateway secret is not configured")

type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
}

type Gateway struct {
	client *razorpay.Client
	keyID  string
	secret string
}

func NewGateway(keyID, keySecret string) (*Gateway, error) {
	if keySecret == "" {
		return nil, ErrMissingSecret
	}
	if keyID == "" {
		return nil, errors.New("payment gateway key id is not configured")
	}
	return &Gateway{
		client: razorpay.NewClient(keyID, keySecret),
		keyID:  keyID,
		secret: keySecret,
	}, nil
}

// KeyID is the publishable key the checkout widget needs.
func (g *Gateway) KeyID() string {
	return g.keyID
}

// CreateOrder registers an order with the gateway. Amount is in the
// currency's smallest unit.
func (g *Gateway) CreateOrder(amount int64, currency, receipt string) (*Order, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("order creation failed: %w", err)
	}

	id, ok := body["id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("order creation returned no id")
	}

	return &Order{
		ID:       id,
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	}, nil
}

// VerifySignature checks the gateway's payment signature: HMAC-SHA256 over
// "orderID|paymentID" with the key secret, compared in constant time.
func (g *Gateway) VerifySignature(orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	expected := Sign(orderID, paymentID, g.secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the hex HMAC-SHA256 the gateway attaches to a completed
// payment. Exported for tests and webhook tooling.
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

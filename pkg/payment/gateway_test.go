package payment_test

import (
	"errors"
	"testing"

	"github.com/flipflow/flipflow-backend/pkg/payment"
)

func TestNewGatewayRequiresSecret(t *testing.T) {
	// An empty secret must fail at construction; it can never silently
	// verify every signature (or none) at request time.
	_, err := payment.NewGateway("key_id", "")
	if err == nil {
		t.Fatal("expected error for empty secret")
	}
	if !errors.Is(err, payment.ErrMissingSecret) {
		t.Fatalf("err = %v, want ErrMissingSecret", err)
	}

	if _, err := payment.NewGateway("", "secret"); err == nil {
		t.Fatal("expected error for empty key id")
	}
}

func TestVerifySignature(t *testing.T) {
	const secret = "test_secret"
	gw, err := payment.NewGateway("key_id", secret)
	if err != nil {
		t.Fatalf("NewGateway failed: %v", err)
	}

	valid := payment.Sign("order_123", "pay_456", secret)

	cases := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
		want      bool
	}{
		{"valid", "order_123", "pay_456", valid, true},
		{"tampered signature", "order_123", "pay_456", valid[:len(valid)-1] + "0", false},
		{"wrong order", "order_999", "pay_456", valid, false},
		{"wrong payment", "order_123", "pay_999", valid, false},
		{"empty signature", "order_123", "pay_456", "", false},
		{"empty order", "", "pay_456", valid, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := gw.VerifySignature(tc.orderID, tc.paymentID, tc.signature); got != tc.want {
				t.Fatalf("VerifySignature = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSignatureBoundToSecret(t *testing.T) {
	sig := payment.Sign("order_1", "pay_1", "secret_a")
	gw, err := payment.NewGateway("key_id", "secret_b")
	if err != nil {
		t.Fatalf("NewGateway failed: %v", err)
	}
	if gw.VerifySignature("order_1", "pay_1", sig) {
		t.Fatal("signature minted under another secret verified")
	}
}

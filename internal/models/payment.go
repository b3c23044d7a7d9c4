package models

import (
	"time"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusFailed    = "failed"
)

// PaymentOrder tracks a premium-upgrade order through the gateway.
type PaymentOrder struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"user_id" gorm:"not null;index"`
	GatewayOrderID string    `json:"gateway_order_id" gorm:"unique;not null"`
	PaymentID      string    `json:"payment_id"`
	Amount         int64     `json:"amount" gorm:"not null"`
	Currency       string    `json:"currency" gorm:"not null"`
	Receipt        string    `json:"receipt" gorm:"not null"`
	Status         string    `json:"status" gorm:"not null;default:'pending'"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CreateOrderResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"order_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

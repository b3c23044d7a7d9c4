package repository

import (
	"github.com/flipflow/flipflow-backend/internal/models"
	"gorm.io/gorm"
)

type PaymentOrderRepository struct {
	db *gorm.DB
}

func NewPaymentOrderRepository(db *gorm.DB) *PaymentOrderRepository {
	return &PaymentOrderRepository{db: db}
}

func (r *PaymentOrderRepository) Create(order *models.PaymentOrder) error {
	return r.db.Create(order).Error
}

func (r *PaymentOrderRepository) GetByGatewayOrderID(orderID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	err := r.db.Where("gateway_order_id = ?", orderID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *PaymentOrderRepository) Update(order *models.PaymentOrder) error {
	return r.db.Save(order).Error
}

func (r *PaymentOrderRepository) GetUserOrders(userID uint) ([]models.PaymentOrder, error) {
	var orders []models.PaymentOrder
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

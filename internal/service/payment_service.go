package service

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flipflow/flipflow-backend/internal/apperror"
	"github.com/flipflow/flipflow-backend/internal/config"
	"github.com/flipflow/flipflow-backend/internal/models"
	"github.com/flipflow/flipflow-backend/internal/plan"
	"github.com/flipflow/flipflow-backend/internal/repository"
	"github.com/flipflow/flipflow-backend/pkg/payment"
)

type PaymentService struct {
	gateway   *payment.Gateway
	userRepo  *repository.UserRepository
	orderRepo *repository.PaymentOrderRepository
	cfg       config.PaymentConfig
	log       *zap.Logger
}

func NewPaymentService(
	gateway *payment.Gateway,
	userRepo *repository.UserRepository,
	orderRepo *repository.PaymentOrderRepository,
	cfg config.PaymentConfig,
	log *zap.Logger,
) *PaymentService {
	return &PaymentService{
		gateway:   gateway,
		userRepo:  userRepo,
		orderRepo: orderRepo,
		cfg:       cfg,
		log:       log,
	}
}

// CreateUpgradeOrder opens a premium-upgrade order with the gateway and
// records it as pending.
func (s *PaymentService) CreateUpgradeOrder(userID uint) (*models.CreateOrderResponse, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, apperror.FromError(err)
	}

	if plan.ResolveTier(user.Plan) == plan.TierPremium {
		return nil, apperror.New(apperror.KindConflict, "you are already on the premium plan")
	}

	receipt := fmt.Sprintf("ff_upgrade_%d_%s", userID, uuid.NewString()[:8])
	order, err := s.gateway.CreateOrder(s.cfg.PremiumPrice, s.cfg.Currency, receipt)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindNetwork, "could not reach the payment gateway", err)
	}

	row := &models.PaymentOrder{
		UserID:         userID,
		GatewayOrderID: order.ID,
		Amount:         order.Amount,
		Currency:       order.Currency,
		Receipt:        order.Receipt,
		Status:         models.OrderStatusPending,
	}
	if err := s.orderRepo.Create(row); err != nil {
		return nil, apperror.FromError(err)
	}

	return &models.CreateOrderResponse{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    s.gateway.KeyID(),
	}, nil
}

// VerifyPayment checks the gateway signature for a completed checkout and,
// when it holds, upgrades the payer to premium. A signature mismatch marks
// the order failed and never upgrades.
func (s *PaymentService) VerifyPayment(userID uint, req models.VerifyPaymentRequest) (*models.PaymentOrder, error) {
	order, err := s.orderRepo.GetByGatewayOrderID(req.OrderID)
	if err != nil {
		return nil, apperror.FromError(err)
	}
	if order.UserID != userID {
		return nil, apperror.New(apperror.KindPermission, "this order belongs to another account")
	}
	if order.Status == models.OrderStatusCompleted {
		return order, nil
	}

	if !s.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		order.Status = models.OrderStatusFailed
		if updateErr := s.orderRepo.Update(order); updateErr != nil {
			s.log.Error("failed to mark order failed",
				zap.String("order_id", order.GatewayOrderID), zap.Error(updateErr))
		}
		return nil, apperror.New(apperror.KindValidation, "payment verification failed")
	}

	order.Status = models.OrderStatusCompleted
	order.PaymentID = req.PaymentID
	if err := s.orderRepo.Update(order); err != nil {
		return nil, apperror.FromError(err)
	}

	if err := s.userRepo.UpdatePlan(userID, string(plan.TierPremium)); err != nil {
		return nil, apperror.FromError(err)
	}

	s.log.Info("user upgraded to premium",
		zap.Uint("user_id", userID),
		zap.String("order_id", order.GatewayOrderID),
	)
	return order, nil
}

func (s *PaymentService) GetOrderHistory(userID uint) ([]models.PaymentOrder, error) {
	orders, err := s.orderRepo.GetUserOrders(userID)
	if err != nil {
		return nil, apperror.FromError(err)
	}
	return orders, nil
}

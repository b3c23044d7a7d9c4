package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/flipflow/flipflow-backend/internal/apperror"
	"github.com/flipflow/flipflow-backend/internal/middleware"
	"github.com/flipflow/flipflow-backend/internal/models"
	"github.com/flipflow/flipflow-backend/internal/plan"
	"github.com/flipflow/flipflow-backend/internal/service"
	"github.com/flipflow/flipflow-backend/pkg/utils"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	validator      *utils.Validator
}

func NewPaymentHandler(paymentService *service.PaymentService, validator *utils.Validator) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, validator: validator}
}

// GetPlans exposes the tier table for pricing pages.
func (h *PaymentHandler) GetPlans(c *fiber.Ctx) error {
	return c.JSON(models.SuccessResponse(plan.AllConfigs(), "Plans retrieved successfully"))
}

func (h *PaymentHandler) CreateUpgradeOrder(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return apperror.New(apperror.KindAuth, "user not authenticated")
	}

	order, err := h.paymentService.CreateUpgradeOrder(userID)
	if err != nil {
		return err
	}

	return c.JSON(models.SuccessResponse(order, "Order created successfully"))
}

func (h *PaymentHandler) VerifyPayment(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return apperror.New(apperror.KindAuth, "user not authenticated")
	}

	var req models.VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.New(apperror.KindValidation, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return apperror.Wrap(apperror.KindValidation, err.Error(), err)
	}

	order, err := h.paymentService.VerifyPayment(userID, req)
	if err != nil {
		return err
	}

	return c.JSON(models.SuccessResponse(order, "Payment verified, welcome to premium"))
}

func (h *PaymentHandler) GetOrderHistory(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return apperror.New(apperror.KindAuth, "user not authenticated")
	}

	orders, err := h.paymentService.GetOrderHistory(userID)
	if err != nil {
		return err
	}

	return c.JSON(models.SuccessResponse(orders, "Order history retrieved successfully"))
}

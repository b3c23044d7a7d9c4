package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/flipflow/flipflow-backend/internal/apperror"
	"github.com/flipflow/flipflow-backend/internal/models"
	"github.com/flipflow/flipflow-backend/internal/service"
	"github.com/flipflow/flipflow-backend/pkg/utils"
)

type AuthHandler struct {
	authService *service.AuthService
	validator   *utils.Validator
}

func NewAuthHandler(authService *service.AuthService, validator *utils.Validator) *AuthHandler {
	return &AuthHandler{authService: authService, validator: validator}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.New(apperror.KindValidation, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return apperror.Wrap(apperror.KindValidation, err.Error(), err)
	}

	resp, err := h.authService.Register(req)
	if err != nil {
		return err
	}

	return c.JSON(models.SuccessResponse(resp, "Account created successfully"))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.New(apperror.KindValidation, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return apperror.Wrap(apperror.KindValidation, err.Error(), err)
	}

	resp, err := h.authService.Login(req)
	if err != nil {
		return err
	}

	return c.JSON(models.SuccessResponse(resp, "Logged in successfully"))
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req models.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.New(apperror.KindValidation, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return apperror.Wrap(apperror.KindValidation, err.Error(), err)
	}

	if err := h.authService.ForgotPassword(req.Email); err != nil {
		return err
	}

	return c.JSON(models.SuccessResponse(nil, "If the email exists, a reset link has been sent"))
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req models.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.New(apperror.KindValidation, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return apperror.Wrap(apperror.KindValidation, err.Error(), err)
	}

	if err := h.authService.ResetPassword(req.Token, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(models.SuccessResponse(nil, "Password reset successfully"))
}

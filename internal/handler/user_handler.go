package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/flipflow/flipflow-backend/internal/apperror"
	"github.com/flipflow/flipflow-backend/internal/middleware"
	"github.com/flipflow/flipflow-backend/internal/models"
	"github.com/flipflow/flipflow-backend/internal/service"
	"github.com/flipflow/flipflow-backend/pkg/utils"
)

type UserHandler struct {
	userService *service.UserService
	validator   *utils.Validator
}

func NewUserHandler(userService *service.UserService, validator *utils.Validator) *UserHandler {
	return &UserHandler{userService: userService, validator: validator}
}

func (h *UserHandler) GetMyProfile(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return apperror.New(apperror.KindAuth, "user not authenticated")
	}

	user, err := h.userService.GetProfile(userID)
	if err != nil {
		return err
	}

	return c.JSON(models.SuccessResponse(user, "Profile retrieved successfully"))
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return apperror.New(apperror.KindAuth, "user not authenticated")
	}

	var req models.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.New(apperror.KindValidation, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return apperror.Wrap(apperror.KindValidation, err.Error(), err)
	}

	user, err := h.userService.UpdateProfile(userID, req)
	if err != nil {
		return err
	}

	return c.JSON(models.SuccessResponse(user, "Profile updated successfully"))
}

func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return apperror.New(apperror.KindAuth, "user not authenticated")
	}

	var req models.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.New(apperror.KindValidation, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return apperror.Wrap(apperror.KindValidation, err.Error(), err)
	}

	if err := h.userService.ChangePassword(userID, req); err != nil {
		return err
	}

	return c.JSON(models.SuccessResponse(nil, "Password changed successfully"))
}

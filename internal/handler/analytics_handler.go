package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/flipflow/flipflow-backend/internal/apperror"
	"github.com/flipflow/flipflow-backend/internal/middleware"
	"github.com/flipflow/flipflow-backend/internal/models"
	"github.com/flipflow/flipflow-backend/internal/service"
)

type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// RecordView stores a view event for a flipbook page-open.
func (h *AnalyticsHandler) RecordView(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.analyticsService.RecordView(c.Context(), id, viewerFromCtx(c), c.Get("User-Agent")); err != nil {
		return err
	}

	return c.JSON(models.SuccessResponse(nil, "View recorded"))
}

func (h *AnalyticsHandler) GetStats(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return apperror.New(apperror.KindAuth, "user not authenticated")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	stats, err := h.analyticsService.GetStats(c.Context(), id, userID)
	if err != nil {
		return err
	}

	return c.JSON(models.SuccessResponse(stats, "Stats retrieved successfully"))
}

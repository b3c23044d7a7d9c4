package handler

import (
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/flipflow/flipflow-backend/internal/apperror"
	"github.com/flipflow/flipflow-backend/internal/middleware"
	"github.com/flipflow/flipflow-backend/internal/models"
	"github.com/flipflow/flipflow-backend/internal/service"
	"github.com/flipflow/flipflow-backend/pkg/storage"
	"github.com/flipflow/flipflow-backend/pkg/utils"
)

type FlipbookHandler struct {
	flipbookService *service.FlipbookService
	validator       *utils.Validator
}

func NewFlipbookHandler(flipbookService *service.FlipbookService, validator *utils.Validator) *FlipbookHandler {
	return &FlipbookHandler{flipbookService: flipbookService, validator: validator}
}

func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, apperror.New(apperror.KindValidation, "invalid flipbook id")
	}
	return uint(id), nil
}

func viewerFromCtx(c *fiber.Ctx) service.Viewer {
	userID, ok := middleware.UserID(c)
	return service.Viewer{Authenticated: ok, UserID: userID}
}

func (h *FlipbookHandler) CreateFlipbook(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return apperror.New(apperror.KindAuth, "user not authenticated")
	}

	var req models.CreateFlipbookRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.New(apperror.KindValidation, "invalid form data")
	}
	if err := h.validator.Struct(req); err != nil {
		return apperror.Wrap(apperror.KindValidation, err.Error(), err)
	}

	fileHeader, err := c.FormFile("pdf")
	if err != nil {
		return apperror.New(apperror.KindValidation, "a PDF file is required")
	}

	// Reject on the declared size and type before the body is even read.
	contentType := fileHeader.Header.Get("Content-Type")
	if err := storage.ValidatePDFUpload(fileHeader.Size, contentType); err != nil {
		return apperror.Wrap(apperror.KindValidation, err.Error(), err)
	}

	f, err := fileHeader.Open()
	if err != nil {
		return apperror.Wrap(apperror.KindValidation, "could not read uploaded file", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return apperror.Wrap(apperror.KindValidation, "could not read uploaded file", err)
	}

	flipbook, err := h.flipbookService.CreateFlipbook(c.Context(), userID, req, service.UploadedFile{
		Filename:    fileHeader.Filename,
		Size:        fileHeader.Size,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(flipbook, "Flipbook created successfully"))
}

func (h *FlipbookHandler) GetUserFlipbooks(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return apperror.New(apperror.KindAuth, "user not authenticated")
	}

	flipbooks, err := h.flipbookService.GetUserFlipbooks(c.Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(models.SuccessResponse(flipbooks, "Flipbooks retrieved successfully"))
}

// GetFlipbook serves both the owner's dashboard and the public viewer; the
// permission table decides per row.
func (h *FlipbookHandler) GetFlipbook(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	flipbook, err := h.flipbookService.GetFlipbook(c.Context(), id, viewerFromCtx(c))
	if err != nil {
		return err
	}

	return c.JSON(models.SuccessResponse(flipbook, "Flipbook retrieved successfully"))
}

func (h *FlipbookHandler) UpdateFlipbook(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return apperror.New(apperror.KindAuth, "user not authenticated")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateFlipbookRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.New(apperror.KindValidation, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return apperror.Wrap(apperror.KindValidation, err.Error(), err)
	}

	flipbook, err := h.flipbookService.UpdateFlipbook(c.Context(), id, userID, req)
	if err != nil {
		return err
	}

	return c.JSON(models.SuccessResponse(flipbook, "Flipbook updated successfully"))
}

func (h *FlipbookHandler) DeleteFlipbook(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return apperror.New(apperror.KindAuth, "user not authenticated")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.flipbookService.DeleteFlipbook(c.Context(), id, userID); err != nil {
		return err
	}

	return c.JSON(models.SuccessResponse(nil, "Flipbook deleted successfully"))
}

func (h *FlipbookHandler) UploadLogo(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return apperror.New(apperror.KindAuth, "user not authenticated")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		return apperror.New(apperror.KindValidation, "a logo image is required")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if err := storage.ValidateAssetUpload(fileHeader.Size, contentType); err != nil {
		return apperror.Wrap(apperror.KindValidation, err.Error(), err)
	}

	f, err := fileHeader.Open()
	if err != nil {
		return apperror.Wrap(apperror.KindValidation, "could not read uploaded file", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return apperror.Wrap(apperror.KindValidation, "could not read uploaded file", err)
	}

	flipbook, err := h.flipbookService.UploadLogo(c.Context(), id, userID, service.UploadedFile{
		Filename:    fileHeader.Filename,
		Size:        fileHeader.Size,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		return err
	}

	return c.JSON(models.SuccessResponse(flipbook, "Logo uploaded successfully"))
}

func (h *FlipbookHandler) ExportFlipbook(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return apperror.New(apperror.KindAuth, "user not authenticated")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	url, err := h.flipbookService.ExportFlipbook(c.Context(), id, userID)
	if err != nil {
		return err
	}

	return c.JSON(models.SuccessResponse(fiber.Map{"download_url": url}, "Export ready"))
}

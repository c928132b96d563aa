package handlers

import (
	"context"
	"strconv"

	"merchantapi/internal/models"
	"merchantapi/internal/services/merchant"
	"merchantapi/internal/utils"
	"merchantapi/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// MerchantService is implemented by merchant.Service.
type MerchantService interface {
	ListAll(ctx context.Context) ([]models.Merchant, error)
	GetByID(ctx context.Context, id uint) (*models.Merchant, error)
	Create(ctx context.Context, input merchant.CreateMerchantInput) (*models.Merchant, error)
	Update(ctx context.Context, id uint, input merchant.UpdateMerchantInput) (*models.Merchant, error)
	Delete(ctx context.Context, id uint) error
}

type MerchantHandler struct {
	merchantService MerchantService
}

func NewMerchantHandler(merchantService MerchantService) *MerchantHandler {
	return &MerchantHandler{merchantService: merchantService}
}

func (h *MerchantHandler) List(c *fiber.Ctx) error {
	merchants, err := h.merchantService.ListAll(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return utils.Success(c, merchants)
}

func (h *MerchantHandler) Get(c *fiber.Ctx) error {
	id, err := merchantID(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid merchant ID")
	}

	m, err := h.merchantService.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return utils.Success(c, m)
}

func (h *MerchantHandler) Create(c *fiber.Ctx) error {
	var input merchant.CreateMerchantInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(input); err != nil {
		return writeError(c, err)
	}

	m, err := h.merchantService.Create(c.UserContext(), input)
	if err != nil {
		return writeError(c, err)
	}
	return utils.Created(c, m)
}

// Update changes the profile fields; email and password in the body are ignored.
func (h *MerchantHandler) Update(c *fiber.Ctx) error {
	id, err := merchantID(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid merchant ID")
	}

	var input merchant.UpdateMerchantInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(input); err != nil {
		return writeError(c, err)
	}

	m, err := h.merchantService.Update(c.UserContext(), id, input)
	if err != nil {
		return writeError(c, err)
	}
	return utils.Success(c, m)
}

func (h *MerchantHandler) Delete(c *fiber.Ctx) error {
	id, err := merchantID(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid merchant ID")
	}

	if err := h.merchantService.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return utils.NoContent(c)
}

func merchantID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(id), nil
}

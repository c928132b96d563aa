package handlers

import (
	"errors"

	"merchantapi/internal/logger"
	"merchantapi/internal/services/auth"
	"merchantapi/internal/services/merchant"
	"merchantapi/internal/utils"
	"merchantapi/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// writeError maps service and validation errors to HTTP responses.
func writeError(c *fiber.Ctx, err error) error {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		return utils.ValidationFailed(c, verrs)
	case errors.Is(err, merchant.ErrMerchantNotFound):
		return utils.NotFound(c, err.Error())
	case errors.Is(err, merchant.ErrEmailTaken):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		return utils.Unauthorized(c, err.Error())
	default:
		logger.FromCtx(c).Error("request failed", zap.Error(err))
		return utils.InternalError(c, "internal server error")
	}
}

package handlers

import (
	"context"

	"merchantapi/internal/services/merchant"
	"merchantapi/internal/utils"
	"merchantapi/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// AuthService is implemented by auth.Service.
type AuthService interface {
	Register(ctx context.Context, input merchant.CreateMerchantInput) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthHandler struct {
	authService AuthService
}

func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a merchant and returns its bearer token as plain text.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input merchant.CreateMerchantInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(input); err != nil {
		return writeError(c, err)
	}

	token, err := h.authService.Register(c.UserContext(), input)
	if err != nil {
		return writeError(c, err)
	}
	return utils.Text(c, token)
}

// Login exchanges email and password for a bearer token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(input); err != nil {
		return writeError(c, err)
	}

	token, err := h.authService.Login(c.UserContext(), input.Email, input.Password)
	if err != nil {
		return writeError(c, err)
	}
	return utils.Text(c, token)
}

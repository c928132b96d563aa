// Package middleware provides HTTP middleware components for the application.
// It includes authentication, authorization, and request tagging middleware
// for the fiber web framework.
package middleware

import (
	"strings"

	"merchantapi/internal/logger"
	"merchantapi/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ClaimsKey is the fiber.Ctx locals key holding *models.MerchantClaims.
const ClaimsKey = "claims"

// TokenParser validates a bearer token and returns its claims.
type TokenParser interface {
	Parse(token string) (*models.MerchantClaims, error)
}

// AuthMiddleware handles JWT token validation.
type AuthMiddleware struct {
	tokens TokenParser
}

func NewAuthMiddleware(tokens TokenParser) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handler extracts the bearer token from the Authorization header, validates
// it and stores the claims in the request context.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
	}

	claims, err := m.tokens.Parse(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		logger.FromCtx(c).Debug("token validation failed", zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
	}

	c.Locals(ClaimsKey, claims)
	c.Locals(logger.LocalsKey, logger.FromCtx(c).With(zap.Uint("merchant_id", claims.MerchantID)))

	return c.Next()
}

// HasPermission returns a middleware that checks for a specific permission.
func HasPermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(ClaimsKey).(*models.MerchantClaims)
		if !ok || claims == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		if claims.HasPermission(permission) {
			return c.Next()
		}

		logger.FromCtx(c).Warn("permission denied", zap.String("permission", permission))
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
	}
}

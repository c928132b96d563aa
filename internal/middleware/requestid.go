package middleware

import (
	"merchantapi/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags each request with an id, echoes it in the response and
// attaches a logger carrying it.
func RequestID(base *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := utils.CopyString(c.Get(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.Locals(logger.LocalsKey, base.With(zap.String("request_id", id)))
		return c.Next()
	}
}

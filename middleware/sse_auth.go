package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"hackathon-platform/utils"
)

// SSEAuthMiddleware validates a `token` query parameter. EventSource cannot
// set request headers, so stream endpoints carry the JWT in the URL.
//
// Usage:
//
//	app.Get("/notifications/stream", middleware.SSEAuthMiddleware(), notificationService.Stream)
func SSEAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(c.Query("token"))
		if token == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "missing token in query",
			})
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			utils.Sugar.Warnw("sse auth rejected", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("username", claims.Username)
		c.Locals("role", claims.Role)
		return c.Next()
	}
}

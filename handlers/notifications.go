package handlers

import (
	"github.com/gofiber/fiber/v2"

	"hackathon-platform/middleware"
	"hackathon-platform/services"
)

func SetupNotificationRoutes(app *fiber.App, notificationService *services.NotificationService) {
	secured := app.Group("/notifications", middleware.AuthMiddleware())

	secured.Get("/", func(c *fiber.Ctx) error {
		rows, err := notificationService.List(c.Context(), c.Locals("user_id").(string), c.QueryInt("page", 1), c.QueryInt("size", 20))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(rows)
	})

	secured.Get("/unread_count", func(c *fiber.Ctx) error {
		count, err := notificationService.UnreadCount(c.Context(), c.Locals("user_id").(string))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"count": count})
	})

	secured.Post("/:id/read", func(c *fiber.Ctx) error {
		if err := notificationService.MarkRead(c.Context(), c.Locals("user_id").(string), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	secured.Post("/read_all", func(c *fiber.Ctx) error {
		if err := notificationService.MarkAllRead(c.Context(), c.Locals("user_id").(string)); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// EventSource cannot set headers, so the stream authenticates via a
	// token query param.
	app.Get("/notifications/stream", middleware.SSEAuthMiddleware(), notificationService.Stream)
}

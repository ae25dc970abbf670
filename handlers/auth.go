package handlers

import (
	"github.com/gofiber/fiber/v2"

	"hackathon-platform/middleware"
	"hackathon-platform/services"
)

func SetupAuthRoutes(app *fiber.App, authService *services.AuthService, presence *services.PresenceService) {
	app.Post("/auth/register", func(c *fiber.Ctx) error {
		var req services.RegisterInput
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		user, token, err := authService.Register(c.Context(), req)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user, "token": token})
	})

	app.Post("/auth/login", func(c *fiber.Ctx) error {
		var req struct {
			Login    string `json:"login"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		user, token, err := authService.Login(c.Context(), req.Login, req.Password)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"user": user, "token": token})
	})

	secured := app.Group("/", middleware.AuthMiddleware())

	secured.Get("/users/me", func(c *fiber.Ctx) error {
		user, err := authService.GetUser(c.Context(), c.Locals("user_id").(string))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(user)
	})

	secured.Patch("/users/me", func(c *fiber.Ctx) error {
		var req services.UpdateProfileInput
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		user, err := authService.UpdateProfile(c.Context(), c.Locals("user_id").(string), req)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(user)
	})

	secured.Get("/users/search", authService.SearchUsers)

	secured.Get("/users/:id", func(c *fiber.Ctx) error {
		user, err := authService.GetUser(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(user)
	})

	secured.Post("/presence/heartbeat", func(c *fiber.Ctx) error {
		if err := presence.Heartbeat(c.Context(), c.Locals("user_id").(string)); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	secured.Get("/presence/online", func(c *fiber.Ctx) error {
		users, err := presence.OnlineUsers(c.Context())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"online": users, "count": len(users)})
	})

	admin := app.Group("/admin", middleware.AuthMiddleware(), middleware.RequireRole("admin"))

	admin.Put("/users/:id/role", func(c *fiber.Ctx) error {
		var req struct {
			Role string `json:"role"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		user, err := authService.SetRole(c.Context(), c.Params("id"), req.Role)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(user)
	})
}

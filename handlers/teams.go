package handlers

import (
	"github.com/gofiber/fiber/v2"

	"hackathon-platform/middleware"
	"hackathon-platform/services"
)

func SetupTeamRoutes(app *fiber.App, teamService *services.TeamService) {
	app.Get("/hackathons/:id/teams", func(c *fiber.Ctx) error {
		teams, err := teamService.ListTeams(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(teams)
	})

	app.Get("/teams/:id", func(c *fiber.Ctx) error {
		team, err := teamService.GetTeam(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(team)
	})

	secured := app.Group("/teams", middleware.AuthMiddleware())

	secured.Post("/", func(c *fiber.Ctx) error {
		var req services.TeamInput
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		team, err := teamService.CreateTeam(c.Context(), c.Locals("user_id").(string), req)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(team)
	})

	secured.Post("/:id/join", func(c *fiber.Ctx) error {
		team, err := teamService.JoinTeam(c.Context(), c.Params("id"), c.Locals("user_id").(string))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(team)
	})

	secured.Post("/:id/leave", func(c *fiber.Ctx) error {
		if err := teamService.LeaveTeam(c.Context(), c.Params("id"), c.Locals("user_id").(string)); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"hackathon-platform/middleware"
	"hackathon-platform/services"
)

func SetupHackathonRoutes(app *fiber.App, hackathonService *services.HackathonService) {
	app.Get("/hackathons", func(c *fiber.Ctx) error {
		f := services.HackathonFilter{
			Status:   c.Query("status"),
			Featured: c.QueryBool("featured"),
			Page:     c.QueryInt("page", 1),
			Size:     c.QueryInt("size", 20),
		}
		hackathons, err := hackathonService.ListHackathons(c.Context(), f)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(hackathons)
	})

	app.Get("/hackathons/:idOrSlug", func(c *fiber.Ctx) error {
		h, err := hackathonService.GetHackathon(c.Context(), c.Params("idOrSlug"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(h)
	})

	organizer := app.Group("/hackathons", middleware.AuthMiddleware(), middleware.RequireRole("organizer", "admin"))

	organizer.Post("/", func(c *fiber.Ctx) error {
		var req services.HackathonInput
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		h, err := hackathonService.CreateHackathon(c.Context(), c.Locals("user_id").(string), req)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(h)
	})

	organizer.Patch("/:id", func(c *fiber.Ctx) error {
		var req services.HackathonInput
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		h, err := hackathonService.UpdateHackathon(c.Context(), c.Params("id"), c.Locals("user_id").(string), req)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(h)
	})

	organizer.Post("/:id/publish", func(c *fiber.Ctx) error {
		h, err := hackathonService.Publish(c.Context(), c.Params("id"), c.Locals("user_id").(string))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(h)
	})

	organizer.Post("/:id/complete", func(c *fiber.Ctx) error {
		h, err := hackathonService.Complete(c.Context(), c.Params("id"), c.Locals("user_id").(string))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(h)
	})

	organizer.Post("/:id/challenges", func(c *fiber.Ctx) error {
		var req services.ChallengeInput
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		ch, err := hackathonService.AddChallenge(c.Context(), c.Params("id"), c.Locals("user_id").(string), req)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(ch)
	})

	organizer.Post("/:id/criteria", func(c *fiber.Ctx) error {
		var req services.CriterionInput
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		crit, err := hackathonService.AddCriterion(c.Context(), c.Params("id"), c.Locals("user_id").(string), req)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(crit)
	})

	organizer.Post("/:id/judges", func(c *fiber.Ctx) error {
		var req struct {
			UserID string `json:"user_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		assignment, err := hackathonService.AssignJudge(c.Context(), c.Params("id"), c.Locals("user_id").(string), req.UserID)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(assignment)
	})

	organizer.Post("/challenges/:challengeId/winner", func(c *fiber.Ctx) error {
		var req struct {
			TeamID string `json:"team_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		ch, err := hackathonService.AnnounceChallengeWinner(c.Context(), c.Params("challengeId"), c.Locals("user_id").(string), req.TeamID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(ch)
	})
}

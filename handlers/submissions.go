package handlers

import (
	"github.com/gofiber/fiber/v2"

	"hackathon-platform/middleware"
	"hackathon-platform/services"
)

func SetupSubmissionRoutes(app *fiber.App, submissionService *services.SubmissionService) {
	app.Get("/hackathons/:id/submissions", func(c *fiber.Ctx) error {
		subs, err := submissionService.ListByHackathon(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(subs)
	})

	app.Get("/submissions/:id", func(c *fiber.Ctx) error {
		sub, err := submissionService.GetSubmission(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(sub)
	})

	secured := app.Group("/submissions", middleware.AuthMiddleware())

	secured.Post("/", func(c *fiber.Ctx) error {
		var req services.SubmissionInput
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		sub, err := submissionService.CreateSubmission(c.Context(), c.Locals("user_id").(string), req)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sub)
	})

	secured.Patch("/:id", func(c *fiber.Ctx) error {
		var req services.SubmissionInput
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		sub, err := submissionService.UpdateSubmission(c.Context(), c.Params("id"), c.Locals("user_id").(string), req)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(sub)
	})

	secured.Post("/:id/attachment", submissionService.UploadAttachment)
}

package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"hackathon-platform/middleware"
	"hackathon-platform/services"
)

var errNotAssigned = errors.New("not assigned to this hackathon")

func SetupJudgingRoutes(app *fiber.App, judgingService *services.JudgingService, hackathonService *services.HackathonService, submissionService *services.SubmissionService) {
	judges := app.Group("/judging", middleware.AuthMiddleware(), middleware.RequireRole("judge", "admin"))

	// checkAssignment gates scoring to judges assigned to the
	// submission's hackathon.
	checkAssignment := func(c *fiber.Ctx, submissionID string) error {
		sub, err := submissionService.GetSubmission(c.Context(), submissionID)
		if err != nil {
			return err
		}
		assigned, err := hackathonService.IsAssignedJudge(c.Context(), sub.HackathonID, c.Locals("user_id").(string))
		if err != nil {
			return err
		}
		if !assigned {
			return errNotAssigned
		}
		return nil
	}

	failAssignment := func(c *fiber.Ctx, err error) error {
		if errors.Is(err, errNotAssigned) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		}
		return fail(c, err)
	}

	judges.Post("/submissions/:id/scores", func(c *fiber.Ctx) error {
		if err := checkAssignment(c, c.Params("id")); err != nil {
			return failAssignment(c, err)
		}
		var req struct {
			CriterionID string  `json:"criterion_id"`
			Value       float64 `json:"value"`
			Feedback    string  `json:"feedback"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		score, err := judgingService.RecordScore(c.Context(), services.ScoreInput{
			SubmissionID: c.Params("id"),
			JudgeID:      c.Locals("user_id").(string),
			CriterionID:  req.CriterionID,
			Value:        req.Value,
			Feedback:     req.Feedback,
		})
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(score)
	})

	judges.Put("/submissions/:id/scores/:criterionId", func(c *fiber.Ctx) error {
		if err := checkAssignment(c, c.Params("id")); err != nil {
			return failAssignment(c, err)
		}
		var req struct {
			Value    float64 `json:"value"`
			Feedback string  `json:"feedback"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		score, err := judgingService.UpdateScore(c.Context(), services.ScoreInput{
			SubmissionID: c.Params("id"),
			JudgeID:      c.Locals("user_id").(string),
			CriterionID:  c.Params("criterionId"),
			Value:        req.Value,
			Feedback:     req.Feedback,
		})
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(score)
	})

	judges.Delete("/submissions/:id/scores/:criterionId", func(c *fiber.Ctx) error {
		if err := checkAssignment(c, c.Params("id")); err != nil {
			return failAssignment(c, err)
		}
		err := judgingService.DeleteScore(c.Context(), c.Params("id"), c.Locals("user_id").(string), c.Params("criterionId"))
		if err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	judges.Get("/submissions/:id/scores", func(c *fiber.Ctx) error {
		scores, err := judgingService.SubmissionScores(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(scores)
	})

	organizer := app.Group("/judging", middleware.AuthMiddleware(), middleware.RequireRole("organizer", "admin"))

	organizer.Post("/hackathons/:id/rankings", func(c *fiber.Ctx) error {
		ranked, err := judgingService.CalculateRankings(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"ranked": ranked})
	})
}

package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"hackathon-platform/middleware"
	"hackathon-platform/models"
	"hackathon-platform/services"
	"hackathon-platform/workers"
)

func SetupGamificationRoutes(app *fiber.App, gamification *services.GamificationService, rdb *redis.Client) {
	secured := app.Group("/gamification", middleware.AuthMiddleware())

	secured.Get("/profile", func(c *fiber.Ctx) error {
		view, err := gamification.GetProfile(c.Context(), c.Locals("user_id").(string))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(view)
	})

	secured.Get("/users/:id/profile", func(c *fiber.Ctx) error {
		view, err := gamification.GetProfile(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(view)
	})

	app.Get("/gamification/leaderboard", func(c *fiber.Ctx) error {
		q := services.LeaderboardQuery{
			Scope:   c.Query("scope", services.ScopeGlobal),
			Period:  c.Query("period", services.PeriodAll),
			ScopeID: c.Query("hackathon_id"),
			Limit:   c.QueryInt("limit", 50),
		}

		// The warmed global board serves straight from cache.
		if q.Scope == services.ScopeGlobal && q.Period == services.PeriodAll {
			if cached, err := rdb.Get(c.Context(), workers.LeaderboardCacheKey).Bytes(); err == nil {
				var entries []services.RankedEntry
				if json.Unmarshal(cached, &entries) == nil {
					if q.Limit > 0 && q.Limit < len(entries) {
						entries = entries[:q.Limit]
					}
					return c.JSON(entries)
				}
			}
		}

		entries, err := gamification.Leaderboard(c.Context(), q)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(entries)
	})

	admin := app.Group("/admin", middleware.AuthMiddleware(), middleware.RequireRole("admin"))

	admin.Post("/xp/grant", func(c *fiber.Ctx) error {
		var req struct {
			UserID   string         `json:"user_id"`
			Points   int64          `json:"points"`
			Reason   string         `json:"reason"`
			Metadata map[string]any `json:"metadata"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		meta := req.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		if req.Reason != "" {
			meta["reason"] = req.Reason
		}
		meta["granted_by"] = c.Locals("user_id").(string)
		prof, err := gamification.AwardXP(c.Context(), services.AwardXPInput{
			UserID:    req.UserID,
			EventType: models.EventAdminGrant,
			Points:    req.Points,
			Metadata:  meta,
		})
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(prof)
	})
}

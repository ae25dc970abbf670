package handlers

import (
	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/gofiber/fiber/v2"

	"hackathon-platform/search"
)

func SetupSearchRoutes(app *fiber.App, esClient *es.Client) {
	app.Get("/search", func(c *fiber.Ctx) error {
		q := c.Query("q")
		if q == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "q is required"})
		}

		var index string
		switch c.Query("index", "hackathons") {
		case "users":
			index = search.IdxUsers
		case "hackathons":
			index = search.IdxHackathons
		case "submissions":
			index = search.IdxSubmissions
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "index must be users, hackathons, or submissions"})
		}

		hits, err := search.Query(c.Context(), esClient, index, q, c.QueryInt("limit", 20))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"hits": hits})
	})
}

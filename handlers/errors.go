package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"hackathon-platform/services"
	"hackathon-platform/stores"
	"hackathon-platform/utils"
)

// fail maps service errors onto HTTP statuses: missing records are 404,
// validation failures 400, bad credentials 401, everything else a logged
// 500 with the detail kept server-side.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, stores.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	default:
		utils.Sugar.Errorw("request failed", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

func badJSON(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
}

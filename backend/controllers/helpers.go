package controllers

import (
	"strconv"

	"github.com/coder7564-glitch/Learning-Hub/backend/models"
	"github.com/gofiber/fiber/v2"
)

// currentUser returns the user stashed by the auth middleware.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.Atoi(c.Params(name))
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

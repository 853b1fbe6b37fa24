package handlers

import (
	"github.com/crosspost-labs/crosspost/internal/service"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	s service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{s: service}
}

// InitProfile is called by the identity provider right after registration.
func (h *UserHandler) InitProfile(c *fiber.Ctx) error {
	userID := GetUserID(c)

	if err := h.s.InitProfile(c.Context(), userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to initialize profile",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *UserHandler) GetUserInfo(c *fiber.Ctx) error {
	userID := GetUserID(c)

	profile, err := h.s.GetProfile(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Profile not found",
		})
	}

	return c.Status(fiber.StatusOK).JSON(profile)
}

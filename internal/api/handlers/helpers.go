package handlers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// GetUserID reads the user id the auth middleware stored in Locals. A claim
// that is not a positive integer yields 0, which every service rejects.
func GetUserID(c *fiber.Ctx) int64 {
	raw, ok := c.Locals("user_id").(string)
	if !ok {
		return 0
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID < 0 {
		log.Printf("Invalid user_id claim %q: %v", raw, err)
		return 0
	}

	return userID
}

package handlers

import (
	"io"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userIDFor runs GetUserID inside a real request with the given Locals claim
// and returns the extracted id.
func userIDFor(t *testing.T, claim any) int64 {
	t.Helper()

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		if claim != nil {
			c.Locals("user_id", claim)
		}
		return c.SendString(strconv.FormatInt(GetUserID(c), 10))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	id, err := strconv.ParseInt(string(body), 10, 64)
	require.NoError(t, err)
	return id
}

func TestGetUserID(t *testing.T) {
	assert.Equal(t, int64(42), userIDFor(t, "42"))
}

func TestGetUserIDInvalidClaim(t *testing.T) {
	assert.Zero(t, userIDFor(t, "not-a-number"))
	assert.Zero(t, userIDFor(t, "-5"))
	assert.Zero(t, userIDFor(t, nil))
	assert.Zero(t, userIDFor(t, 42)) // non-string claim
}

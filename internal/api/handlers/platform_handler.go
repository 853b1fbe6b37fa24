package handlers

import (
	"fmt"
	"log"
	"net/url"

	config "github.com/crosspost-labs/crosspost/configs"
	"github.com/crosspost-labs/crosspost/internal/service"
	"github.com/gofiber/fiber/v2"
)

type PlatformHandler struct {
	ps  service.PlatformService
	fb  service.FacebookService
	ig  service.InstagramService
	li  service.LinkedinService
	cfg config.Config
}

func NewPlatformHandler(ps service.PlatformService, fb service.FacebookService, ig service.InstagramService, li service.LinkedinService, cfg config.Config) *PlatformHandler {
	return &PlatformHandler{
		ps:  ps,
		fb:  fb,
		ig:  ig,
		li:  li,
		cfg: cfg,
	}
}

func (h *PlatformHandler) AddSocialAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)

	authURL, err := h.ps.GetAuthURL(c.Context(), c.Params("platform"), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unsupported platform",
		})
	}

	return c.Redirect(authURL)
}

// CallbackHandler finishes the OAuth flow for one platform and sends the
// browser back to the dashboard. Errors never leave a partial account
// behind; they only change the redirect's status query.
func (h *PlatformHandler) CallbackHandler(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	platform := c.Params("platform")
	userID := GetUserID(c)

	var err error
	switch platform {
	case "facebook":
		err = h.fb.Callback(c.Context(), code, userID)
	case "instagram":
		err = h.ig.Callback(c.Context(), code, userID)
	case "linkedin":
		err = h.li.Callback(c.Context(), code, state, userID)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unsupported platform",
		})
	}

	if err != nil {
		redirectURL := fmt.Sprintf("%s/dashboard/accounts?error=%s", h.cfg.FrontendURL, url.QueryEscape(err.Error()))
		return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
	}

	redirectURL := fmt.Sprintf("%s/dashboard/accounts?status=connected", h.cfg.FrontendURL)
	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

func (h *PlatformHandler) ListSocialAccounts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	accountList, err := h.ps.List(c.Context(), userID)
	if err != nil {
		log.Println(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch social accounts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(accountList)
}

func (h *PlatformHandler) DeleteSocialAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	platform := c.Query("platform")

	err := h.ps.Delete(c.Context(), userID, platform)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to delete social account",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

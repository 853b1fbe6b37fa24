package handlers

import (
	"mime/multipart"
	"strings"

	"github.com/crosspost-labs/crosspost/internal/service"
	"github.com/crosspost-labs/crosspost/internal/transfer"
	"github.com/gofiber/fiber/v2"
)

type PostHandler struct {
	s service.PostService
}

func NewPostHandler(service service.PostService) *PostHandler {
	return &PostHandler{s: service}
}

// CreatePost accepts the submission form and reports the aggregate outcome.
// Per-provider failures come back as warnings, not an error status.
func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	message := c.FormValue("message")
	imageURL := c.FormValue("image_url")
	platforms := splitPlatforms(c.FormValue("platforms"))

	var file *multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		if files := form.File["image"]; len(files) > 0 {
			file = files[0]
		}
		if values := form.Value["platforms"]; len(values) > 1 {
			platforms = values
		}
	}

	summary, err := h.s.CreatePost(c.Context(), userID, &transfer.PostCreation{
		Message:   message,
		ImageURL:  imageURL,
		Platforms: platforms,
	}, file)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}

func splitPlatforms(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	platforms := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			platforms = append(platforms, p)
		}
	}
	return platforms
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	if postID != 0 {
		post, err := h.s.PostInfo(c.Context(), int64(postID), userID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unable to list posts",
			})
		}

		return c.Status(fiber.StatusOK).JSON(post)
	}

	posts, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	err := h.s.Remove(c.Context(), userID, int64(postID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove post",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

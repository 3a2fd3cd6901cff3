package controllers

import (
	"context"
	"io"
	"strconv"
	"time"

	"Backend-Feedback/src/apperror"
	"Backend-Feedback/src/middleware"
	"Backend-Feedback/src/models"

	"github.com/gofiber/fiber/v2"
)

// DefaultRequestTimeout bounds every service call made by a handler.
var DefaultRequestTimeout = 10 * time.Second

func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), DefaultRequestTimeout)
}

func identityOf(c *fiber.Ctx) (models.Identity, error) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return models.Identity{}, apperror.Unauthorized("authentication required")
	}
	return identity, nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.Validation("invalid request body", err.Error())
	}
	return nil
}

// pagination reads ?page=&limit=. Missing or malformed values fall back to
// the defaults.
func pagination(c *fiber.Ctx) models.PaginationParams {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(models.DefaultPageLimit)))
	return models.PaginationParams{Page: page, Limit: limit}.Normalize()
}

// uploadedImages reads the "images" (or "images[]") multipart files into memory.
func uploadedImages(c *fiber.Ctx) ([]models.ImageUpload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// not multipart, so no files
		return nil, nil
	}
	files := append(form.File["images"], form.File["images[]"]...)
	uploads := make([]models.ImageUpload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, apperror.Validation("failed to read upload", fh.Filename+" could not be read")
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, apperror.Validation("failed to read upload", fh.Filename+" could not be read")
		}
		uploads = append(uploads, models.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return uploads, nil
}

// error_utils.go
package utils

import (
	"log"

	"Backend-Feedback/src/apperror"
	"Backend-Feedback/src/models"

	"github.com/gofiber/fiber/v2"
)

// HandleError writes err as the failure envelope. Unknown errors become a
// generic 500 and their detail only goes to the log.
func HandleError(c *fiber.Ctx, err error) error {
	if appErr, ok := apperror.As(err); ok {
		status := appErr.Kind.HTTPStatus()
		if status >= fiber.StatusInternalServerError {
			log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
		}
		fields := appErr.Fields
		if fields == nil {
			fields = []string{}
		}
		return c.Status(status).JSON(models.ErrorResponse{
			StatusCode: status,
			Message:    appErr.Message,
			Errors:     fields,
		})
	}

	log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		StatusCode: fiber.StatusInternalServerError,
		Message:    "internal server error",
		Errors:     []string{},
	})
}

// Respond writes the success envelope.
func Respond(c *fiber.Ctx, status int, data interface{}, message string) error {
	return c.Status(status).JSON(models.ApiResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
	})
}

// FiberErrorHandler renders errors that escape handlers, including Fiber's
// own 404/405 and body-limit errors.
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(models.ErrorResponse{
			StatusCode: fe.Code,
			Message:    fe.Message,
			Errors:     []string{},
		})
	}
	return HandleError(c, err)
}

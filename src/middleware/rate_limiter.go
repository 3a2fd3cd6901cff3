package middleware

import (
	"time"

	"Backend-Feedback/src/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func ipLimiter(max int, window time.Duration, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				StatusCode: fiber.StatusTooManyRequests,
				Message:    message,
				Errors:     []string{},
			})
		},
	})
}

// RegisterRateLimiter จำกัดการสมัครสมาชิกต่อ IP
func RegisterRateLimiter() fiber.Handler {
	return ipLimiter(10, 5*time.Minute, "too many registration attempts, please wait a few minutes")
}

// SubmitRateLimiter caps response submissions per IP.
func SubmitRateLimiter() fiber.Handler {
	return ipLimiter(60, time.Minute, "too many requests, please try again later")
}

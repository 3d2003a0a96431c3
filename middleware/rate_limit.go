package middleware

import (
	"log/slog"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"shop-bot/services"
)

// RateLimit rejects requests whose client key exceeds the gateway's limits,
// carrying a retry-after hint in both the body and the standard header.
func RateLimit(limiter *services.RateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowed, retryAfter := limiter.Allow(c.IP())
		if allowed {
			return c.Next()
		}

		seconds := int(math.Ceil(retryAfter.Seconds()))
		if seconds < 1 {
			seconds = 1
		}

		slog.Info("Request rate limited", "ip", c.IP(), "retryAfterSeconds", seconds)
		c.Set("Retry-After", strconv.Itoa(seconds))
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":       "Too many requests, please slow down",
			"retry_after": seconds,
		})
	}
}

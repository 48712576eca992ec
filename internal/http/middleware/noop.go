package middleware

import "github.com/gofiber/fiber/v2"

// Noop simply calls the next handler. It documents the middleware wiring
// point for consumers extending the skeleton.
func Noop() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Next()
	}
}

package middleware

import "github.com/gofiber/fiber/v2"

// NoIndex keeps tracking endpoints out of search results.
func NoIndex() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Robots-Tag", "noindex, nofollow")
		return c.Next()
	}
}

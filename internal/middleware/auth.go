package middleware

import (
	"strings"

	"github.com/adzone/adserver/internal/auth"
	"github.com/adzone/adserver/internal/config"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	AdminKeyHeader = "X-ADMIN-KEY"
	CtxAdminSID    = "admin_sid"
)

// AdminAuth admits requests carrying the admin key header or a Bearer token
// issued by /admin/login. With no ADMIN_KEY configured everything is admitted.
func AdminAuth(cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.AdminKey == "" {
			return c.Next()
		}

		if key := c.Get(AdminKeyHeader); key != "" {
			if auth.CheckAdminKey(cfg.AdminKey, key) {
				return c.Next()
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized: invalid X-ADMIN-KEY"})
		}

		authHeader := c.Get("Authorization")
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if authHeader == "" || tokenStr == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized: invalid X-ADMIN-KEY"})
		}

		claims, err := auth.ParseJWT(cfg.JWTSecret, tokenStr)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}
		c.Locals(CtxAdminSID, claims.SessionID.String())
		return c.Next()
	}
}

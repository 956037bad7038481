package middleware

import (
	"strings"

	"nomorebugs-admin/internal/apperr"
	"nomorebugs-admin/internal/config"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalAdminID = "admin_id"
	LocalName    = "full_name"
	LocalEmail   = "email"
	LocalToken   = "token"
)

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"code":    apperr.CodeUnauthorized,
	})
}

func JWTAuth(tokens *config.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "Missing authorization header")
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return unauthorized(c, "Invalid authorization format")
		}

		claims, err := tokens.ValidateToken(tokenParts[1])
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(LocalAdminID, claims.AdminID)
		c.Locals(LocalName, claims.FullName)
		c.Locals(LocalEmail, claims.Email)
		c.Locals(LocalToken, tokenParts[1])

		return c.Next()
	}
}

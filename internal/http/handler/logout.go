package handler

import (
	"nomorebugs-admin/internal/http/middleware"

	"github.com/gofiber/fiber/v2"
)

// Logout is stateless; the client discards its token.
func (h *Handler) Logout(c *fiber.Ctx) error {
	h.log.Info("admin logged out", map[string]interface{}{
		"admin_id": c.Locals(middleware.LocalAdminID),
	})
	return ok(c, fiber.StatusOK, "Logged out", nil)
}

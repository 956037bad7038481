package handler

import (
	"nomorebugs-admin/internal/models"
	"nomorebugs-admin/internal/store"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) ListCustomers(c *fiber.Ctx) error {
	customers, err := h.store.ListCustomers(c.UserContext(), c.Query("status"))
	if err != nil {
		return h.fail(c, store.AsAppError("customer", "", err))
	}
	return ok(c, fiber.StatusOK, "", customers)
}

func (h *Handler) SetCustomerStatus(c *fiber.Ctx) error {
	var req models.UpdateCustomerStatusRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}

	id := c.Params("id")
	if err := h.store.SetCustomerStatus(c.UserContext(), id, req.Status); err != nil {
		return h.fail(c, store.AsAppError("customer", id, err))
	}
	return ok(c, fiber.StatusOK, "Customer is now "+req.Status, fiber.Map{"id": id, "status": req.Status})
}

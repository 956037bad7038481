package handler

import (
	"nomorebugs-admin/internal/models"
	"nomorebugs-admin/internal/store"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) ListRequests(c *fiber.Ctx) error {
	requests, err := h.store.ListRequests(c.UserContext(), models.RequestFilter{
		PaymentStatus: c.Query("paymentStatus"),
		Search:        c.Query("search"),
	})
	if err != nil {
		return h.fail(c, store.AsAppError("service request", "", err))
	}
	return ok(c, fiber.StatusOK, "", requests)
}

// ApproveRequest queues a request for payment approval.
func (h *Handler) ApproveRequest(c *fiber.Ctx) error {
	record, err := h.dispatch.QueueForApproval(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, fiber.StatusCreated, "Request queued for payment approval", record)
}

func (h *Handler) DeleteRequest(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.store.DeleteRequest(c.UserContext(), id); err != nil {
		return h.fail(c, store.AsAppError("service request", id, err))
	}
	return ok(c, fiber.StatusOK, "Request deleted", nil)
}

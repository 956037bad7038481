package handler

import (
	"nomorebugs-admin/internal/store"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) ListWorkers(c *fiber.Ctx) error {
	workers, err := h.store.ListWorkers(c.UserContext(), c.Query("status"))
	if err != nil {
		return h.fail(c, store.AsAppError("worker", "", err))
	}
	return ok(c, fiber.StatusOK, "", workers)
}

func (h *Handler) VerifyWorker(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.store.VerifyWorker(c.UserContext(), id); err != nil {
		return h.fail(c, store.AsAppError("worker", id, err))
	}
	h.log.Info("worker verified", map[string]interface{}{"worker_id": id})
	return ok(c, fiber.StatusOK, "Worker verified", nil)
}

// FireWorker removes a worker from the roster.
func (h *Handler) FireWorker(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.store.DeleteWorker(c.UserContext(), id); err != nil {
		return h.fail(c, store.AsAppError("worker", id, err))
	}
	h.log.Info("worker removed", map[string]interface{}{"worker_id": id})
	return ok(c, fiber.StatusOK, "Worker removed", nil)
}

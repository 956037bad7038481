package handler

import (
	"nomorebugs-admin/internal/dispatch"
	"nomorebugs-admin/internal/models"
	"nomorebugs-admin/internal/store"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) ListPayments(c *fiber.Ctx) error {
	records, err := h.store.ListPaymentRecords(c.UserContext())
	if err != nil {
		return h.fail(c, store.AsAppError("payment record", "", err))
	}
	return ok(c, fiber.StatusOK, "", records)
}

func (h *Handler) ApprovePayment(c *fiber.Ctx) error {
	var req models.ApprovePaymentRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}

	approval, err := h.dispatch.ApprovePayment(c.UserContext(), c.Params("id"), dispatch.ApproveInput{
		Amount: req.Amount,
		SlipID: req.SlipID,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, fiber.StatusCreated, approval.Job.StatusLabel(), approval)
}

func (h *Handler) ListApprovedPayments(c *fiber.Ctx) error {
	approved, err := h.store.ListApprovedPayments(c.UserContext())
	if err != nil {
		return h.fail(c, store.AsAppError("approved payment", "", err))
	}
	return ok(c, fiber.StatusOK, "", approved)
}

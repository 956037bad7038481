package handler

import (
	"nomorebugs-admin/internal/dispatch"
	"nomorebugs-admin/internal/document"
	"nomorebugs-admin/internal/models"
	"nomorebugs-admin/internal/store"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) ListJobs(c *fiber.Ctx) error {
	jobs, err := h.dispatch.Jobs(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", jobs)
}

func (h *Handler) GetJob(c *fiber.Ctx) error {
	job, err := h.dispatch.Job(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, fiber.StatusOK, job.StatusLabel(), job)
}

func (h *Handler) AssignWorker(c *fiber.Ctx) error {
	var req models.AssignWorkerRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}

	job, err := h.dispatch.ManuallyAssign(c.UserContext(), c.Params("id"), dispatch.WorkerSelection{
		WorkerID:   req.WorkerID,
		WorkerName: req.WorkerName,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, fiber.StatusOK, job.StatusLabel(), job)
}

// ConfirmDispatch reports success even when the confirmation PDF could not be
// rendered; the warning tells the admin to download it later.
func (h *Handler) ConfirmDispatch(c *fiber.Ctx) error {
	conf, err := h.dispatch.ConfirmDispatch(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}

	data := fiber.Map{
		"job":    conf.Job,
		"record": conf.Record,
		"worker": conf.Worker,
	}
	if conf.RenderErr != nil {
		data["warning"] = "Dispatch confirmed but the confirmation document could not be generated"
	}
	return ok(c, fiber.StatusOK, "Dispatch confirmed. PIN "+conf.Job.PIN, data)
}

func (h *Handler) DispatchDocument(c *fiber.Ctx) error {
	id := c.Params("id")
	pdf, err := h.dispatch.ConfirmationDocument(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return sendPDF(c, document.ConfirmationFilename(id), pdf)
}

func (h *Handler) NotifyCustomer(c *fiber.Ctx) error {
	n, err := h.dispatch.NotifyCustomer(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, fiber.StatusOK, "Customer notified", n)
}

func (h *Handler) NotifyWorker(c *fiber.Ctx) error {
	n, err := h.dispatch.NotifyWorker(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, fiber.StatusOK, "Worker notified", n)
}

func (h *Handler) ListDispatchRecords(c *fiber.Ctx) error {
	records, err := h.store.ListDispatchRecords(c.UserContext())
	if err != nil {
		return h.fail(c, store.AsAppError("dispatch record", "", err))
	}
	return ok(c, fiber.StatusOK, "", records)
}

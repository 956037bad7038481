package handler

import (
	"nomorebugs-admin/internal/apperr"
	"nomorebugs-admin/internal/dispatch"
	"nomorebugs-admin/internal/document"
	"nomorebugs-admin/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Quotation renders a quotation PDF for download. The amount goes through
// the same rules as a payment approval.
func (h *Handler) Quotation(c *fiber.Ctx) error {
	var req models.QuotationRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}

	amount, err := dispatch.ParseAmount(req.Amount, h.currency)
	if err != nil {
		return h.fail(c, err)
	}

	pdf, err := h.docs.Quotation(document.Quotation{
		CustomerName: req.CustomerName,
		Address:      req.Address,
		Date:         req.Date,
		Time:         req.Time,
		AmPm:         req.AmPm,
		Amount:       amount,
		Currency:     h.currency,
		Description:  req.Description,
	})
	if err != nil {
		return h.fail(c, apperr.Render("quotation", err))
	}
	return sendPDF(c, document.QuotationFilename(req.CustomerName), pdf)
}

package handler

import (
	"io"

	"nomorebugs-admin/internal/apperr"
	"nomorebugs-admin/internal/mail"
	"nomorebugs-admin/internal/metrics"
	"nomorebugs-admin/internal/models"

	"github.com/gofiber/fiber/v2"
)

const maxAttachmentSize = 10 << 20

// SendMail sends a free-form message with an optional attachment, posted as
// multipart form data.
func (h *Handler) SendMail(c *fiber.Ctx) error {
	var req models.SendMailRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err)
	}

	msg := mail.Message{To: req.To, Subject: req.Subject, Text: req.Text}

	if fh, err := c.FormFile("attachment"); err == nil {
		if fh.Size > maxAttachmentSize {
			return h.fail(c, apperr.Validation("attachment exceeds 10 MB"))
		}
		f, err := fh.Open()
		if err != nil {
			return h.fail(c, apperr.Validation("could not read attachment"))
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return h.fail(c, apperr.Validation("could not read attachment"))
		}
		msg.Attachments = append(msg.Attachments, mail.Attachment{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Content:     content,
		})
	}

	if err := h.mailer.Send(c.UserContext(), msg); err != nil {
		metrics.NotificationsSent.WithLabelValues("admin", "email", "failed").Inc()
		return h.fail(c, apperr.Delivery("email", err))
	}
	metrics.NotificationsSent.WithLabelValues("admin", "email", "sent").Inc()

	return ok(c, fiber.StatusOK, "Email sent successfully", fiber.Map{
		"to":          req.To,
		"attachments": len(msg.Attachments),
	})
}

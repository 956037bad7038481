package dispatch

import (
	"context"
	"fmt"
	"strings"

	"nomorebugs-admin/internal/apperr"
	"nomorebugs-admin/internal/document"
	"nomorebugs-admin/internal/mail"
	"nomorebugs-admin/internal/metrics"
	"nomorebugs-admin/internal/models"
)

const (
	recipientCustomer = "customer"
	recipientWorker   = "worker"
)

// Notification reports what was delivered.
type Notification struct {
	JobID     string   `json:"jobId"`
	Recipient string   `json:"recipient"`
	Channels  []string `json:"channels"`
}

// NotifyCustomer mails the customer the PIN and the technician's name.
func (c *Controller) NotifyCustomer(ctx context.Context, jobID string) (Notification, error) {
	job, err := c.dispatchedJob(ctx, jobID)
	if err != nil {
		return Notification{}, err
	}
	to := strings.TrimSpace(job.CustomerEmail)
	if to == "" {
		return Notification{}, apperr.Validation("customer email is not known for this job")
	}

	msg := mail.Message{
		To:      to,
		Subject: "Your No More Bugs technician is on the way",
		Text:    customerBody(job),
	}
	if err := c.mailer.Send(ctx, msg); err != nil {
		return Notification{}, c.deliveryFailed(job, recipientCustomer, "mail", err)
	}

	c.delivered(job, recipientCustomer, "mail", to)
	return Notification{JobID: job.ID, Recipient: to, Channels: []string{"mail"}}, nil
}

// NotifyWorker mails the worker the job details with the confirmation PDF
// attached, and texts the PIN when SMS is enabled.
func (c *Controller) NotifyWorker(ctx context.Context, jobID string) (Notification, error) {
	job, err := c.dispatchedJob(ctx, jobID)
	if err != nil {
		return Notification{}, err
	}

	contact := c.workerContact(ctx, job)
	to := strings.TrimSpace(firstNonEmpty(job.WorkerEmail, contact.Email))
	if to == "" {
		return Notification{}, apperr.Validation("worker email is not known for this job")
	}

	doc, err := c.render(job, contact)
	if err != nil {
		return Notification{}, err
	}

	msg := mail.Message{
		To:      to,
		Subject: fmt.Sprintf("Dispatch %s: %s for %s", job.ID, serviceName(job), job.CustomerName),
		Text:    workerBody(job, contact),
		Attachments: []mail.Attachment{{
			Filename:    document.ConfirmationFilename(job.ID),
			ContentType: "application/pdf",
			Content:     doc,
		}},
	}
	if err := c.mailer.Send(ctx, msg); err != nil {
		return Notification{}, c.deliveryFailed(job, recipientWorker, "mail", err)
	}
	c.delivered(job, recipientWorker, "mail", to)
	channels := []string{"mail"}

	mobile := firstNonEmpty(job.WorkerMobile, contact.Contact)
	if c.cfg.SMSEnabled && c.texter != nil && mobile != "" && mobile != placeholderContact {
		text := fmt.Sprintf("No More Bugs: job %s, %s at %s. Customer PIN %s.",
			job.ID, serviceName(job), firstNonEmpty(job.Address, job.Location), job.PIN)
		if err := c.texter.Send(ctx, mobile, text); err != nil {
			return Notification{}, c.deliveryFailed(job, recipientWorker, "sms", err)
		}
		c.delivered(job, recipientWorker, "sms", mobile)
		channels = append(channels, "sms")
	}

	return Notification{JobID: job.ID, Recipient: to, Channels: channels}, nil
}

func (c *Controller) dispatchedJob(ctx context.Context, jobID string) (models.DispatchJob, error) {
	job, err := c.Job(ctx, jobID)
	if err != nil {
		return models.DispatchJob{}, err
	}
	if !job.IsDispatched || job.PIN == "" {
		return models.DispatchJob{}, apperr.Conflict("confirm the dispatch before notifying")
	}
	return job, nil
}

func (c *Controller) deliveryFailed(job models.DispatchJob, recipient, channel string, err error) error {
	metrics.NotificationsSent.WithLabelValues(recipient, channel, "failed").Inc()
	c.log.Error("notification failed", map[string]interface{}{
		"jobId":     job.ID,
		"recipient": recipient,
		"channel":   channel,
		"error":     err.Error(),
	})
	return apperr.Delivery(channel, err)
}

func (c *Controller) delivered(job models.DispatchJob, recipient, channel, to string) {
	metrics.NotificationsSent.WithLabelValues(recipient, channel, "sent").Inc()
	c.log.Info("notification sent", map[string]interface{}{
		"jobId":     job.ID,
		"recipient": recipient,
		"channel":   channel,
		"to":        to,
	})
}

func serviceName(job models.DispatchJob) string {
	return firstNonEmpty(job.ServiceType, "Pest control")
}

func customerBody(job models.DispatchJob) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", firstNonEmpty(job.CustomerName, "Customer"))
	fmt.Fprintf(&b, "Your %s service has been dispatched.\n\n", serviceName(job))
	fmt.Fprintf(&b, "Technician: %s\n", job.WorkerName)
	fmt.Fprintf(&b, "Service address: %s\n", firstNonEmpty(job.Address, job.Location))
	fmt.Fprintf(&b, "Verification PIN: %s\n\n", job.PIN)
	b.WriteString("Please ask the technician for this PIN when they arrive and do not share it with anyone else.\n\n")
	b.WriteString("Best Regards,\nNo More Bugs Team")
	return b.String()
}

func workerBody(job models.DispatchJob, contact WorkerContact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", contact.Name)
	fmt.Fprintf(&b, "You have been dispatched to job %s.\n\n", job.ID)
	fmt.Fprintf(&b, "Customer: %s\n", job.CustomerName)
	fmt.Fprintf(&b, "Address: %s\n", firstNonEmpty(job.Address, job.Location))
	if job.Mobile != "" {
		fmt.Fprintf(&b, "Customer contact: %s\n", job.Mobile)
	}
	fmt.Fprintf(&b, "Service: %s\n", serviceName(job))
	fmt.Fprintf(&b, "Customer PIN: %s\n\n", job.PIN)
	b.WriteString("The dispatch confirmation is attached. The customer will ask you for the PIN on arrival.\n\n")
	b.WriteString("Best Regards,\nNo More Bugs Team")
	return b.String()
}

package dispatch

import (
	"context"
	"errors"
	"strings"

	"nomorebugs-admin/internal/apperr"
	"nomorebugs-admin/internal/document"
	"nomorebugs-admin/internal/metrics"
	"nomorebugs-admin/internal/models"
	"nomorebugs-admin/internal/store"
)

const (
	placeholderWorkerName = "Assigned Technician"
	placeholderContact    = "N/A"
)

// WorkerContact is the worker identity printed on a confirmation.
type WorkerContact struct {
	Name        string `json:"name"`
	Contact     string `json:"contact"`
	Email       string `json:"email"`
	Placeholder bool   `json:"placeholder"`
}

type Confirmation struct {
	Job      models.DispatchJob    `json:"job"`
	Record   models.DispatchRecord `json:"record"`
	Worker   WorkerContact         `json:"worker"`
	Document []byte                `json:"-"`
	// RenderErr is set when the dispatch went through but the document
	// could not be produced.
	RenderErr error `json:"-"`
}

// ConfirmDispatch issues a PIN, persists the dispatch record and marks the
// job Dispatched.
func (c *Controller) ConfirmDispatch(ctx context.Context, jobID string) (Confirmation, error) {
	job, err := c.Job(ctx, jobID)
	if err != nil {
		return Confirmation{}, err
	}
	if job.IsDispatched || job.State == models.StateDispatched {
		return Confirmation{}, apperr.Conflict("job has already been dispatched")
	}
	if !job.HasWorker() {
		return Confirmation{}, apperr.Validation("assign a worker before confirming dispatch")
	}

	contact := c.workerContact(ctx, job)

	record, err := c.dispatchRecord(ctx, job, contact)
	if err != nil {
		return Confirmation{}, err
	}
	job.State = models.StateDispatched
	job.IsDispatched = true
	job.PIN = record.PinCode
	job.WorkerName = firstNonEmpty(job.WorkerName, contact.Name)
	job.WorkerEmail = firstNonEmpty(job.WorkerEmail, contact.Email)
	if !contact.Placeholder {
		job.WorkerMobile = firstNonEmpty(job.WorkerMobile, contact.Contact)
	}
	job.UpdatedAt = c.now()

	if err := c.queue.Save(ctx, job); err != nil {
		return Confirmation{}, apperr.Store("update dispatch job", err)
	}

	conf := Confirmation{Job: job, Record: record, Worker: contact}
	conf.Document, err = c.render(job, contact)
	if err != nil {
		conf.RenderErr = err
		c.log.Error("dispatch confirmation not rendered", map[string]interface{}{
			"jobId": job.ID,
			"error": err.Error(),
		})
	}

	c.log.Info("dispatch confirmed", map[string]interface{}{
		"jobId":       job.ID,
		"recordId":    record.ID,
		"worker":      contact.Name,
		"placeholder": contact.Placeholder,
	})
	metrics.JobsDispatched.Inc()
	c.publish(EventJobDispatched, job)
	return conf, nil
}

// dispatchRecord returns the job's dispatch record, creating it with a fresh
// PIN on first confirmation. A retry after a failed job update reuses the
// stored record so the job never carries two PINs.
func (c *Controller) dispatchRecord(ctx context.Context, job models.DispatchJob, contact WorkerContact) (models.DispatchRecord, error) {
	existing, err := c.store.GetDispatchRecordByJob(ctx, job.ID)
	if err == nil {
		c.log.Info("reusing dispatch record", map[string]interface{}{
			"jobId":    job.ID,
			"recordId": existing.ID,
		})
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return models.DispatchRecord{}, apperr.Store("load dispatch record", err)
	}

	pin, err := c.newPIN()
	if err != nil {
		return models.DispatchRecord{}, err
	}

	record, err := c.store.CreateDispatchRecord(ctx, models.DispatchRecord{
		JobID:           job.ID,
		PinCode:         pin,
		WorkerName:      contact.Name,
		WorkerEmail:     contact.Email,
		CustomerName:    job.CustomerName,
		CustomerAddress: firstNonEmpty(job.Address, job.Location),
		ServiceType:     job.ServiceType,
	})
	if errors.Is(err, store.ErrDuplicate) {
		// Lost a race with a concurrent confirmation.
		record, err = c.store.GetDispatchRecordByJob(ctx, job.ID)
	}
	if err != nil {
		return models.DispatchRecord{}, apperr.Store("create dispatch record", err)
	}
	return record, nil
}

// ConfirmationDocument renders the confirmation PDF of a dispatched job.
func (c *Controller) ConfirmationDocument(ctx context.Context, jobID string) ([]byte, error) {
	job, err := c.Job(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.IsDispatched {
		return nil, apperr.Conflict("job has not been dispatched")
	}
	return c.render(job, c.workerContact(ctx, job))
}

func (c *Controller) render(job models.DispatchJob, contact WorkerContact) ([]byte, error) {
	doc, err := c.renderer.DispatchConfirmation(document.DispatchConfirmation{
		JobID:           job.ID,
		PIN:             job.PIN,
		WorkerName:      contact.Name,
		WorkerContact:   contact.Contact,
		WorkerEmail:     contact.Email,
		CustomerName:    job.CustomerName,
		CustomerAddress: firstNonEmpty(job.Address, job.Location),
		ServiceType:     job.ServiceType,
		IssuedAt:        job.UpdatedAt,
	})
	if err != nil {
		return nil, apperr.Render("dispatch confirmation", err)
	}
	return doc, nil
}

// workerContact looks the job's worker up in the roster by id, email, then
// name. Any failure or miss yields a placeholder identity so confirmation
// is never blocked by a stale roster.
func (c *Controller) workerContact(ctx context.Context, job models.DispatchJob) WorkerContact {
	placeholder := WorkerContact{
		Name:        firstNonEmpty(job.WorkerName, placeholderWorkerName),
		Contact:     firstNonEmpty(job.WorkerMobile, placeholderContact),
		Email:       firstNonEmpty(job.WorkerEmail, c.cfg.DispatchMailbox),
		Placeholder: true,
	}

	if job.WorkerID != "" {
		if w, err := c.store.GetWorker(ctx, job.WorkerID); err == nil {
			return contactOf(w)
		}
	}

	roster, err := c.store.ListWorkers(ctx, "")
	if err != nil {
		c.log.Warn("roster unavailable, using placeholder worker", map[string]interface{}{
			"jobId": job.ID,
			"error": err.Error(),
		})
		return placeholder
	}
	if job.WorkerEmail != "" {
		for _, w := range roster {
			if strings.EqualFold(w.Email, job.WorkerEmail) {
				return contactOf(w)
			}
		}
	}
	if job.WorkerName != "" {
		for _, w := range roster {
			if w.FullName == job.WorkerName {
				return contactOf(w)
			}
		}
	}

	c.log.Warn("worker not on roster, using placeholder", map[string]interface{}{
		"jobId":  job.ID,
		"worker": job.WorkerName,
	})
	return placeholder
}

func contactOf(w models.Worker) WorkerContact {
	return WorkerContact{
		Name:    w.FullName,
		Contact: firstNonEmpty(w.Mobile, placeholderContact),
		Email:   w.Email,
	}
}

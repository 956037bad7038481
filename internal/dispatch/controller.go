// Package dispatch owns the lifecycle of a job from payment approval to a
// confirmed, PIN-bearing dispatch.
package dispatch

import (
	"context"
	"errors"
	"strings"
	"time"

	"nomorebugs-admin/internal/apperr"
	"nomorebugs-admin/internal/document"
	"nomorebugs-admin/internal/logger"
	"nomorebugs-admin/internal/mail"
	"nomorebugs-admin/internal/matching"
	"nomorebugs-admin/internal/metrics"
	"nomorebugs-admin/internal/models"
	"nomorebugs-admin/internal/sms"
	"nomorebugs-admin/internal/store"
)

// Board events published to the realtime hub.
const (
	EventJobCreated    = "job.created"
	EventJobUpdated    = "job.updated"
	EventJobDispatched = "job.dispatched"
)

// Store is the part of the record store the controller touches.
type Store interface {
	store.RequestStore
	store.WorkerStore
	store.PaymentStore
	store.DispatchStore
}

type Publisher interface {
	Publish(eventType string, data interface{})
}

type Renderer interface {
	DispatchConfirmation(d document.DispatchConfirmation) ([]byte, error)
}

type Config struct {
	Currency        string
	DispatchMailbox string
	SMSEnabled      bool
}

type Controller struct {
	store     Store
	queue     JobQueue
	slips     SlipSequence
	mailer    mail.Mailer
	texter    sms.Texter
	renderer  Renderer
	publisher Publisher
	log       logger.Logger
	cfg       Config
	now       func() time.Time
	newPIN    PINSource
}

type Option func(*Controller)

func WithTexter(t sms.Texter) Option {
	return func(c *Controller) { c.texter = t }
}

func WithPublisher(p Publisher) Option {
	return func(c *Controller) { c.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithPINSource(src PINSource) Option {
	return func(c *Controller) { c.newPIN = src }
}

func NewController(st Store, queue JobQueue, slips SlipSequence, mailer mail.Mailer, renderer Renderer, log logger.Logger, cfg Config, opts ...Option) *Controller {
	if cfg.Currency == "" {
		cfg.Currency = "LKR"
	}
	c := &Controller{
		store:    st,
		queue:    queue,
		slips:    slips,
		mailer:   mailer,
		renderer: renderer,
		log:      log.WithFields(map[string]interface{}{"component": "dispatch"}),
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
		newPIN:   GeneratePIN,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) publish(event string, job models.DispatchJob) {
	if c.publisher != nil {
		c.publisher.Publish(event, job)
	}
}

// QueueForApproval turns a service request into a payment record waiting
// for approval and marks the request's payment as approved.
func (c *Controller) QueueForApproval(ctx context.Context, requestID string) (models.PaymentRecord, error) {
	req, err := c.store.GetRequest(ctx, requestID)
	if err != nil {
		return models.PaymentRecord{}, store.AsAppError("service request", requestID, err)
	}
	switch req.PaymentStatus {
	case models.PaymentApproved, models.PaymentPaid:
		return models.PaymentRecord{}, apperr.Conflict("request payment is already " + strings.ToLower(req.PaymentStatus))
	}

	record, err := c.store.CreatePaymentRecord(ctx, models.PaymentRecord{
		RequestID:     req.ID,
		CustomerName:  req.Username,
		Email:         req.Email,
		PaymentStatus: models.PaymentApproved,
	})
	if err != nil {
		return models.PaymentRecord{}, store.AsAppError("payment record", req.ID, err)
	}

	if err := c.store.UpdateRequestPaymentStatus(ctx, req.ID, models.PaymentApproved); err != nil {
		return models.PaymentRecord{}, store.AsAppError("service request", req.ID, err)
	}

	c.log.Info("request queued for payment approval", map[string]interface{}{
		"requestId": req.ID,
		"paymentId": record.ID,
	})
	return record, nil
}

type ApproveInput struct {
	Amount string
	SlipID string
}

type Approval struct {
	Payment models.ApprovedPayment `json:"payment"`
	Job     models.DispatchJob     `json:"job"`
}

// ApprovePayment consumes a pending payment record, runs the matcher and
// enqueues the resulting dispatch job.
func (c *Controller) ApprovePayment(ctx context.Context, paymentID string, in ApproveInput) (Approval, error) {
	amount, err := FormatAmount(in.Amount, c.cfg.Currency)
	if err != nil {
		return Approval{}, err
	}

	record, err := c.store.GetPaymentRecord(ctx, paymentID)
	if err != nil {
		return Approval{}, store.AsAppError("payment record", paymentID, err)
	}

	req := c.originatingRequest(ctx, record)

	roster, err := c.store.ListWorkers(ctx, "")
	if err != nil {
		return Approval{}, apperr.Store("list workers", err)
	}

	slipID, err := c.slipID(ctx, in.SlipID, record.SlipID)
	if err != nil {
		return Approval{}, err
	}

	approved, err := c.store.ConsumePaymentRecord(ctx, paymentID, models.ApprovedPayment{
		SlipID:        slipID,
		CustomerName:  record.CustomerName,
		Email:         record.Email,
		Amount:        amount,
		PaymentStatus: models.PaymentApproved,
	})
	if err != nil {
		return Approval{}, store.AsAppError("payment record", paymentID, err)
	}

	result := matching.Match(req, roster)
	now := c.now()
	job := models.DispatchJob{
		ID:            slipID,
		RequestID:     req.ID,
		CustomerName:  firstNonEmpty(record.CustomerName, req.Username),
		CustomerEmail: firstNonEmpty(record.Email, req.Email),
		Location:      req.City,
		Address:       req.FullAddress(),
		PostalCode:    req.PostalCode,
		Mobile:        req.ContactNo,
		ServiceType:   req.BugType,
		Amount:        amount,
		State:         models.StateManualAssignmentNeeded,
		Rationale: &models.MatchRationale{
			MatchedSkill:   result.Rationale.MatchedSkill,
			LocationSignal: result.Rationale.LocationSignal,
			Scanned:        result.Rationale.Scanned,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if w := result.Worker; w != nil {
		job.State = models.StateAutoAssigned
		job.WorkerID = w.ID
		job.WorkerName = w.FullName
		job.WorkerEmail = w.Email
		job.WorkerMobile = w.Mobile
	}

	if err := c.queue.Save(ctx, job); err != nil {
		c.restorePayment(ctx, record, approved.ID)
		return Approval{}, apperr.Store("enqueue dispatch job", err)
	}

	if req.ID != "" {
		if err := c.store.UpdateRequestPaymentStatus(ctx, req.ID, models.PaymentPaid); err != nil {
			c.log.Warn("request payment status not updated", map[string]interface{}{
				"requestId": req.ID,
				"error":     err.Error(),
			})
		}
	}

	c.log.Info("payment approved", map[string]interface{}{
		"paymentId":      paymentID,
		"slipId":         slipID,
		"match":          string(result.Status),
		"worker":         result.WorkerName(),
		"matchedSkill":   result.Rationale.MatchedSkill,
		"locationSignal": result.Rationale.LocationSignal,
		"scanned":        result.Rationale.Scanned,
	})
	metrics.PaymentsApproved.WithLabelValues(string(result.Status)).Inc()
	if result.Worker != nil {
		metrics.JobsAssigned.WithLabelValues("auto").Inc()
	}
	c.publish(EventJobCreated, job)

	return Approval{Payment: approved, Job: job}, nil
}

// restorePayment puts a consumed payment record back in the approval queue
// when its dispatch job could not be enqueued.
func (c *Controller) restorePayment(ctx context.Context, record models.PaymentRecord, approvedID string) {
	if err := c.store.RestorePaymentRecord(ctx, record, approvedID); err != nil {
		c.log.WithError(err).Error("payment record not restored after enqueue failure", map[string]interface{}{
			"paymentId":  record.ID,
			"approvedId": approvedID,
		})
		return
	}
	c.log.Warn("payment approval rolled back", map[string]interface{}{"paymentId": record.ID})
}

// originatingRequest resolves the request behind a payment record by id,
// falling back to an exact email match. A miss yields an empty request,
// which the matcher routes to manual assignment.
func (c *Controller) originatingRequest(ctx context.Context, record models.PaymentRecord) models.ServiceRequest {
	if record.RequestID != "" {
		req, err := c.store.GetRequest(ctx, record.RequestID)
		if err == nil {
			return req
		}
		c.log.Warn("originating request not loaded", map[string]interface{}{
			"requestId": record.RequestID,
			"error":     err.Error(),
		})
	}

	email := strings.TrimSpace(record.Email)
	if email == "" {
		return models.ServiceRequest{}
	}
	candidates, err := c.store.ListRequests(ctx, models.RequestFilter{Search: email})
	if err != nil {
		c.log.Warn("request lookup by email failed", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
		return models.ServiceRequest{}
	}
	for _, r := range candidates {
		if strings.EqualFold(r.Email, email) {
			return r
		}
	}
	return models.ServiceRequest{}
}

func (c *Controller) slipID(ctx context.Context, candidates ...string) (string, error) {
	id := firstNonEmpty(candidates...)
	if id == "" {
		next, err := c.slips.Next(ctx)
		if err != nil {
			return "", apperr.Store("next slip id", err)
		}
		id = next
	}

	if _, err := c.queue.Get(ctx, id); err == nil {
		return "", apperr.Conflict("slip id " + id + " is already on the dispatch board")
	} else if !errors.Is(err, ErrJobNotFound) {
		return "", apperr.Store("load dispatch job", err)
	}
	return id, nil
}

type WorkerSelection struct {
	WorkerID   string
	WorkerName string
}

// ManuallyAssign puts a Verified worker on a job that has not been
// dispatched. Picking the worker already assigned manually is a no-op.
func (c *Controller) ManuallyAssign(ctx context.Context, jobID string, sel WorkerSelection) (models.DispatchJob, error) {
	sel.WorkerID = strings.TrimSpace(sel.WorkerID)
	sel.WorkerName = strings.TrimSpace(sel.WorkerName)
	if sel.WorkerID == "" && sel.WorkerName == "" {
		return models.DispatchJob{}, apperr.Validation("worker selection is required")
	}

	job, err := c.Job(ctx, jobID)
	if err != nil {
		return models.DispatchJob{}, err
	}
	switch job.State {
	case models.StateManualAssignmentNeeded, models.StateAutoAssigned, models.StateManuallyAssigned:
	case models.StateDispatched:
		return models.DispatchJob{}, apperr.Conflict("job has already been dispatched")
	default:
		return models.DispatchJob{}, apperr.Conflict("job is not ready for assignment")
	}

	worker, err := c.selectWorker(ctx, sel)
	if err != nil {
		return models.DispatchJob{}, err
	}

	if job.State == models.StateManuallyAssigned && job.WorkerID == worker.ID {
		return job, nil
	}

	job.State = models.StateManuallyAssigned
	job.WorkerID = worker.ID
	job.WorkerName = worker.FullName
	job.WorkerEmail = worker.Email
	job.WorkerMobile = worker.Mobile
	job.UpdatedAt = c.now()

	if err := c.queue.Save(ctx, job); err != nil {
		return models.DispatchJob{}, apperr.Store("update dispatch job", err)
	}

	c.log.Info("worker manually assigned", map[string]interface{}{
		"jobId":    job.ID,
		"workerId": worker.ID,
		"worker":   worker.FullName,
	})
	metrics.JobsAssigned.WithLabelValues("manual").Inc()
	c.publish(EventJobUpdated, job)
	return job, nil
}

// selectWorker resolves a selection by id, then by exact name in roster
// order.
func (c *Controller) selectWorker(ctx context.Context, sel WorkerSelection) (models.Worker, error) {
	var worker models.Worker
	if sel.WorkerID != "" {
		w, err := c.store.GetWorker(ctx, sel.WorkerID)
		if err != nil {
			return models.Worker{}, store.AsAppError("worker", sel.WorkerID, err)
		}
		worker = w
	} else {
		roster, err := c.store.ListWorkers(ctx, "")
		if err != nil {
			return models.Worker{}, apperr.Store("list workers", err)
		}
		found := false
		for _, w := range roster {
			if w.FullName == sel.WorkerName {
				worker, found = w, true
				break
			}
		}
		if !found {
			return models.Worker{}, apperr.NotFound("worker", sel.WorkerName)
		}
	}

	if !worker.IsVerified() {
		return models.Worker{}, apperr.Validation("worker " + worker.FullName + " is not verified")
	}
	return worker, nil
}

func (c *Controller) Jobs(ctx context.Context) ([]models.DispatchJob, error) {
	jobs, err := c.queue.List(ctx)
	if err != nil {
		return nil, apperr.Store("list dispatch jobs", err)
	}
	return jobs, nil
}

func (c *Controller) Job(ctx context.Context, id string) (models.DispatchJob, error) {
	job, err := c.queue.Get(ctx, id)
	if errors.Is(err, ErrJobNotFound) {
		return models.DispatchJob{}, apperr.NotFound("dispatch job", id)
	}
	if err != nil {
		return models.DispatchJob{}, apperr.Store("load dispatch job", err)
	}
	return job, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Package store is the record store behind the admin API: one operation set
// per entity kind, no relational constraints between kinds.
package store

import (
	"context"
	"errors"

	"nomorebugs-admin/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

type RequestStore interface {
	ListRequests(ctx context.Context, filter models.RequestFilter) ([]models.ServiceRequest, error)
	GetRequest(ctx context.Context, id string) (models.ServiceRequest, error)
	CreateRequest(ctx context.Context, r models.ServiceRequest) (models.ServiceRequest, error)
	UpdateRequestPaymentStatus(ctx context.Context, id, status string) error
	DeleteRequest(ctx context.Context, id string) error
}

type WorkerStore interface {
	// ListWorkers returns workers in roster order: registration time, then id.
	// An empty status lists everyone.
	ListWorkers(ctx context.Context, status string) ([]models.Worker, error)
	GetWorker(ctx context.Context, id string) (models.Worker, error)
	CreateWorker(ctx context.Context, w models.Worker) (models.Worker, error)
	VerifyWorker(ctx context.Context, id string) error
	DeleteWorker(ctx context.Context, id string) error
}

type CustomerStore interface {
	ListCustomers(ctx context.Context, status string) ([]models.Customer, error)
	CreateCustomer(ctx context.Context, c models.Customer) (models.Customer, error)
	SetCustomerStatus(ctx context.Context, id, status string) error
}

type PaymentStore interface {
	CreatePaymentRecord(ctx context.Context, p models.PaymentRecord) (models.PaymentRecord, error)
	ListPaymentRecords(ctx context.Context) ([]models.PaymentRecord, error)
	GetPaymentRecord(ctx context.Context, id string) (models.PaymentRecord, error)
	// ConsumePaymentRecord writes the approval and removes the pending record
	// atomically, so an approved payment cannot reappear in the queue.
	ConsumePaymentRecord(ctx context.Context, id string, approved models.ApprovedPayment) (models.ApprovedPayment, error)
	// RestorePaymentRecord undoes a consume whose follow-up failed: the
	// approval entry is removed and the pending record reinserted.
	RestorePaymentRecord(ctx context.Context, record models.PaymentRecord, approvedID string) error
	ListApprovedPayments(ctx context.Context) ([]models.ApprovedPayment, error)
}

type DispatchStore interface {
	// CreateDispatchRecord returns ErrDuplicate when the job already has a
	// record; a job is dispatched with exactly one PIN.
	CreateDispatchRecord(ctx context.Context, r models.DispatchRecord) (models.DispatchRecord, error)
	GetDispatchRecordByJob(ctx context.Context, jobID string) (models.DispatchRecord, error)
	ListDispatchRecords(ctx context.Context) ([]models.DispatchRecord, error)
}

type AdminStore interface {
	CreateAdmin(ctx context.Context, a models.Admin) (models.Admin, error)
	GetAdminByEmail(ctx context.Context, email string) (models.Admin, error)
	CountAdmins(ctx context.Context) (int, error)
}

type Store interface {
	RequestStore
	WorkerStore
	CustomerStore
	PaymentStore
	DispatchStore
	AdminStore

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
}

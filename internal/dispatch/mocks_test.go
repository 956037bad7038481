package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"nomorebugs-admin/internal/document"
	"nomorebugs-admin/internal/logger"
	"nomorebugs-admin/internal/mail"
	"nomorebugs-admin/internal/models"
	"nomorebugs-admin/internal/store"

	"github.com/stretchr/testify/mock"
)

// ==========================
// Mock Implementations
// ==========================

type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListRequests(ctx context.Context, filter models.RequestFilter) ([]models.ServiceRequest, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.ServiceRequest), args.Error(1)
}

func (m *MockStore) GetRequest(ctx context.Context, id string) (models.ServiceRequest, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.ServiceRequest), args.Error(1)
}

func (m *MockStore) CreateRequest(ctx context.Context, r models.ServiceRequest) (models.ServiceRequest, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(models.ServiceRequest), args.Error(1)
}

func (m *MockStore) UpdateRequestPaymentStatus(ctx context.Context, id, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockStore) DeleteRequest(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStore) ListWorkers(ctx context.Context, status string) ([]models.Worker, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]models.Worker), args.Error(1)
}

func (m *MockStore) GetWorker(ctx context.Context, id string) (models.Worker, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Worker), args.Error(1)
}

func (m *MockStore) CreateWorker(ctx context.Context, w models.Worker) (models.Worker, error) {
	args := m.Called(ctx, w)
	return args.Get(0).(models.Worker), args.Error(1)
}

func (m *MockStore) VerifyWorker(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStore) DeleteWorker(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStore) CreatePaymentRecord(ctx context.Context, p models.PaymentRecord) (models.PaymentRecord, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(models.PaymentRecord), args.Error(1)
}

func (m *MockStore) ListPaymentRecords(ctx context.Context) ([]models.PaymentRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.PaymentRecord), args.Error(1)
}

func (m *MockStore) GetPaymentRecord(ctx context.Context, id string) (models.PaymentRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.PaymentRecord), args.Error(1)
}

func (m *MockStore) ConsumePaymentRecord(ctx context.Context, id string, approved models.ApprovedPayment) (models.ApprovedPayment, error) {
	args := m.Called(ctx, id, approved)
	return args.Get(0).(models.ApprovedPayment), args.Error(1)
}

func (m *MockStore) RestorePaymentRecord(ctx context.Context, record models.PaymentRecord, approvedID string) error {
	return m.Called(ctx, record, approvedID).Error(0)
}

func (m *MockStore) ListApprovedPayments(ctx context.Context) ([]models.ApprovedPayment, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.ApprovedPayment), args.Error(1)
}

func (m *MockStore) GetDispatchRecordByJob(ctx context.Context, jobID string) (models.DispatchRecord, error) {
	args := m.Called(ctx, jobID)
	return args.Get(0).(models.DispatchRecord), args.Error(1)
}

func (m *MockStore) CreateDispatchRecord(ctx context.Context, r models.DispatchRecord) (models.DispatchRecord, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(models.DispatchRecord), args.Error(1)
}

func (m *MockStore) ListDispatchRecords(ctx context.Context) ([]models.DispatchRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.DispatchRecord), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mail.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type MockTexter struct {
	mock.Mock
}

func (m *MockTexter) Send(ctx context.Context, phone, message string) error {
	return m.Called(ctx, phone, message).Error(0)
}

type fakeRenderer struct {
	err  error
	last document.DispatchConfirmation
}

func (f *fakeRenderer) DispatchConfirmation(d document.DispatchConfirmation) ([]byte, error) {
	f.last = d
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-fake " + d.PIN), nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(eventType string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

// countingQueue counts writes to the wrapped queue.
type countingQueue struct {
	JobQueue
	mu       sync.Mutex
	saves    int
	failNext int
}

func (q *countingQueue) Save(ctx context.Context, job models.DispatchJob) error {
	q.mu.Lock()
	q.saves++
	if q.failNext > 0 {
		q.failNext--
		q.mu.Unlock()
		return errUnavailable
	}
	q.mu.Unlock()
	return q.JobQueue.Save(ctx, job)
}

// FailNextSaves makes the next n saves fail without writing.
func (q *countingQueue) FailNextSaves(n int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failNext = n
}

func (q *countingQueue) Saves() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.saves
}

// ==========================
// Test Helper Functions
// ==========================

var (
	testNow        = time.Date(2025, 10, 28, 9, 30, 0, 0, time.UTC)
	errUnavailable = errors.New("connection refused")
)

type fixture struct {
	ctl       *Controller
	store     *store.Memory
	queue     *countingQueue
	mailer    *MockMailer
	texter    *MockTexter
	renderer  *fakeRenderer
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:     store.NewMemory(),
		queue:     &countingQueue{JobQueue: NewMemoryQueue()},
		mailer:    &MockMailer{},
		texter:    &MockTexter{},
		renderer:  &fakeRenderer{},
		publisher: &recordingPublisher{},
	}
	f.ctl = newTestController(t, f.store, f.queue, f.mailer, f.renderer,
		WithTexter(f.texter), WithPublisher(f.publisher))
	return f
}

func newTestController(t *testing.T, st Store, q JobQueue, mailer mail.Mailer, r Renderer, opts ...Option) *Controller {
	t.Helper()
	opts = append([]Option{
		WithClock(func() time.Time { return testNow }),
		WithPINSource(func() (string, error) { return "482913", nil }),
	}, opts...)
	return NewController(st, q, NewMemorySlipSequence(10001), mailer, r, logger.NewTestLogger(t), Config{
		Currency:        "LKR",
		DispatchMailbox: "dispatch@nomorebugs.lk",
		SMSEnabled:      true,
	}, opts...)
}

func alexWorker() models.Worker {
	return models.Worker{
		ID:           "w-alex",
		FullName:     "Alex",
		Status:       models.WorkerVerified,
		Skills:       []string{"Termites"},
		Address:      "12 Lake Rd, Colombo",
		Email:        "alex@example.com",
		Mobile:       "+94771234567",
		RegisteredAt: testNow.Add(-48 * time.Hour),
	}
}

func (f *fixture) seedRequest(t *testing.T, id, email, bugType, city string) models.ServiceRequest {
	t.Helper()
	r, err := f.store.CreateRequest(context.Background(), models.ServiceRequest{
		ID:         id,
		Username:   "Customer " + id,
		Email:      email,
		Address:    "7 Galle Rd",
		City:       city,
		PostalCode: "00300",
		BugType:    bugType,
		ContactNo:  "0770000000",
	})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func (f *fixture) seedPayment(t *testing.T, requestID, email string) models.PaymentRecord {
	t.Helper()
	p, err := f.store.CreatePaymentRecord(context.Background(), models.PaymentRecord{
		RequestID:     requestID,
		CustomerName:  "Customer " + requestID,
		Email:         email,
		PaymentStatus: models.PaymentApproved,
	})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func (f *fixture) seedWorker(t *testing.T, w models.Worker) {
	t.Helper()
	if _, err := f.store.CreateWorker(context.Background(), w); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) seedJob(t *testing.T, job models.DispatchJob) {
	t.Helper()
	if err := f.queue.JobQueue.Save(context.Background(), job); err != nil {
		t.Fatal(err)
	}
}

package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"nomorebugs-admin/internal/models"

	"github.com/google/uuid"
)

var (
	_ Store = (*Memory)(nil)
	_ Store = (*MySQL)(nil)
)

// Memory is an in-process Store used for demos (STORE_DRIVER=memory) and
// tests. Records are lost on restart.
type Memory struct {
	mu        sync.RWMutex
	requests  map[string]models.ServiceRequest
	reqOrder  []string
	workers   map[string]models.Worker
	customers map[string]models.Customer
	payments  map[string]models.PaymentRecord
	approved  []models.ApprovedPayment
	records   []models.DispatchRecord
	admins    map[string]models.Admin
	now       func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		requests:  map[string]models.ServiceRequest{},
		workers:   map[string]models.Worker{},
		customers: map[string]models.Customer{},
		payments:  map[string]models.PaymentRecord{},
		admins:    map[string]models.Admin{},
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (m *Memory) Migrate(ctx context.Context) error { return nil }

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) ListRequests(ctx context.Context, filter models.RequestFilter) ([]models.ServiceRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := []models.ServiceRequest{}
	for i := len(m.reqOrder) - 1; i >= 0; i-- {
		r, ok := m.requests[m.reqOrder[i]]
		if !ok {
			continue
		}
		if filter.PaymentStatus != "" && r.PaymentStatus != filter.PaymentStatus {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.Username), search) &&
			!strings.Contains(strings.ToLower(r.Email), search) &&
			!strings.Contains(strings.ToLower(r.BusinessName), search) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *Memory) GetRequest(ctx context.Context, id string) (models.ServiceRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.requests[id]
	if !ok {
		return models.ServiceRequest{}, ErrNotFound
	}
	return r, nil
}

func (m *Memory) CreateRequest(ctx context.Context, r models.ServiceRequest) (models.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if _, exists := m.requests[r.ID]; exists {
		return models.ServiceRequest{}, ErrDuplicate
	}
	if r.PaymentStatus == "" {
		r.PaymentStatus = models.PaymentUnpaid
	}
	if r.Status == "" {
		r.Status = models.RequestStatusPending
	}
	m.requests[r.ID] = r
	m.reqOrder = append(m.reqOrder, r.ID)
	return r, nil
}

func (m *Memory) UpdateRequestPaymentStatus(ctx context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.requests[id]
	if !ok {
		return ErrNotFound
	}
	r.PaymentStatus = status
	m.requests[id] = r
	return nil
}

func (m *Memory) DeleteRequest(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.requests[id]; !ok {
		return ErrNotFound
	}
	delete(m.requests, id)
	for i, rid := range m.reqOrder {
		if rid == id {
			m.reqOrder = append(m.reqOrder[:i], m.reqOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) ListWorkers(ctx context.Context, status string) ([]models.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Worker{}
	for _, w := range m.workers {
		if status != "" && w.Status != status {
			continue
		}
		w.Skills = append([]string(nil), w.Skills...)
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].RegisteredAt.Before(out[j].RegisteredAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) GetWorker(ctx context.Context, id string) (models.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.workers[id]
	if !ok {
		return models.Worker{}, ErrNotFound
	}
	return w, nil
}

func (m *Memory) CreateWorker(ctx context.Context, w models.Worker) (models.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if _, exists := m.workers[w.ID]; exists {
		return models.Worker{}, ErrDuplicate
	}
	if w.Status == "" {
		w.Status = models.WorkerPending
	}
	if w.RegisteredAt.IsZero() {
		w.RegisteredAt = m.now()
	}
	if w.Skills == nil {
		w.Skills = []string{}
	}
	m.workers[w.ID] = w
	return w, nil
}

func (m *Memory) VerifyWorker(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.workers[id]
	if !ok {
		return ErrNotFound
	}
	w.Status = models.WorkerVerified
	m.workers[id] = w
	return nil
}

func (m *Memory) DeleteWorker(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.workers[id]; !ok {
		return ErrNotFound
	}
	delete(m.workers, id)
	return nil
}

func (m *Memory) ListCustomers(ctx context.Context, status string) ([]models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Customer{}
	for _, c := range m.customers {
		c.Status = c.EffectiveStatus()
		if status != "" && c.Status != status {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) CreateCustomer(ctx context.Context, c models.Customer) (models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, exists := m.customers[c.ID]; exists {
		return models.Customer{}, ErrDuplicate
	}
	c.Status = c.EffectiveStatus()
	m.customers[c.ID] = c
	return c, nil
}

func (m *Memory) SetCustomerStatus(ctx context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.customers[id]
	if !ok {
		return ErrNotFound
	}
	c.Status = status
	m.customers[id] = c
	return nil
}

func (m *Memory) CreatePaymentRecord(ctx context.Context, p models.PaymentRecord) (models.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, exists := m.payments[p.ID]; exists {
		return models.PaymentRecord{}, ErrDuplicate
	}
	if p.SavedAt.IsZero() {
		p.SavedAt = m.now()
	}
	m.payments[p.ID] = p
	return p, nil
}

func (m *Memory) ListPaymentRecords(ctx context.Context) ([]models.PaymentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.PaymentRecord, 0, len(m.payments))
	for _, p := range m.payments {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SavedAt.Equal(out[j].SavedAt) {
			return out[i].SavedAt.Before(out[j].SavedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) GetPaymentRecord(ctx context.Context, id string) (models.PaymentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.payments[id]
	if !ok {
		return models.PaymentRecord{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) ConsumePaymentRecord(ctx context.Context, id string, approved models.ApprovedPayment) (models.ApprovedPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.payments[id]; !ok {
		return models.ApprovedPayment{}, ErrNotFound
	}
	if approved.ID == "" {
		approved.ID = uuid.NewString()
	}
	if approved.ApprovedAt.IsZero() {
		approved.ApprovedAt = m.now()
	}
	delete(m.payments, id)
	m.approved = append(m.approved, approved)
	return approved, nil
}

func (m *Memory) RestorePaymentRecord(ctx context.Context, record models.PaymentRecord, approvedID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.payments[record.ID]; exists {
		return ErrDuplicate
	}
	for i, a := range m.approved {
		if a.ID == approvedID {
			m.approved = append(m.approved[:i], m.approved[i+1:]...)
			break
		}
	}
	m.payments[record.ID] = record
	return nil
}

func (m *Memory) ListApprovedPayments(ctx context.Context) ([]models.ApprovedPayment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.ApprovedPayment, 0, len(m.approved))
	for i := len(m.approved) - 1; i >= 0; i-- {
		out = append(out, m.approved[i])
	}
	return out, nil
}

func (m *Memory) CreateDispatchRecord(ctx context.Context, r models.DispatchRecord) (models.DispatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	for _, existing := range m.records {
		if existing.ID == r.ID || existing.JobID == r.JobID {
			return models.DispatchRecord{}, ErrDuplicate
		}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = m.now()
	}
	m.records = append(m.records, r)
	return r, nil
}

func (m *Memory) GetDispatchRecordByJob(ctx context.Context, jobID string) (models.DispatchRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.records {
		if r.JobID == jobID {
			return r, nil
		}
	}
	return models.DispatchRecord{}, ErrNotFound
}

func (m *Memory) ListDispatchRecords(ctx context.Context) ([]models.DispatchRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.DispatchRecord, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *Memory) CreateAdmin(ctx context.Context, a models.Admin) (models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(a.Email)
	if _, exists := m.admins[key]; exists {
		return models.Admin{}, ErrDuplicate
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = m.now()
	}
	m.admins[key] = a
	return a, nil
}

func (m *Memory) GetAdminByEmail(ctx context.Context, email string) (models.Admin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.admins[strings.ToLower(email)]
	if !ok {
		return models.Admin{}, ErrNotFound
	}
	return a, nil
}

func (m *Memory) CountAdmins(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.admins), nil
}

package dispatch

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"nomorebugs-admin/internal/apperr"
	"nomorebugs-admin/internal/logger"
	"nomorebugs-admin/internal/models"
	"nomorebugs-admin/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// ApprovePayment
// ==========================

func TestApprovePayment_AutoAssigns(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedWorker(t, alexWorker())
	f.seedRequest(t, "r-1", "kamal@example.com", "Termites", "Colombo")
	p := f.seedPayment(t, "r-1", "kamal@example.com")

	approval, err := f.ctl.ApprovePayment(ctx, p.ID, ApproveInput{Amount: "5000"})
	require.NoError(t, err)

	job := approval.Job
	assert.Equal(t, "10001", job.ID)
	assert.Equal(t, models.StateAutoAssigned, job.State)
	assert.Equal(t, "Alex", job.WorkerName)
	assert.Equal(t, "alex@example.com", job.WorkerEmail)
	assert.Equal(t, "Auto-Assigned to Alex", job.StatusLabel())
	assert.Equal(t, "5000 LKR", job.Amount)
	require.NotNil(t, job.Rationale)
	assert.Equal(t, "Termites", job.Rationale.MatchedSkill)
	assert.Equal(t, "city", job.Rationale.LocationSignal)

	assert.Equal(t, "10001", approval.Payment.SlipID)
	assert.Equal(t, "5000 LKR", approval.Payment.Amount)
	assert.Equal(t, models.PaymentApproved, approval.Payment.PaymentStatus)

	pending, err := f.store.ListPaymentRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending, "approved payment must leave the pending queue")

	req, err := f.store.GetRequest(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, req.PaymentStatus)

	stored, err := f.ctl.Job(ctx, "10001")
	require.NoError(t, err)
	assert.Equal(t, job, stored)
	assert.Equal(t, []string{EventJobCreated}, f.publisher.Events())
}

func TestApprovePayment_NoMatchNeedsManualAssignment(t *testing.T) {
	f := newFixture(t)
	f.seedWorker(t, alexWorker())
	f.seedRequest(t, "r-1", "kamal@example.com", "Rodents", "Colombo")
	p := f.seedPayment(t, "r-1", "kamal@example.com")

	approval, err := f.ctl.ApprovePayment(context.Background(), p.ID, ApproveInput{Amount: "2,500.50 LKR"})
	require.NoError(t, err)

	assert.Equal(t, models.StateManualAssignmentNeeded, approval.Job.State)
	assert.False(t, approval.Job.HasWorker())
	assert.Equal(t, "Manual Dispatch Needed (No Skill/Location Match)", approval.Job.StatusLabel())
	assert.Equal(t, "2500.50 LKR", approval.Job.Amount)
}

func TestApprovePayment_EmptyAmountTouchesNothing(t *testing.T) {
	st := &MockStore{}
	q := &countingQueue{JobQueue: NewMemoryQueue()}
	ctl := newTestController(t, st, q, &MockMailer{}, &fakeRenderer{})

	_, err := ctl.ApprovePayment(context.Background(), "p-1", ApproveInput{Amount: ""})

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
	assert.Empty(t, st.Calls, "no store call expected")
	assert.Equal(t, 0, q.Saves())

	jobs, err := ctl.Jobs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestApprovePayment_CarriesSlipID(t *testing.T) {
	f := newFixture(t)
	f.seedRequest(t, "r-1", "kamal@example.com", "Termites", "Kandy")
	p := f.seedPayment(t, "r-1", "kamal@example.com")

	approval, err := f.ctl.ApprovePayment(context.Background(), p.ID, ApproveInput{Amount: "100", SlipID: "778899"})
	require.NoError(t, err)
	assert.Equal(t, "778899", approval.Job.ID)

	p2 := f.seedPayment(t, "r-1", "kamal@example.com")
	_, err = f.ctl.ApprovePayment(context.Background(), p2.ID, ApproveInput{Amount: "100", SlipID: "778899"})
	assert.True(t, apperr.Is(err, apperr.CodeConflict))

	pending, err := f.store.ListPaymentRecords(context.Background())
	require.NoError(t, err)
	assert.Len(t, pending, 1, "conflicting approval must not consume the record")
}

func TestApprovePayment_FallsBackToEmailMatch(t *testing.T) {
	f := newFixture(t)
	f.seedWorker(t, alexWorker())
	f.seedRequest(t, "r-9", "Kamal@Example.com", "Termites", "Colombo")
	p := f.seedPayment(t, "", "kamal@example.com")

	approval, err := f.ctl.ApprovePayment(context.Background(), p.ID, ApproveInput{Amount: "100"})
	require.NoError(t, err)
	assert.Equal(t, "r-9", approval.Job.RequestID)
	assert.Equal(t, models.StateAutoAssigned, approval.Job.State)
}

func TestApprovePayment_QueueFailureRestoresPayment(t *testing.T) {
	f := newFixture(t)
	f.seedWorker(t, alexWorker())
	f.seedRequest(t, "r-1", "kamal@example.com", "Termites", "Colombo")
	p := f.seedPayment(t, "r-1", "kamal@example.com")
	ctx := context.Background()

	f.queue.FailNextSaves(1)
	_, err := f.ctl.ApprovePayment(ctx, p.ID, ApproveInput{Amount: "5000"})
	require.True(t, apperr.Is(err, apperr.CodeStore))

	pending, err := f.store.ListPaymentRecords(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, p.ID, pending[0].ID)

	audit, err := f.store.ListApprovedPayments(ctx)
	require.NoError(t, err)
	assert.Empty(t, audit)

	jobs, err := f.ctl.Jobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, jobs)

	approval, err := f.ctl.ApprovePayment(ctx, p.ID, ApproveInput{Amount: "5000"})
	require.NoError(t, err)
	assert.Equal(t, models.StateAutoAssigned, approval.Job.State)

	audit, err = f.store.ListApprovedPayments(ctx)
	require.NoError(t, err)
	assert.Len(t, audit, 1)
}

func TestApprovePayment_MissingRecord(t *testing.T) {
	f := newFixture(t)

	_, err := f.ctl.ApprovePayment(context.Background(), "missing", ApproveInput{Amount: "100"})
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	assert.Equal(t, 0, f.queue.Saves())
}

func TestApprovePayment_RosterFailureWritesNothing(t *testing.T) {
	st := &MockStore{}
	st.On("GetPaymentRecord", mock.Anything, "p-1").Return(models.PaymentRecord{ID: "p-1", Email: ""}, nil)
	st.On("ListWorkers", mock.Anything, "").Return([]models.Worker(nil), errUnavailable)
	q := &countingQueue{JobQueue: NewMemoryQueue()}
	ctl := newTestController(t, st, q, &MockMailer{}, &fakeRenderer{})

	_, err := ctl.ApprovePayment(context.Background(), "p-1", ApproveInput{Amount: "100"})

	assert.True(t, apperr.Is(err, apperr.CodeStore))
	st.AssertNotCalled(t, "ConsumePaymentRecord", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 0, q.Saves())
	st.AssertExpectations(t)
}

func TestApprovePayment_ConcurrentApprovalsBothLand(t *testing.T) {
	f := newFixture(t)
	f.seedWorker(t, alexWorker())

	payments := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("r-%d", i)
		email := fmt.Sprintf("c%d@example.com", i)
		f.seedRequest(t, id, email, "Termites", "Colombo")
		payments = append(payments, f.seedPayment(t, id, email).ID)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(payments))
	for _, id := range payments {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.ctl.ApprovePayment(context.Background(), id, ApproveInput{Amount: "100"})
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	jobs, err := f.ctl.Jobs(context.Background())
	require.NoError(t, err)
	assert.Len(t, jobs, len(payments))

	approved, err := f.store.ListApprovedPayments(context.Background())
	require.NoError(t, err)
	assert.Len(t, approved, len(payments))
}

// ==========================
// QueueForApproval
// ==========================

func TestQueueForApproval(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedRequest(t, "r-1", "kamal@example.com", "Termites", "Colombo")

	record, err := f.ctl.QueueForApproval(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, "r-1", record.RequestID)
	assert.Equal(t, models.PaymentApproved, record.PaymentStatus)

	req, err := f.store.GetRequest(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentApproved, req.PaymentStatus)

	_, err = f.ctl.QueueForApproval(ctx, "r-1")
	assert.True(t, apperr.Is(err, apperr.CodeConflict))

	_, err = f.ctl.QueueForApproval(ctx, "missing")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

// ==========================
// ManuallyAssign
// ==========================

func manualJob() models.DispatchJob {
	return models.DispatchJob{
		ID:            "10001",
		CustomerName:  "Kamal",
		CustomerEmail: "kamal@example.com",
		Location:      "Kandy",
		Address:       "4 Hill St, Kandy",
		ServiceType:   "Rodents",
		State:         models.StateManualAssignmentNeeded,
		CreatedAt:     testNow,
		UpdatedAt:     testNow,
	}
}

func TestManuallyAssign_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedWorker(t, alexWorker())
	f.seedJob(t, manualJob())

	first, err := f.ctl.ManuallyAssign(ctx, "10001", WorkerSelection{WorkerName: "Alex"})
	require.NoError(t, err)
	second, err := f.ctl.ManuallyAssign(ctx, "10001", WorkerSelection{WorkerID: "w-alex"})
	require.NoError(t, err)

	assert.Equal(t, models.StateManuallyAssigned, second.State)
	assert.Equal(t, first, second)
	assert.Equal(t, "alex@example.com", second.WorkerEmail, "manual assignment captures the email")
	assert.Equal(t, "Manually Assigned to Alex", second.StatusLabel())
	assert.Equal(t, 1, f.queue.Saves())
}

func TestManuallyAssign_Rejections(t *testing.T) {
	unverified := alexWorker()
	unverified.ID, unverified.FullName, unverified.Status = "w-pat", "Pat", models.WorkerPending

	dispatched := manualJob()
	dispatched.ID = "10002"
	dispatched.State = models.StateDispatched
	dispatched.IsDispatched = true

	tests := []struct {
		name  string
		jobID string
		sel   WorkerSelection
		want  apperr.Code
	}{
		{"empty selection", "10001", WorkerSelection{WorkerName: "  "}, apperr.CodeValidation},
		{"unknown job", "99999", WorkerSelection{WorkerName: "Alex"}, apperr.CodeNotFound},
		{"unknown worker name", "10001", WorkerSelection{WorkerName: "alex"}, apperr.CodeNotFound},
		{"unknown worker id", "10001", WorkerSelection{WorkerID: "w-404"}, apperr.CodeNotFound},
		{"unverified worker", "10001", WorkerSelection{WorkerName: "Pat"}, apperr.CodeValidation},
		{"already dispatched", "10002", WorkerSelection{WorkerName: "Alex"}, apperr.CodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seedWorker(t, alexWorker())
			f.seedWorker(t, unverified)
			f.seedJob(t, manualJob())
			f.seedJob(t, dispatched)

			_, err := f.ctl.ManuallyAssign(context.Background(), tt.jobID, tt.sel)
			assert.Equal(t, tt.want, apperr.CodeOf(err))
			assert.Equal(t, 0, f.queue.Saves())
		})
	}
}

func TestManuallyAssign_OverridesAutoAssignment(t *testing.T) {
	f := newFixture(t)
	nimal := alexWorker()
	nimal.ID, nimal.FullName, nimal.Email = "w-nimal", "Nimal", "nimal@example.com"
	f.seedWorker(t, alexWorker())
	f.seedWorker(t, nimal)

	job := manualJob()
	job.State = models.StateAutoAssigned
	job.WorkerID, job.WorkerName, job.WorkerEmail = "w-alex", "Alex", "alex@example.com"
	f.seedJob(t, job)

	got, err := f.ctl.ManuallyAssign(context.Background(), job.ID, WorkerSelection{WorkerID: "w-nimal"})
	require.NoError(t, err)
	assert.Equal(t, "Nimal", got.WorkerName)
	assert.Equal(t, "nimal@example.com", got.WorkerEmail)
	assert.Equal(t, []string{EventJobUpdated}, f.publisher.Events())
}

// ==========================
// ConfirmDispatch
// ==========================

func TestConfirmDispatch_WithoutWorkerSkipsStore(t *testing.T) {
	st := &MockStore{}
	q := NewMemoryQueue()
	require.NoError(t, q.Save(context.Background(), manualJob()))
	ctl := newTestController(t, st, q, &MockMailer{}, &fakeRenderer{})

	_, err := ctl.ConfirmDispatch(context.Background(), "10001")

	assert.True(t, apperr.Is(err, apperr.CodeValidation))
	assert.Empty(t, st.Calls)

	job, err := ctl.Job(context.Background(), "10001")
	require.NoError(t, err)
	assert.False(t, job.IsDispatched)
}

func TestConfirmDispatch_Dispatches(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedWorker(t, alexWorker())
	job := manualJob()
	job.State = models.StateManuallyAssigned
	job.WorkerID, job.WorkerName, job.WorkerEmail = "w-alex", "Alex", "alex@example.com"
	f.seedJob(t, job)

	conf, err := f.ctl.ConfirmDispatch(ctx, job.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StateDispatched, conf.Job.State)
	assert.True(t, conf.Job.IsDispatched)
	assert.Equal(t, "482913", conf.Job.PIN)
	assert.Equal(t, "Dispatched", conf.Job.StatusLabel())
	assert.False(t, conf.Worker.Placeholder)
	assert.Equal(t, "+94771234567", conf.Worker.Contact)
	assert.NoError(t, conf.RenderErr)
	assert.Equal(t, []byte("%PDF-fake 482913"), conf.Document)
	assert.Equal(t, "482913", f.renderer.last.PIN)

	records, err := f.store.ListDispatchRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.DispatchRecord{
		ID:              records[0].ID,
		JobID:           "10001",
		PinCode:         "482913",
		WorkerName:      "Alex",
		WorkerEmail:     "alex@example.com",
		CustomerName:    "Kamal",
		CustomerAddress: "4 Hill St, Kandy",
		ServiceType:     "Rodents",
		CreatedAt:       records[0].CreatedAt,
	}, records[0])

	_, err = f.ctl.ConfirmDispatch(ctx, job.ID)
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
}

func TestConfirmDispatch_PlaceholderWorker(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(st *MockStore)
		job       models.DispatchJob
		wantName  string
		wantEmail string
	}{
		{
			name: "roster unavailable",
			setup: func(st *MockStore) {
				st.On("ListWorkers", mock.Anything, "").Return([]models.Worker(nil), errUnavailable)
			},
			job:       models.DispatchJob{ID: "10001", WorkerName: "Ghost", State: models.StateManuallyAssigned},
			wantName:  "Ghost",
			wantEmail: "dispatch@nomorebugs.lk",
		},
		{
			name: "worker no longer on roster",
			setup: func(st *MockStore) {
				st.On("GetWorker", mock.Anything, "w-gone").Return(models.Worker{}, store.ErrNotFound)
				st.On("ListWorkers", mock.Anything, "").Return([]models.Worker{}, nil)
			},
			job:       models.DispatchJob{ID: "10001", WorkerID: "w-gone", WorkerEmail: "gone@example.com", State: models.StateAutoAssigned},
			wantName:  "Assigned Technician",
			wantEmail: "gone@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &MockStore{}
			tt.setup(st)
			st.On("GetDispatchRecordByJob", mock.Anything, "10001").Return(models.DispatchRecord{}, store.ErrNotFound)
			st.On("CreateDispatchRecord", mock.Anything, mock.MatchedBy(func(r models.DispatchRecord) bool {
				return r.WorkerName == tt.wantName && r.WorkerEmail == tt.wantEmail && r.PinCode == "482913"
			})).Return(models.DispatchRecord{ID: "d-1"}, nil)

			q := NewMemoryQueue()
			require.NoError(t, q.Save(context.Background(), tt.job))
			ctl := newTestController(t, st, q, &MockMailer{}, &fakeRenderer{})

			conf, err := ctl.ConfirmDispatch(context.Background(), tt.job.ID)
			require.NoError(t, err)

			assert.True(t, conf.Worker.Placeholder)
			assert.Equal(t, tt.wantName, conf.Worker.Name)
			assert.Equal(t, "N/A", conf.Worker.Contact)
			assert.Equal(t, tt.wantEmail, conf.Worker.Email)
			assert.Equal(t, "d-1", conf.Record.ID)
			assert.True(t, conf.Job.IsDispatched)
			st.AssertExpectations(t)
		})
	}
}

func TestConfirmDispatch_RenderFailureStillDispatches(t *testing.T) {
	f := newFixture(t)
	f.renderer.err = fmt.Errorf("font missing")
	f.seedWorker(t, alexWorker())
	job := manualJob()
	job.State = models.StateManuallyAssigned
	job.WorkerID, job.WorkerName, job.WorkerEmail = "w-alex", "Alex", "alex@example.com"
	f.seedJob(t, job)

	conf, err := f.ctl.ConfirmDispatch(context.Background(), job.ID)
	require.NoError(t, err)
	assert.True(t, apperr.Is(conf.RenderErr, apperr.CodeRender))
	assert.Nil(t, conf.Document)

	stored, err := f.ctl.Job(context.Background(), job.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsDispatched)
}

func TestConfirmDispatch_StoreFailureLeavesJob(t *testing.T) {
	st := &MockStore{}
	st.On("GetWorker", mock.Anything, "w-alex").Return(alexWorker(), nil)
	st.On("GetDispatchRecordByJob", mock.Anything, mock.Anything).Return(models.DispatchRecord{}, store.ErrNotFound)
	st.On("CreateDispatchRecord", mock.Anything, mock.Anything).Return(models.DispatchRecord{}, errUnavailable)

	q := NewMemoryQueue()
	job := manualJob()
	job.State = models.StateManuallyAssigned
	job.WorkerID, job.WorkerName = "w-alex", "Alex"
	require.NoError(t, q.Save(context.Background(), job))

	ctl := NewController(st, q, NewMemorySlipSequence(1), &MockMailer{}, &fakeRenderer{}, logger.NewNoOpLogger(), Config{})
	_, err := ctl.ConfirmDispatch(context.Background(), job.ID)
	assert.True(t, apperr.Is(err, apperr.CodeStore))

	stored, err := q.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, job, stored)
}

func TestConfirmDispatch_RetryAfterQueueFailureKeepsOnePIN(t *testing.T) {
	f := newFixture(t)
	pins := []string{"100001", "100002"}
	f.ctl = newTestController(t, f.store, f.queue, f.mailer, f.renderer,
		WithPINSource(func() (string, error) {
			pin := pins[0]
			pins = pins[1:]
			return pin, nil
		}))

	f.seedWorker(t, alexWorker())
	job := manualJob()
	job.State = models.StateManuallyAssigned
	job.WorkerID, job.WorkerName, job.WorkerEmail = "w-alex", "Alex", "alex@example.com"
	f.seedJob(t, job)

	f.queue.FailNextSaves(1)
	_, err := f.ctl.ConfirmDispatch(context.Background(), job.ID)
	require.True(t, apperr.Is(err, apperr.CodeStore))

	stored, err := f.ctl.Job(context.Background(), job.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsDispatched)

	conf, err := f.ctl.ConfirmDispatch(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, "100001", conf.Job.PIN)
	assert.Equal(t, "100001", conf.Record.PinCode)

	records, err := f.store.ListDispatchRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "100001", records[0].PinCode)
}

func TestConfirmDispatch_ConcurrentConfirmReusesRecord(t *testing.T) {
	st := &MockStore{}
	st.On("GetWorker", mock.Anything, "w-alex").Return(alexWorker(), nil)
	st.On("GetDispatchRecordByJob", mock.Anything, "10001").Return(models.DispatchRecord{}, store.ErrNotFound).Once()
	st.On("CreateDispatchRecord", mock.Anything, mock.Anything).Return(models.DispatchRecord{}, store.ErrDuplicate)
	st.On("GetDispatchRecordByJob", mock.Anything, "10001").Return(models.DispatchRecord{ID: "d-1", JobID: "10001", PinCode: "777111"}, nil)

	q := NewMemoryQueue()
	job := models.DispatchJob{ID: "10001", WorkerID: "w-alex", WorkerName: "Alex", State: models.StateAutoAssigned}
	require.NoError(t, q.Save(context.Background(), job))
	ctl := newTestController(t, st, q, &MockMailer{}, &fakeRenderer{})

	conf, err := ctl.ConfirmDispatch(context.Background(), "10001")
	require.NoError(t, err)
	assert.Equal(t, "777111", conf.Job.PIN)
	assert.Equal(t, "d-1", conf.Record.ID)
	st.AssertExpectations(t)
}

func TestConfirmationDocument(t *testing.T) {
	f := newFixture(t)
	f.seedWorker(t, alexWorker())
	job := manualJob()
	f.seedJob(t, job)

	_, err := f.ctl.ConfirmationDocument(context.Background(), job.ID)
	assert.True(t, apperr.Is(err, apperr.CodeConflict))

	job.State, job.IsDispatched, job.PIN = models.StateDispatched, true, "123456"
	job.WorkerID, job.WorkerName = "w-alex", "Alex"
	f.seedJob(t, job)

	doc, err := f.ctl.ConfirmationDocument(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake 123456"), doc)
	assert.Equal(t, "alex@example.com", f.renderer.last.WorkerEmail)
}

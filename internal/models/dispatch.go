package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// JobState is the lifecycle position of a dispatch job.
type JobState string

const (
	StatePendingApproval        JobState = "PendingApproval"
	StateAwaitingAssignment     JobState = "AwaitingAssignment"
	StateAutoAssigned           JobState = "AutoAssigned"
	StateManualAssignmentNeeded JobState = "ManualAssignmentNeeded"
	StateManuallyAssigned       JobState = "ManuallyAssigned"
	StateDispatched             JobState = "Dispatched"
)

// HasWorker reports whether a job in this state carries a worker.
func (s JobState) HasWorker() bool {
	switch s {
	case StateAutoAssigned, StateManuallyAssigned, StateDispatched:
		return true
	}
	return false
}

// MatchRationale records why the matcher picked (or failed to pick) a worker.
type MatchRationale struct {
	MatchedSkill   string `json:"matchedSkill,omitempty"`
	LocationSignal string `json:"locationSignal,omitempty"`
	Scanned        int    `json:"scanned"`
}

// DispatchJob is one approved request on its way to a worker. The job id is
// the payment slip id.
type DispatchJob struct {
	ID            string          `json:"id"`
	RequestID     string          `json:"requestId,omitempty"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail,omitempty"`
	Location      string          `json:"location"`
	Address       string          `json:"address,omitempty"`
	PostalCode    string          `json:"postalcode,omitempty"`
	Mobile        string          `json:"mobile,omitempty"`
	ServiceType   string          `json:"serviceType"`
	Amount        string          `json:"amount,omitempty"`
	WorkerID      string          `json:"workerId,omitempty"`
	WorkerName    string          `json:"workerName,omitempty"`
	WorkerEmail   string          `json:"workerEmail,omitempty"`
	WorkerMobile  string          `json:"workerMobile,omitempty"`
	State         JobState        `json:"state"`
	IsDispatched  bool            `json:"isDispatched"`
	PIN           string          `json:"pin,omitempty"`
	Rationale     *MatchRationale `json:"rationale,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// StatusLabel is the human-readable status shown on the dispatch board.
// It is derived from State and never parsed back.
func (j DispatchJob) StatusLabel() string {
	switch j.State {
	case StateAutoAssigned:
		return fmt.Sprintf("Auto-Assigned to %s", j.WorkerName)
	case StateManuallyAssigned:
		return fmt.Sprintf("Manually Assigned to %s", j.WorkerName)
	case StateManualAssignmentNeeded:
		return "Manual Dispatch Needed (No Skill/Location Match)"
	case StateDispatched:
		return "Dispatched"
	case StatePendingApproval:
		return "Pending Approval"
	default:
		return "Ready for Dispatch"
	}
}

// HasWorker reports whether a worker has been chosen for the job.
func (j DispatchJob) HasWorker() bool {
	return j.WorkerName != "" || j.WorkerEmail != ""
}

func (j DispatchJob) MarshalJSON() ([]byte, error) {
	type plain DispatchJob
	return json.Marshal(struct {
		plain
		Status string `json:"status"`
	}{plain(j), j.StatusLabel()})
}

// DispatchRecord is the persisted projection of a confirmed dispatch.
type DispatchRecord struct {
	ID              string    `json:"id"`
	JobID           string    `json:"jobId"`
	PinCode         string    `json:"pinCode"`
	WorkerName      string    `json:"workerName"`
	WorkerEmail     string    `json:"workerEmail"`
	CustomerName    string    `json:"customerName"`
	CustomerAddress string    `json:"customerAddress"`
	ServiceType     string    `json:"serviceType"`
	CreatedAt       time.Time `json:"createdAt"`
}

type AssignWorkerRequest struct {
	WorkerID   string `json:"workerId"`
	WorkerName string `json:"workerName"`
}

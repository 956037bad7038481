// Package matching picks a worker for an approved service request.
package matching

import (
	"strings"

	"nomorebugs-admin/internal/models"
)

type Status string

const (
	StatusAutoAssigned         Status = "AutoAssigned"
	StatusManualDispatchNeeded Status = "ManualDispatchNeeded"
)

// Location signals recorded in a Rationale.
const (
	SignalPostalCode = "postalcode"
	SignalCity       = "city"
)

type Rationale struct {
	MatchedSkill   string
	LocationSignal string
	Scanned        int
}

// Result is the outcome of Match. Worker is nil when Status is
// StatusManualDispatchNeeded.
type Result struct {
	Worker    *models.Worker
	Status    Status
	Rationale Rationale
}

// WorkerName returns the matched worker's display name, or "".
func (r Result) WorkerName() string {
	if r.Worker == nil {
		return ""
	}
	return r.Worker.FullName
}

// Match scans roster in order and returns the first Verified worker whose
// skills cover the request's bug type and whose address mentions the
// request's postal code or city. It has no side effects.
func Match(req models.ServiceRequest, roster []models.Worker) Result {
	scanned := 0
	for i := range roster {
		w := roster[i]
		scanned++

		if !w.IsVerified() {
			continue
		}
		if !skillMatches(w, req.BugType) {
			continue
		}
		signal := locationSignal(w.Address, req.PostalCode, req.City)
		if signal == "" {
			continue
		}

		return Result{
			Worker: &w,
			Status: StatusAutoAssigned,
			Rationale: Rationale{
				MatchedSkill:   req.BugType,
				LocationSignal: signal,
				Scanned:        scanned,
			},
		}
	}

	return Result{
		Status:    StatusManualDispatchNeeded,
		Rationale: Rationale{Scanned: scanned},
	}
}

// An empty bug type matches every worker.
func skillMatches(w models.Worker, bugType string) bool {
	return bugType == "" || w.HasSkill(bugType)
}

// locationSignal returns which field of the request appears in the
// address. Empty fields never match.
func locationSignal(address, postalCode, city string) string {
	addr := strings.ToLower(address)

	if pc := strings.ToLower(strings.TrimSpace(postalCode)); pc != "" && strings.Contains(addr, pc) {
		return SignalPostalCode
	}
	if c := strings.ToLower(strings.TrimSpace(city)); c != "" && strings.Contains(addr, c) {
		return SignalCity
	}
	return ""
}

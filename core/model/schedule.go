package model

import "time"

// Entry is one placed observation: the request occupies slots
// [StartSlot, EndSlot) on the resource.
type Entry struct {
	RequestID  string    `json:"request_id"`
	ResourceID string    `json:"resource_id"`
	StartSlot  int       `json:"start_slot"`
	EndSlot    int       `json:"end_slot"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Priority   float64   `json:"priority"`
}

// Schedule is the decoded solver output, ordered by resource then start
// slot. Requests absent from it are unscheduled.
type Schedule []Entry

// Reason explains why a request did not make the schedule.
type Reason string

const (
	// ReasonScheduled marks requests that were placed.
	ReasonScheduled Reason = "scheduled"
	// ReasonInfeasible marks requests with no legal placement on any
	// resource; they never enter the model.
	ReasonInfeasible Reason = "infeasible"
	// ReasonOutcompeted marks requests that had legal placements but
	// lost to higher-priority competition for capacity.
	ReasonOutcompeted Reason = "outcompeted"
)

// Disposition records the outcome for a single request.
type Disposition struct {
	RequestID string  `json:"request_id"`
	Reason    Reason  `json:"reason"`
	Priority  float64 `json:"priority"`
}

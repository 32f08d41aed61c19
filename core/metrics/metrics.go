// Package metrics defines the observability events emitted by the
// planner and the sink interface that records them.
package metrics

import (
	"time"

	"github.com/ogauthier/obsched/core/model"
)

// PlanEvent summarizes one completed scheduling run.
type PlanEvent struct {
	RunID         string
	Status        string
	Objective     float64
	Gap           float64
	Requests      int
	Scheduled     int
	Infeasible    int
	Outcompeted   int
	Variables     int
	Constraints   int
	SolveDuration time.Duration
	TotalDuration time.Duration
	Time          time.Time
}

// DispositionEvent records the outcome for a single request.
type DispositionEvent struct {
	RunID     string
	RequestID string
	Reason    model.Reason
	Priority  float64
	Time      time.Time
}

// Sink records planning events for observability purposes.
type Sink interface {
	RecordPlan(ev PlanEvent) error
	RecordDispositions(evs []DispositionEvent) error
}

// NopSink discards every event.
type NopSink struct{}

// RecordPlan implements Sink.
func (NopSink) RecordPlan(PlanEvent) error { return nil }

// RecordDispositions implements Sink.
func (NopSink) RecordDispositions([]DispositionEvent) error { return nil }

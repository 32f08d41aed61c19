package metrics

import (
	"errors"

	coremetrics "github.com/ogauthier/obsched/core/metrics"
)

// MultiSink fans events out to several sinks, collecting all errors.
type MultiSink struct {
	sinks []coremetrics.Sink
}

// NewMultiSink builds a sink that forwards to every given sink.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// RecordPlan forwards the event to every sink.
func (m *MultiSink) RecordPlan(ev coremetrics.PlanEvent) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordPlan(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordDispositions forwards the events to every sink.
func (m *MultiSink) RecordDispositions(evs []coremetrics.DispositionEvent) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordDispositions(evs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

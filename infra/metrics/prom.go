package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/ogauthier/obsched/core/metrics"
)

// PromSink records planning events in Prometheus metrics.
type PromSink struct {
	plans        *prometheus.CounterVec
	dispositions *prometheus.CounterVec
	solveLatency prometheus.Histogram
	objective    prometheus.Gauge
	gap          prometheus.Gauge
	variables    prometheus.Gauge
}

// NewPromSink registers planning metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// cfg.PrometheusAddr.
func NewPromSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	plans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "obsched_plans_total",
		Help: "Total number of completed planning runs",
	}, []string{"status"})
	dispositions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "obsched_request_dispositions_total",
		Help: "Per-request outcomes across planning runs",
	}, []string{"reason"})
	solveLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "obsched_solve_duration_seconds",
		Help:    "Wall-clock time spent inside the MIP engine",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})
	objective := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "obsched_last_objective",
		Help: "Objective value achieved by the most recent run",
	})
	gap := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "obsched_last_gap",
		Help: "Relative optimality gap of the most recent run",
	})
	variables := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "obsched_last_model_variables",
		Help: "Decision variable count of the most recent model",
	})

	for _, c := range []prometheus.Collector{plans, dispositions, solveLatency, objective, gap, variables} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}

	return &PromSink{
		plans:        plans,
		dispositions: dispositions,
		solveLatency: solveLatency,
		objective:    objective,
		gap:          gap,
		variables:    variables,
	}, nil
}

// RecordPlan updates the counters and gauges for one completed run.
func (s *PromSink) RecordPlan(ev coremetrics.PlanEvent) error {
	s.plans.WithLabelValues(ev.Status).Inc()
	s.solveLatency.Observe(ev.SolveDuration.Seconds())
	s.objective.Set(ev.Objective)
	s.gap.Set(ev.Gap)
	s.variables.Set(float64(ev.Variables))
	return nil
}

// RecordDispositions increments the per-reason outcome counters.
func (s *PromSink) RecordDispositions(evs []coremetrics.DispositionEvent) error {
	for _, ev := range evs {
		s.dispositions.WithLabelValues(string(ev.Reason)).Inc()
	}
	return nil
}

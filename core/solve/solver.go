// Package solve runs the abstract program through a MIP engine. The
// engine behind the Solver interface is the only place that knows how a
// model is actually optimized; builder and extractor never do.
package solve

import (
	"context"
	"time"

	"github.com/ogauthier/obsched/core/ilp"
)

// Status classifies a solve outcome.
type Status int

const (
	// StatusOptimal means the returned assignment is proven optimal
	// (exactly, or within the configured gap target).
	StatusOptimal Status = iota
	// StatusFeasible means the time budget ran out first; the assignment
	// is the best incumbent and Gap bounds its distance from optimal.
	StatusFeasible
	// StatusInfeasible means no assignment satisfies the constraints.
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	default:
		return "unknown"
	}
}

// Limits bounds a single solve call. TimeBudget is mandatory: an
// unbounded solve is a configuration error, not a supported mode.
type Limits struct {
	TimeBudget time.Duration
	// GapTarget stops the search once the relative optimality gap drops
	// to or below it. Zero demands a proven optimum.
	GapTarget float64
}

// Result carries the solver's assignment and proof state.
type Result struct {
	Status    Status
	Objective float64
	// Values holds one entry per model variable, 0 or 1 up to the
	// integrality tolerance. Nil when Status is StatusInfeasible.
	Values []float64
	// Gap is the proven relative distance to the optimum. Zero when
	// Status is StatusOptimal and no gap target was set.
	Gap float64
	// Nodes counts branch-and-bound nodes explored.
	Nodes int
}

// Solver solves an abstract program within the given limits. A fresh
// internal model is built and torn down per call; nothing leaks between
// invocations.
type Solver interface {
	Solve(ctx context.Context, m *ilp.Model, lim Limits) (Result, error)
}

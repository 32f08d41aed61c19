// Package planner wires the scheduling pipeline: discretize the horizon,
// evaluate visibility, build the program, solve it and decode the
// schedule. A planner holds configuration only; every run is a pure
// function of its inputs and the solver outcome.
package planner

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ogauthier/obsched/core/extract"
	"github.com/ogauthier/obsched/core/ilp"
	"github.com/ogauthier/obsched/core/logger"
	"github.com/ogauthier/obsched/core/metrics"
	"github.com/ogauthier/obsched/core/model"
	"github.com/ogauthier/obsched/core/solve"
	"github.com/ogauthier/obsched/core/timegrid"
	"github.com/ogauthier/obsched/core/visibility"
)

// Config carries every tunable of a planning run. Nothing here has an
// implicit default: horizon, slot width and time budget must be set by
// the caller.
type Config struct {
	HorizonStart time.Time
	HorizonEnd   time.Time
	SlotWidth    time.Duration
	TimeBudget   time.Duration
	// GapTarget accepts solutions proven within this relative gap.
	GapTarget float64
	// Workers bounds the visibility evaluation pool. Zero means one.
	Workers int
}

// Timings breaks a run down by pipeline stage.
type Timings struct {
	Visibility time.Duration `json:"visibility"`
	Build      time.Duration `json:"build"`
	Solve      time.Duration `json:"solve"`
	Extract    time.Duration `json:"extract"`
	Total      time.Duration `json:"total"`
}

// Outcome is the full result of one planning run.
type Outcome struct {
	RunID        string              `json:"run_id"`
	Status       solve.Status        `json:"-"`
	StatusText   string              `json:"status"`
	Objective    float64             `json:"objective"`
	Gap          float64             `json:"gap"`
	Schedule     model.Schedule      `json:"schedule"`
	Dispositions []model.Disposition `json:"dispositions"`
	Variables    int                 `json:"variables"`
	Constraints  int                 `json:"constraints"`
	Timings      Timings             `json:"timings"`
}

// Planner runs the pipeline with a fixed configuration.
type Planner struct {
	cfg    Config
	solver solve.Solver
	pred   visibility.Predicate
	log    logger.Logger
	sink   metrics.Sink
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

// New builds a planner. A nil solver selects the branch-and-bound
// engine, a nil predicate the altitude/airmass geometry, a nil sink
// discards metrics.
func New(cfg Config, solver solve.Solver, pred visibility.Predicate, log logger.Logger, sink metrics.Sink) (*Planner, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if solver == nil {
		solver = solve.NewBranchBound()
	}
	if pred == nil {
		pred = visibility.AltitudePredicate{}
	}
	if log == nil {
		log = nopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Planner{cfg: cfg, solver: solver, pred: pred, log: log, sink: sink}, nil
}

func validateConfig(cfg Config) error {
	if cfg.HorizonStart.IsZero() || cfg.HorizonEnd.IsZero() {
		return model.NewConfigurationError("horizon", "start and end must be set")
	}
	if cfg.SlotWidth <= 0 {
		return model.NewConfigurationError("slot_width", "must be positive")
	}
	if cfg.TimeBudget <= 0 {
		return model.NewConfigurationError("time_budget", "an unbounded solve is not supported")
	}
	if cfg.GapTarget < 0 {
		return model.NewConfigurationError("gap_target", "must be nonnegative")
	}
	return nil
}

// Plan schedules the requests over the resources. Infeasible requests
// are pruned and reported, never fatal; a model-wide infeasibility
// surfaces as ErrModelInfeasible.
func (p *Planner) Plan(ctx context.Context, requests []model.Request, resources []model.Resource) (*Outcome, error) {
	started := time.Now()
	runID := uuid.NewString()

	grid, err := timegrid.New(p.cfg.HorizonStart, p.cfg.HorizonEnd, p.cfg.SlotWidth)
	if err != nil {
		return nil, err
	}
	if err := validateInputs(grid, requests, resources); err != nil {
		return nil, err
	}

	visStart := time.Now()
	rep, err := visibility.Evaluate(grid, requests, resources, p.pred, p.cfg.Workers)
	if err != nil {
		return nil, err
	}
	visDur := time.Since(visStart)
	for _, id := range rep.Infeasible {
		p.log.Warnf("request %s has no feasible placement on any resource", id)
	}

	buildStart := time.Now()
	m := ilp.Build(grid, requests, resources, rep)
	buildDur := time.Since(buildStart)
	p.log.Debugw("model built", map[string]any{
		"run_id":      runID,
		"variables":   m.NumVars(),
		"constraints": len(m.Constraints),
		"slots":       grid.Slots(),
	})

	solveStart := time.Now()
	res, err := p.solver.Solve(ctx, m, solve.Limits{TimeBudget: p.cfg.TimeBudget, GapTarget: p.cfg.GapTarget})
	if err != nil {
		return nil, err
	}
	solveDur := time.Since(solveStart)
	if res.Status == solve.StatusInfeasible {
		p.log.Errorf("run %s: model infeasible with %d variables", runID, m.NumVars())
		return nil, model.ErrModelInfeasible
	}

	extractStart := time.Now()
	schedule, dispositions, err := extract.Decode(grid, m, res.Values, requests, resources, rep)
	if err != nil {
		return nil, err
	}
	extractDur := time.Since(extractStart)

	out := &Outcome{
		RunID:        runID,
		Status:       res.Status,
		StatusText:   res.Status.String(),
		Objective:    res.Objective,
		Gap:          res.Gap,
		Schedule:     schedule,
		Dispositions: dispositions,
		Variables:    m.NumVars(),
		Constraints:  len(m.Constraints),
		Timings: Timings{
			Visibility: visDur,
			Build:      buildDur,
			Solve:      solveDur,
			Extract:    extractDur,
			Total:      time.Since(started),
		},
	}
	p.emit(out)
	p.log.Infof("run %s: %s, objective %.3f, %d/%d requests scheduled in %v",
		runID, out.StatusText, out.Objective, len(schedule), len(requests), out.Timings.Total)
	return out, nil
}

func validateInputs(grid *timegrid.Grid, requests []model.Request, resources []model.Resource) error {
	seen := make(map[string]bool, len(requests))
	for _, req := range requests {
		if req.ID == "" {
			return model.NewConfigurationError("request", "missing id")
		}
		if seen[req.ID] {
			return model.NewConfigurationError("request", "duplicate id %s", req.ID)
		}
		seen[req.ID] = true
		// Zero effective priority (e.g. band 4) is legal: the request
		// enters the model but never displaces weighted work.
		if req.Priority < 0 {
			return model.NewConfigurationError("request", "%s has negative priority", req.ID)
		}
	}
	seenRes := make(map[string]bool, len(resources))
	for _, res := range resources {
		if res.ID == "" {
			return model.NewConfigurationError("resource", "missing id")
		}
		if seenRes[res.ID] {
			return model.NewConfigurationError("resource", "duplicate id %s", res.ID)
		}
		seenRes[res.ID] = true
		if res.Availability != nil && len(res.Availability) != grid.Slots() {
			return model.NewConfigurationError("resource",
				"%s availability mask has %d slots, grid has %d", res.ID, len(res.Availability), grid.Slots())
		}
	}
	return nil
}

func (p *Planner) emit(out *Outcome) {
	now := time.Now()
	ev := metrics.PlanEvent{
		RunID:         out.RunID,
		Status:        out.StatusText,
		Objective:     out.Objective,
		Gap:           out.Gap,
		Requests:      len(out.Dispositions),
		Variables:     out.Variables,
		Constraints:   out.Constraints,
		SolveDuration: out.Timings.Solve,
		TotalDuration: out.Timings.Total,
		Time:          now,
	}
	evs := make([]metrics.DispositionEvent, 0, len(out.Dispositions))
	for _, d := range out.Dispositions {
		switch d.Reason {
		case model.ReasonScheduled:
			ev.Scheduled++
		case model.ReasonInfeasible:
			ev.Infeasible++
		case model.ReasonOutcompeted:
			ev.Outcompeted++
		}
		evs = append(evs, metrics.DispositionEvent{
			RunID:     out.RunID,
			RequestID: d.RequestID,
			Reason:    d.Reason,
			Priority:  d.Priority,
			Time:      now,
		})
	}
	if err := p.sink.RecordPlan(ev); err != nil {
		p.log.Errorf("record plan metrics: %v", err)
	}
	if err := p.sink.RecordDispositions(evs); err != nil {
		p.log.Errorf("record disposition metrics: %v", err)
	}
}

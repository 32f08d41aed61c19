package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ogauthier/obsched/core/ilp"
	"github.com/ogauthier/obsched/core/model"
	"github.com/ogauthier/obsched/core/solve"
	"github.com/ogauthier/obsched/core/visibility"
)

var horizonStart = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

func testConfig(slots int) Config {
	return Config{
		HorizonStart: horizonStart,
		HorizonEnd:   horizonStart.Add(time.Duration(slots) * 10 * time.Minute),
		SlotWidth:    10 * time.Minute,
		TimeBudget:   10 * time.Second,
		Workers:      2,
	}
}

func newPlanner(t *testing.T, cfg Config) *Planner {
	t.Helper()
	p, err := New(cfg, nil, visibility.Always{}, nil, nil)
	if err != nil {
		t.Fatalf("planner: %v", err)
	}
	return p
}

func reasons(out *Outcome) map[string]model.Reason {
	m := make(map[string]model.Reason, len(out.Dispositions))
	for _, d := range out.Dispositions {
		m[d.RequestID] = d.Reason
	}
	return m
}

func TestPlanPriorityCompetition(t *testing.T) {
	// Both requests fit only in slots [0,1] of a single capacity-1
	// telescope; only the priority-10 one can win.
	cfg := testConfig(2)
	p := newPlanner(t, cfg)
	requests := []model.Request{
		{ID: "high", Duration: 20 * time.Minute, Priority: 10},
		{ID: "low", Duration: 20 * time.Minute, Priority: 5},
	}
	resources := []model.Resource{{ID: "tel", Capacity: 1}}
	out, err := p.Plan(context.Background(), requests, resources)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if out.Status != solve.StatusOptimal || out.Objective != 10 {
		t.Fatalf("expected optimal objective 10, got %s %.1f", out.StatusText, out.Objective)
	}
	if len(out.Schedule) != 1 || out.Schedule[0].RequestID != "high" {
		t.Fatalf("unexpected schedule %+v", out.Schedule)
	}
	r := reasons(out)
	if r["high"] != model.ReasonScheduled || r["low"] != model.ReasonOutcompeted {
		t.Fatalf("unexpected dispositions %v", r)
	}
}

func TestPlanInfeasibleRequestExcluded(t *testing.T) {
	cfg := testConfig(4)
	p := newPlanner(t, cfg)
	requests := []model.Request{
		{ID: "ok", Duration: 10 * time.Minute, Priority: 3},
		{ID: "never", Duration: 10 * time.Minute, Priority: 9,
			Earliest: horizonStart.Add(24 * time.Hour)},
	}
	resources := []model.Resource{{ID: "tel", Capacity: 1}}
	out, err := p.Plan(context.Background(), requests, resources)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if out.Status != solve.StatusOptimal {
		t.Fatalf("expected optimal got %s", out.StatusText)
	}
	r := reasons(out)
	if r["never"] != model.ReasonInfeasible {
		t.Fatalf("expected never infeasible, got %v", r)
	}
	if r["ok"] != model.ReasonScheduled {
		t.Fatalf("expected ok scheduled, got %v", r)
	}
}

func TestPlanZeroRequests(t *testing.T) {
	cfg := testConfig(4)
	p := newPlanner(t, cfg)
	out, err := p.Plan(context.Background(), nil, []model.Resource{{ID: "tel", Capacity: 1}})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if out.Status != solve.StatusOptimal || out.Objective != 0 || len(out.Schedule) != 0 {
		t.Fatalf("expected degenerate optimal, got %+v", out)
	}
}

func TestPlanResourceMonotonicity(t *testing.T) {
	cfg := testConfig(2)
	requests := []model.Request{
		{ID: "a", Duration: 20 * time.Minute, Priority: 10},
		{ID: "b", Duration: 20 * time.Minute, Priority: 5},
	}
	one := []model.Resource{{ID: "t1", Capacity: 1}}
	two := append(one, model.Resource{ID: "t2", Capacity: 1})

	p := newPlanner(t, cfg)
	outOne, err := p.Plan(context.Background(), requests, one)
	if err != nil {
		t.Fatalf("plan one: %v", err)
	}
	outTwo, err := p.Plan(context.Background(), requests, two)
	if err != nil {
		t.Fatalf("plan two: %v", err)
	}
	if outTwo.Objective < outOne.Objective {
		t.Fatalf("objective dropped when adding a resource: %v -> %v", outOne.Objective, outTwo.Objective)
	}
	if outTwo.Objective != 15 {
		t.Fatalf("two telescopes should fit both requests, objective %v", outTwo.Objective)
	}
}

func TestPlanIdempotentObjective(t *testing.T) {
	cfg := testConfig(3)
	requests := []model.Request{
		{ID: "a", Duration: 20 * time.Minute, Priority: 4},
		{ID: "b", Duration: 20 * time.Minute, Priority: 4},
		{ID: "c", Duration: 10 * time.Minute, Priority: 2},
	}
	resources := []model.Resource{{ID: "t1", Capacity: 1}}
	p := newPlanner(t, cfg)
	first, err := p.Plan(context.Background(), requests, resources)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	second, err := p.Plan(context.Background(), requests, resources)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if first.Objective != second.Objective {
		t.Fatalf("objective drifted: %v vs %v", first.Objective, second.Objective)
	}
}

func TestPlanExclusionGroup(t *testing.T) {
	// Same physical target on two telescopes: both placements are
	// individually legal but may not overlap in time.
	cfg := testConfig(2)
	requests := []model.Request{
		{ID: "a", Duration: 20 * time.Minute, Priority: 5, ExclusionGroup: "ngc253"},
		{ID: "b", Duration: 20 * time.Minute, Priority: 4, ExclusionGroup: "ngc253"},
	}
	resources := []model.Resource{{ID: "t1", Capacity: 1}, {ID: "t2", Capacity: 1}}
	p := newPlanner(t, cfg)
	out, err := p.Plan(context.Background(), requests, resources)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if out.Objective != 5 {
		t.Fatalf("exclusion group should allow only one, objective %v", out.Objective)
	}
	if len(out.Schedule) != 1 || out.Schedule[0].RequestID != "a" {
		t.Fatalf("expected only the priority-5 member, got %+v", out.Schedule)
	}
}

func TestPlanCapacityTwoSharesSlots(t *testing.T) {
	cfg := testConfig(2)
	requests := []model.Request{
		{ID: "a", Duration: 20 * time.Minute, Priority: 5},
		{ID: "b", Duration: 20 * time.Minute, Priority: 4},
	}
	resources := []model.Resource{{ID: "array", Capacity: 2}}
	p := newPlanner(t, cfg)
	out, err := p.Plan(context.Background(), requests, resources)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if out.Objective != 9 || len(out.Schedule) != 2 {
		t.Fatalf("capacity 2 should fit both, got objective %v schedule %+v", out.Objective, out.Schedule)
	}
}

func TestPlanZeroWeightRequestAccepted(t *testing.T) {
	// Band 4 carries no objective weight. Such requests are still valid
	// input: they may fill otherwise idle capacity but can never win a
	// contested slot.
	cfg := testConfig(2)
	p := newPlanner(t, cfg)
	requests := []model.Request{
		{ID: "high", Duration: 20 * time.Minute, Priority: 10},
		{ID: "filler", Duration: 20 * time.Minute, Band: "4", Completion: 1},
	}
	resources := []model.Resource{{ID: "tel", Capacity: 1}}
	out, err := p.Plan(context.Background(), requests, resources)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if out.Objective != 10 {
		t.Fatalf("weighted request must win, objective %v", out.Objective)
	}
	if len(out.Schedule) != 1 || out.Schedule[0].RequestID != "high" {
		t.Fatalf("unexpected schedule %+v", out.Schedule)
	}
	if r := reasons(out); r["filler"] != model.ReasonOutcompeted {
		t.Fatalf("filler should be outcompeted, got %v", r)
	}
}

func TestPlanConfigValidation(t *testing.T) {
	bad := []Config{
		{},
		{HorizonStart: horizonStart, HorizonEnd: horizonStart.Add(time.Hour), SlotWidth: 10 * time.Minute},
		{HorizonStart: horizonStart, HorizonEnd: horizonStart.Add(time.Hour), SlotWidth: 10 * time.Minute,
			TimeBudget: time.Second, GapTarget: -1},
	}
	for i, cfg := range bad {
		if _, err := New(cfg, nil, nil, nil, nil); !model.IsConfigurationError(err) {
			t.Fatalf("case %d: expected ConfigurationError got %v", i, err)
		}
	}
}

func TestPlanInputValidation(t *testing.T) {
	cfg := testConfig(4)
	p := newPlanner(t, cfg)
	cases := []struct {
		name      string
		requests  []model.Request
		resources []model.Resource
	}{
		{"duplicate request", []model.Request{
			{ID: "a", Duration: 10 * time.Minute, Priority: 1},
			{ID: "a", Duration: 10 * time.Minute, Priority: 1},
		}, []model.Resource{{ID: "t", Capacity: 1}}},
		{"negative priority", []model.Request{
			{ID: "a", Duration: 10 * time.Minute, Priority: -1},
		}, []model.Resource{{ID: "t", Capacity: 1}}},
		{"bad mask length", []model.Request{
			{ID: "a", Duration: 10 * time.Minute, Priority: 1},
		}, []model.Resource{{ID: "t", Capacity: 1, Availability: []bool{true}}}},
		{"misaligned duration", []model.Request{
			{ID: "a", Duration: 7 * time.Minute, Priority: 1},
		}, []model.Resource{{ID: "t", Capacity: 1}}},
	}
	for _, tc := range cases {
		if _, err := p.Plan(context.Background(), tc.requests, tc.resources); !model.IsConfigurationError(err) {
			t.Fatalf("%s: expected ConfigurationError got %v", tc.name, err)
		}
	}
}

func TestPlanTimeoutStatusFeasible(t *testing.T) {
	cfg := testConfig(2)
	cfg.TimeBudget = time.Nanosecond
	requests := []model.Request{{ID: "a", Duration: 10 * time.Minute, Priority: 1}}
	resources := []model.Resource{{ID: "t", Capacity: 1}}
	p := newPlanner(t, cfg)
	out, err := p.Plan(context.Background(), requests, resources)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if out.Status != solve.StatusFeasible {
		t.Fatalf("expected feasible on exhausted budget, got %s", out.StatusText)
	}
}

func TestPlanModelInfeasibleSurfaces(t *testing.T) {
	cfg := testConfig(2)
	p, err := New(cfg, infeasibleSolver{}, visibility.Always{}, nil, nil)
	if err != nil {
		t.Fatalf("planner: %v", err)
	}
	requests := []model.Request{{ID: "a", Duration: 10 * time.Minute, Priority: 1}}
	resources := []model.Resource{{ID: "t", Capacity: 1}}
	if _, err := p.Plan(context.Background(), requests, resources); !errors.Is(err, model.ErrModelInfeasible) {
		t.Fatalf("expected ErrModelInfeasible got %v", err)
	}
}

type infeasibleSolver struct{}

func (infeasibleSolver) Solve(context.Context, *ilp.Model, solve.Limits) (solve.Result, error) {
	return solve.Result{Status: solve.StatusInfeasible}, nil
}

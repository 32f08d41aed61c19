package solve

import (
	"context"
	"testing"
	"time"

	"github.com/ogauthier/obsched/core/ilp"
	"github.com/ogauthier/obsched/core/model"
)

func limits() Limits { return Limits{TimeBudget: 10 * time.Second} }

// twoCompeting builds a model where two single-slot requests both want
// slot 0 of a capacity-1 resource.
func twoCompeting(w1, w2 float64) *ilp.Model {
	m := &ilp.Model{
		Vars: []ilp.Var{
			{RequestID: "a", ResourceID: "t", StartSlot: 0, DurSlots: 1, Weight: w1},
			{RequestID: "b", ResourceID: "t", StartSlot: 0, DurSlots: 1, Weight: w2},
		},
	}
	m.Constraints = []ilp.Constraint{
		{Name: "one_start[a]", Terms: []ilp.Term{{Var: 0, Coef: 1}}, RHS: 1},
		{Name: "one_start[b]", Terms: []ilp.Term{{Var: 1, Coef: 1}}, RHS: 1},
		{Name: "capacity[t,0]", Terms: []ilp.Term{{Var: 0, Coef: 1}, {Var: 1, Coef: 1}}, RHS: 1},
	}
	return m
}

func TestSolveEmptyModel(t *testing.T) {
	res, err := NewBranchBound().Solve(context.Background(), &ilp.Model{}, limits())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if res.Status != StatusOptimal || res.Objective != 0 {
		t.Fatalf("expected optimal empty result, got %+v", res)
	}
}

func TestSolveRequiresTimeBudget(t *testing.T) {
	_, err := NewBranchBound().Solve(context.Background(), &ilp.Model{}, Limits{})
	if !model.IsConfigurationError(err) {
		t.Fatalf("expected ConfigurationError got %v", err)
	}
}

func TestSolvePicksHigherPriority(t *testing.T) {
	res, err := NewBranchBound().Solve(context.Background(), twoCompeting(10, 5), limits())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if res.Status != StatusOptimal {
		t.Fatalf("expected optimal got %v", res.Status)
	}
	if res.Objective != 10 {
		t.Fatalf("expected objective 10 got %v", res.Objective)
	}
	if res.Values[0] < 0.5 || res.Values[1] > 0.5 {
		t.Fatalf("expected a selected, b rejected: %v", res.Values)
	}
}

func TestSolveIntegralOnFractionalRelaxation(t *testing.T) {
	// Three pairwise-conflicting variables of equal weight: the LP
	// relaxation happily sets each to 1/2, the integer optimum takes
	// exactly one.
	m := &ilp.Model{
		Vars: []ilp.Var{
			{RequestID: "a", StartSlot: 0, DurSlots: 1, Weight: 2},
			{RequestID: "b", StartSlot: 0, DurSlots: 1, Weight: 2},
			{RequestID: "c", StartSlot: 0, DurSlots: 1, Weight: 2},
		},
		Constraints: []ilp.Constraint{
			{Name: "ab", Terms: []ilp.Term{{Var: 0, Coef: 1}, {Var: 1, Coef: 1}}, RHS: 1},
			{Name: "bc", Terms: []ilp.Term{{Var: 1, Coef: 1}, {Var: 2, Coef: 1}}, RHS: 1},
			{Name: "ac", Terms: []ilp.Term{{Var: 0, Coef: 1}, {Var: 2, Coef: 1}}, RHS: 1},
		},
	}
	res, err := NewBranchBound().Solve(context.Background(), m, limits())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if res.Status != StatusOptimal || res.Objective != 2 {
		t.Fatalf("expected optimal objective 2 got %+v", res)
	}
	var selected int
	for _, v := range res.Values {
		if v > 0.5 {
			selected++
		}
	}
	if selected != 1 {
		t.Fatalf("expected exactly one selected got %v", res.Values)
	}
}

func TestSolveInfeasibleModel(t *testing.T) {
	// A negative right-hand side over nonnegative variables has no
	// solution at all.
	m := &ilp.Model{
		Vars: []ilp.Var{{RequestID: "a", StartSlot: 0, DurSlots: 1, Weight: 1}},
		Constraints: []ilp.Constraint{
			{Name: "cant", Terms: []ilp.Term{{Var: 0, Coef: 1}}, RHS: -1},
		},
	}
	res, err := NewBranchBound().Solve(context.Background(), m, limits())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if res.Status != StatusInfeasible {
		t.Fatalf("expected infeasible got %+v", res)
	}
}

func TestSolveTimeoutReturnsIncumbent(t *testing.T) {
	res, err := NewBranchBound().Solve(context.Background(), twoCompeting(10, 5), Limits{TimeBudget: time.Nanosecond})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if res.Status != StatusFeasible {
		t.Fatalf("expected feasible on timeout got %v", res.Status)
	}
	if res.Values == nil {
		t.Fatal("timeout must still carry the incumbent")
	}
}

func TestSolveIdempotentObjective(t *testing.T) {
	m := twoCompeting(7, 7)
	first, err := NewBranchBound().Solve(context.Background(), m, limits())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	second, err := NewBranchBound().Solve(context.Background(), m, limits())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if first.Objective != second.Objective {
		t.Fatalf("objective drifted between runs: %v vs %v", first.Objective, second.Objective)
	}
}

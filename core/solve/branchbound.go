package solve

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/ogauthier/obsched/core/ilp"
	"github.com/ogauthier/obsched/core/model"
)

const (
	simplexTol     = 1e-7
	integralityTol = 1e-6
	boundEps       = 1e-9
)

var errNodeInfeasible = errors.New("node infeasible")

// BranchBound is a depth-first branch-and-bound MIP engine running the
// simplex algorithm on the LP relaxation at every node. It assumes all
// constraint coefficients are nonnegative, which holds for every family
// the builder emits.
type BranchBound struct{}

// NewBranchBound returns the default engine.
func NewBranchBound() *BranchBound { return &BranchBound{} }

type bbNode struct {
	fixed []int8 // -1 free, 0 or 1 fixed
	bound float64
}

// Solve implements Solver.
func (s *BranchBound) Solve(ctx context.Context, m *ilp.Model, lim Limits) (Result, error) {
	if lim.TimeBudget <= 0 {
		return Result{}, model.NewConfigurationError("time_budget", "solver requires an explicit positive time budget")
	}
	n := m.NumVars()
	if n == 0 {
		return Result{Status: StatusOptimal, Values: []float64{}}, nil
	}

	deadline := time.Now().Add(lim.TimeBudget)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	rootFixed := make([]int8, n)
	for i := range rootFixed {
		rootFixed[i] = -1
	}
	rootObj, _, err := relax(m, rootFixed)
	if errors.Is(err, errNodeInfeasible) {
		return Result{Status: StatusInfeasible}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("root relaxation: %w", err)
	}

	var (
		incumbent []float64
		incObj    = math.Inf(-1)
	)
	// The all-zero assignment is feasible whenever no constraint has a
	// negative right-hand side, which gives the search a starting
	// incumbent of objective 0.
	zero := make([]float64, n)
	if feasibleAssignment(m, zero) {
		incumbent, incObj = zero, 0
	}

	stack := []bbNode{{fixed: rootFixed, bound: rootObj}}
	nodes := 0
	timedOut := false

	for len(stack) > 0 {
		if time.Now().After(deadline) {
			timedOut = true
			break
		}
		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if incumbent != nil && nd.bound <= incObj+boundEps {
			continue
		}

		obj, x, err := relax(m, nd.fixed)
		if errors.Is(err, errNodeInfeasible) {
			continue
		}
		if err != nil {
			return Result{}, fmt.Errorf("node relaxation: %w", err)
		}
		nodes++
		if incumbent != nil && obj <= incObj+boundEps {
			continue
		}

		branch := mostFractional(x, nd.fixed)
		if branch < 0 {
			xi := roundAssignment(x)
			cand := m.Objective(xi)
			if feasibleAssignment(m, xi) && (incumbent == nil || cand > incObj) {
				incumbent, incObj = xi, cand
			}
			if lim.GapTarget > 0 && incumbent != nil {
				if relGap(bestBound(stack, incObj), incObj) <= lim.GapTarget {
					return Result{
						Status:    StatusOptimal,
						Objective: incObj,
						Values:    incumbent,
						Gap:       relGap(bestBound(stack, incObj), incObj),
						Nodes:     nodes,
					}, nil
				}
			}
			continue
		}

		// Dive toward scheduling first: the fix-to-1 child is pushed
		// last so it pops first.
		f0 := append([]int8(nil), nd.fixed...)
		f0[branch] = 0
		f1 := append([]int8(nil), nd.fixed...)
		f1[branch] = 1
		stack = append(stack, bbNode{fixed: f0, bound: obj}, bbNode{fixed: f1, bound: obj})
	}

	if timedOut {
		if incumbent == nil {
			return Result{}, fmt.Errorf("time budget %v exhausted before any feasible assignment was found", lim.TimeBudget)
		}
		bound := bestBound(stack, incObj)
		return Result{
			Status:    StatusFeasible,
			Objective: incObj,
			Values:    incumbent,
			Gap:       relGap(bound, incObj),
			Nodes:     nodes,
		}, nil
	}
	if incumbent == nil {
		return Result{Status: StatusInfeasible, Nodes: nodes}, nil
	}
	return Result{Status: StatusOptimal, Objective: incObj, Values: incumbent, Nodes: nodes}, nil
}

// relax solves the LP relaxation under the node's fixings. It returns the
// maximization objective including fixed contributions and a full-length
// assignment with free variables at their relaxed values.
func relax(m *ilp.Model, fixed []int8) (float64, []float64, error) {
	n := m.NumVars()
	free := make([]int, 0, n)
	freeIdx := make([]int, n)
	fixedObj := 0.0
	for i := range fixed {
		freeIdx[i] = -1
		switch fixed[i] {
		case -1:
			freeIdx[i] = len(free)
			free = append(free, i)
		case 1:
			fixedObj += m.Vars[i].Weight
		}
	}

	type row struct {
		terms []ilp.Term
		rhs   float64
	}
	var rows []row
	for _, c := range m.Constraints {
		rhs := c.RHS
		var terms []ilp.Term
		for _, t := range c.Terms {
			switch fixed[t.Var] {
			case 1:
				rhs -= t.Coef
			case -1:
				terms = append(terms, ilp.Term{Var: freeIdx[t.Var], Coef: t.Coef})
			}
		}
		if len(terms) == 0 {
			if rhs < -boundEps {
				return 0, nil, errNodeInfeasible
			}
			continue
		}
		if rhs < -boundEps {
			// Nonnegative coefficients over nonnegative variables can
			// never reach a negative right-hand side.
			return 0, nil, errNodeInfeasible
		}
		if rhs < 0 {
			rhs = 0
		}
		rows = append(rows, row{terms: terms, rhs: rhs})
	}

	full := make([]float64, n)
	for i, f := range fixed {
		if f == 1 {
			full[i] = 1
		}
	}
	if len(free) == 0 {
		return fixedObj, full, nil
	}

	// Standard form: variables are the free x, one slack per constraint
	// row and one slack per x <= 1 bound.
	nFree := len(free)
	nRows := len(rows)
	cols := nFree + nRows + nFree
	c := make([]float64, cols)
	for j, i := range free {
		c[j] = -m.Vars[i].Weight
	}
	a := mat.NewDense(nRows+nFree, cols, nil)
	b := make([]float64, nRows+nFree)
	for i, r := range rows {
		for _, t := range r.terms {
			a.Set(i, t.Var, t.Coef)
		}
		a.Set(i, nFree+i, 1)
		b[i] = r.rhs
	}
	for j := 0; j < nFree; j++ {
		a.Set(nRows+j, j, 1)
		a.Set(nRows+j, nFree+nRows+j, 1)
		b[nRows+j] = 1
	}

	opt, xs, err := lp.Simplex(c, a, b, simplexTol, nil)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return 0, nil, errNodeInfeasible
		}
		return 0, nil, fmt.Errorf("simplex: %w", err)
	}
	for j, i := range free {
		v := xs[j]
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		full[i] = v
	}
	return -opt + fixedObj, full, nil
}

// mostFractional returns the free variable farthest from integrality, or
// -1 when the assignment is integral within tolerance.
func mostFractional(x []float64, fixed []int8) int {
	best, bestDist := -1, integralityTol
	for i, v := range x {
		if fixed[i] != -1 {
			continue
		}
		dist := math.Min(v, 1-v)
		if dist > bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

func roundAssignment(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if v >= 0.5 {
			out[i] = 1
		}
	}
	return out
}

func feasibleAssignment(m *ilp.Model, x []float64) bool {
	for _, c := range m.Constraints {
		var lhs float64
		for _, t := range c.Terms {
			lhs += t.Coef * x[t.Var]
		}
		if lhs > c.RHS+boundEps {
			return false
		}
	}
	return true
}

// bestBound is the strongest proven upper bound over the open search
// frontier, never below the incumbent itself.
func bestBound(stack []bbNode, incObj float64) float64 {
	bound := incObj
	for _, nd := range stack {
		if nd.bound > bound {
			bound = nd.bound
		}
	}
	return bound
}

// relGap reports (bound - incumbent) / |incumbent|, the usual relative
// MIP gap. A zero incumbent under a positive bound reports gap 1.
func relGap(bound, inc float64) float64 {
	if bound <= inc+boundEps {
		return 0
	}
	if math.Abs(inc) > boundEps {
		return (bound - inc) / math.Abs(inc)
	}
	if bound <= boundEps {
		return 0
	}
	return 1
}

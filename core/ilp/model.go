// Package ilp holds the abstract integer program built from requests,
// resources and visibility sets. The model is solver-agnostic: it knows
// variables, one family of <= constraints and a maximization objective,
// nothing about any engine.
package ilp

import "fmt"

// Var is a binary decision variable meaning "this request starts at this
// slot on this resource". Weight is the objective coefficient.
type Var struct {
	RequestID  string
	ResourceID string
	StartSlot  int
	DurSlots   int
	Weight     float64
}

// EndSlot returns the exclusive end of the occupied span.
func (v Var) EndSlot() int { return v.StartSlot + v.DurSlots }

// Covers reports whether the variable's span occupies slot s.
func (v Var) Covers(s int) bool { return v.StartSlot <= s && s < v.EndSlot() }

func (v Var) String() string {
	return fmt.Sprintf("y[%s,%s,%d]", v.RequestID, v.ResourceID, v.StartSlot)
}

// Term is one coefficient in a constraint row.
type Term struct {
	Var  int
	Coef float64
}

// Constraint is a row of the form sum(Coef * x) <= RHS.
type Constraint struct {
	Name  string
	Terms []Term
	RHS   float64
}

// Model is the full program: maximize sum(Weight * x) over binary x
// subject to all constraints.
type Model struct {
	Vars        []Var
	Constraints []Constraint
}

// NumVars returns the variable count.
func (m *Model) NumVars() int { return len(m.Vars) }

// Objective evaluates the objective at the given assignment.
func (m *Model) Objective(x []float64) float64 {
	var obj float64
	for i, v := range m.Vars {
		obj += v.Weight * x[i]
	}
	return obj
}

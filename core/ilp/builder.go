package ilp

import (
	"fmt"

	"github.com/ogauthier/obsched/core/model"
	"github.com/ogauthier/obsched/core/timegrid"
	"github.com/ogauthier/obsched/core/visibility"
)

// Build assembles the program from the visibility report. Requests listed
// as infeasible contribute no variables; the model stays proportional to
// genuinely feasible placements.
//
// Three constraint families are emitted:
//  1. at most one placement per request, over all resources and starts;
//  2. per resource and slot, occupying spans <= capacity (the slot-indexed
//     packing form, linear in requests x slots);
//  3. per exclusion group and slot, occupying spans across the whole
//     group <= 1, regardless of resource.
func Build(grid *timegrid.Grid, requests []model.Request, resources []model.Resource, rep *visibility.Report) *Model {
	m := &Model{}
	infeasible := make(map[string]bool, len(rep.Infeasible))
	for _, id := range rep.Infeasible {
		infeasible[id] = true
	}

	// Variable allocation, ordered by request then resource then start
	// slot so repeated builds are identical.
	varsByRequest := make(map[string][]int)
	for _, req := range requests {
		if infeasible[req.ID] {
			continue
		}
		dur := rep.DurationSlots[req.ID]
		weight := req.EffectivePriority()
		for _, res := range resources {
			set, ok := rep.Sets[visibility.Key{RequestID: req.ID, ResourceID: res.ID}]
			if !ok || set.Empty() {
				continue
			}
			for _, s := range set.StartSlots {
				idx := len(m.Vars)
				m.Vars = append(m.Vars, Var{
					RequestID:  req.ID,
					ResourceID: res.ID,
					StartSlot:  s,
					DurSlots:   dur,
					Weight:     weight,
				})
				varsByRequest[req.ID] = append(varsByRequest[req.ID], idx)
			}
		}
	}

	// Family 1: one start anywhere, or none.
	for _, req := range requests {
		idxs := varsByRequest[req.ID]
		if len(idxs) == 0 {
			continue
		}
		c := Constraint{Name: fmt.Sprintf("one_start[%s]", req.ID), RHS: 1}
		for _, i := range idxs {
			c.Terms = append(c.Terms, Term{Var: i, Coef: 1})
		}
		m.Constraints = append(m.Constraints, c)
	}

	// Family 2: slot capacity per resource.
	for _, res := range resources {
		capacity := res.Capacity
		if capacity < 1 {
			capacity = 1
		}
		for s := 0; s < grid.Slots(); s++ {
			var terms []Term
			for i, v := range m.Vars {
				if v.ResourceID == res.ID && v.Covers(s) {
					terms = append(terms, Term{Var: i, Coef: 1})
				}
			}
			// A row with at most capacity potential occupants can never bind.
			if len(terms) <= capacity {
				continue
			}
			m.Constraints = append(m.Constraints, Constraint{
				Name:  fmt.Sprintf("capacity[%s,%d]", res.ID, s),
				Terms: terms,
				RHS:   float64(capacity),
			})
		}
	}

	// Family 3: exclusion groups share the sky; at most one member may
	// occupy any slot, across all resources.
	groups := make(map[string][]int)
	groupOrder := []string{}
	for _, req := range requests {
		if req.ExclusionGroup == "" || infeasible[req.ID] {
			continue
		}
		if _, seen := groups[req.ExclusionGroup]; !seen {
			groupOrder = append(groupOrder, req.ExclusionGroup)
		}
		groups[req.ExclusionGroup] = append(groups[req.ExclusionGroup], varsByRequest[req.ID]...)
	}
	for _, g := range groupOrder {
		members := groups[g]
		for s := 0; s < grid.Slots(); s++ {
			var terms []Term
			for _, i := range members {
				if m.Vars[i].Covers(s) {
					terms = append(terms, Term{Var: i, Coef: 1})
				}
			}
			if len(terms) <= 1 {
				continue
			}
			m.Constraints = append(m.Constraints, Constraint{
				Name:  fmt.Sprintf("exclusion[%s,%d]", g, s),
				Terms: terms,
				RHS:   1,
			})
		}
	}

	return m
}

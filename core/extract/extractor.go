// Package extract decodes a solver assignment into a validated schedule
// and a per-request disposition list.
package extract

import (
	"sort"

	"github.com/ogauthier/obsched/core/ilp"
	"github.com/ogauthier/obsched/core/model"
	"github.com/ogauthier/obsched/core/timegrid"
	"github.com/ogauthier/obsched/core/visibility"
)

// selectedTol marks a binary variable as chosen.
const selectedTol = 0.5

// Decode turns the assignment into schedule entries and replays them
// against the slot grid. Any capacity, placement or visibility breach is
// a ScheduleInvariantViolation: it means the model builder or the solver
// produced garbage, never a normal runtime condition.
func Decode(grid *timegrid.Grid, m *ilp.Model, values []float64, requests []model.Request, resources []model.Resource, rep *visibility.Report) (model.Schedule, []model.Disposition, error) {
	scheduled := make(map[string]model.Entry)
	var schedule model.Schedule
	for i, v := range m.Vars {
		if values[i] < selectedTol {
			continue
		}
		if _, dup := scheduled[v.RequestID]; dup {
			return nil, nil, model.NewInvariantViolation("request %s selected more than once", v.RequestID)
		}
		entry := model.Entry{
			RequestID:  v.RequestID,
			ResourceID: v.ResourceID,
			StartSlot:  v.StartSlot,
			EndSlot:    v.EndSlot(),
			Start:      grid.SlotStart(v.StartSlot),
			End:        grid.SlotEnd(v.EndSlot() - 1),
			Priority:   v.Weight,
		}
		scheduled[v.RequestID] = entry
		schedule = append(schedule, entry)
	}
	sort.Slice(schedule, func(i, j int) bool {
		if schedule[i].ResourceID != schedule[j].ResourceID {
			return schedule[i].ResourceID < schedule[j].ResourceID
		}
		return schedule[i].StartSlot < schedule[j].StartSlot
	})

	if err := validate(grid, schedule, resources, rep); err != nil {
		return nil, nil, err
	}

	infeasible := make(map[string]bool, len(rep.Infeasible))
	for _, id := range rep.Infeasible {
		infeasible[id] = true
	}
	dispositions := make([]model.Disposition, 0, len(requests))
	for _, req := range requests {
		d := model.Disposition{RequestID: req.ID, Priority: req.EffectivePriority()}
		switch {
		case scheduled[req.ID].RequestID != "":
			d.Reason = model.ReasonScheduled
		case infeasible[req.ID]:
			d.Reason = model.ReasonInfeasible
		default:
			d.Reason = model.ReasonOutcompeted
		}
		dispositions = append(dispositions, d)
	}
	return schedule, dispositions, nil
}

// validate replays the schedule slot by slot against resource capacity
// and checks every entry against its visibility set.
func validate(grid *timegrid.Grid, schedule model.Schedule, resources []model.Resource, rep *visibility.Report) error {
	capacities := make(map[string]int, len(resources))
	for _, res := range resources {
		c := res.Capacity
		if c < 1 {
			c = 1
		}
		capacities[res.ID] = c
	}

	occupancy := make(map[string][]int)
	for _, e := range schedule {
		if !grid.Contains(e.StartSlot, e.EndSlot-e.StartSlot) {
			return model.NewInvariantViolation("entry %s/%s spans [%d,%d) outside the horizon",
				e.RequestID, e.ResourceID, e.StartSlot, e.EndSlot)
		}
		capacity, known := capacities[e.ResourceID]
		if !known {
			return model.NewInvariantViolation("entry %s placed on unknown resource %s", e.RequestID, e.ResourceID)
		}
		if occupancy[e.ResourceID] == nil {
			occupancy[e.ResourceID] = make([]int, grid.Slots())
		}
		for s := e.StartSlot; s < e.EndSlot; s++ {
			occupancy[e.ResourceID][s]++
			if occupancy[e.ResourceID][s] > capacity {
				return model.NewInvariantViolation("resource %s over capacity at slot %d", e.ResourceID, s)
			}
		}

		set, ok := rep.Sets[visibility.Key{RequestID: e.RequestID, ResourceID: e.ResourceID}]
		if !ok || !containsSlot(set.StartSlots, e.StartSlot) {
			return model.NewInvariantViolation("entry %s/%s start slot %d outside its visibility set",
				e.RequestID, e.ResourceID, e.StartSlot)
		}
	}
	return nil
}

func containsSlot(slots []int, s int) bool {
	i := sort.SearchInts(slots, s)
	return i < len(slots) && slots[i] == s
}

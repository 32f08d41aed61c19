package extract

import (
	"errors"
	"testing"
	"time"

	"github.com/ogauthier/obsched/core/ilp"
	"github.com/ogauthier/obsched/core/model"
	"github.com/ogauthier/obsched/core/timegrid"
	"github.com/ogauthier/obsched/core/visibility"
)

type fixture struct {
	grid      *timegrid.Grid
	m         *ilp.Model
	requests  []model.Request
	resources []model.Resource
	rep       *visibility.Report
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	grid, err := timegrid.New(start, start.Add(30*time.Minute), 5*time.Minute)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	requests := []model.Request{
		{ID: "a", Duration: 10 * time.Minute, Priority: 10},
		{ID: "b", Duration: 10 * time.Minute, Priority: 5},
	}
	resources := []model.Resource{{ID: "t1", Capacity: 1}}
	rep, err := visibility.Evaluate(grid, requests, resources, visibility.Always{}, 1)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	return fixture{
		grid:      grid,
		m:         ilp.Build(grid, requests, resources, rep),
		requests:  requests,
		resources: resources,
		rep:       rep,
	}
}

func selectVar(t *testing.T, m *ilp.Model, reqID string, start int) []float64 {
	t.Helper()
	values := make([]float64, m.NumVars())
	for i, v := range m.Vars {
		if v.RequestID == reqID && v.StartSlot == start {
			values[i] = 1
			return values
		}
	}
	t.Fatalf("no variable for %s@%d", reqID, start)
	return nil
}

func TestDecodeSchedulesAndDispositions(t *testing.T) {
	f := newFixture(t)
	values := selectVar(t, f.m, "a", 0)
	sched, disp, err := Decode(f.grid, f.m, values, f.requests, f.resources, f.rep)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sched) != 1 || sched[0].RequestID != "a" || sched[0].EndSlot != 2 {
		t.Fatalf("unexpected schedule %+v", sched)
	}
	if !sched[0].End.Equal(f.grid.SlotStart(2)) {
		t.Fatalf("entry end time mismatch: %v", sched[0].End)
	}
	byID := map[string]model.Reason{}
	for _, d := range disp {
		byID[d.RequestID] = d.Reason
	}
	if byID["a"] != model.ReasonScheduled || byID["b"] != model.ReasonOutcompeted {
		t.Fatalf("unexpected dispositions %v", byID)
	}
}

func TestDecodeRejectsDoublePlacement(t *testing.T) {
	f := newFixture(t)
	values := make([]float64, f.m.NumVars())
	n := 0
	for i, v := range f.m.Vars {
		if v.RequestID == "a" && n < 2 {
			values[i] = 1
			n++
		}
	}
	_, _, err := Decode(f.grid, f.m, values, f.requests, f.resources, f.rep)
	var viol *model.ScheduleInvariantViolation
	if !errors.As(err, &viol) {
		t.Fatalf("expected ScheduleInvariantViolation got %v", err)
	}
}

func TestDecodeRejectsCapacityBreach(t *testing.T) {
	f := newFixture(t)
	values := make([]float64, f.m.NumVars())
	for i, v := range f.m.Vars {
		if v.StartSlot == 0 {
			values[i] = 1 // both requests at slot 0 on a capacity-1 resource
		}
	}
	_, _, err := Decode(f.grid, f.m, values, f.requests, f.resources, f.rep)
	var viol *model.ScheduleInvariantViolation
	if !errors.As(err, &viol) {
		t.Fatalf("expected ScheduleInvariantViolation got %v", err)
	}
}

func TestDecodeReportsInfeasibleRequests(t *testing.T) {
	f := newFixture(t)
	f.requests = append(f.requests, model.Request{ID: "ghost", Duration: 10 * time.Minute, Priority: 1})
	f.rep.Infeasible = append(f.rep.Infeasible, "ghost")
	values := selectVar(t, f.m, "a", 0)
	_, disp, err := Decode(f.grid, f.m, values, f.requests, f.resources, f.rep)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, d := range disp {
		if d.RequestID == "ghost" && d.Reason != model.ReasonInfeasible {
			t.Fatalf("ghost should be infeasible, got %s", d.Reason)
		}
	}
}

func TestDecodeEmptyAssignment(t *testing.T) {
	f := newFixture(t)
	values := make([]float64, f.m.NumVars())
	sched, disp, err := Decode(f.grid, f.m, values, f.requests, f.resources, f.rep)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sched) != 0 {
		t.Fatalf("expected empty schedule got %+v", sched)
	}
	for _, d := range disp {
		if d.Reason != model.ReasonOutcompeted {
			t.Fatalf("expected outcompeted, got %s for %s", d.Reason, d.RequestID)
		}
	}
}

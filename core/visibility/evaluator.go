// Package visibility computes, for every (request, resource) pair, the
// set of start slots where the observation is physically legal. Empty
// sets prune requests from the model before any variable is created.
package visibility

import (
	"sort"
	"sync"

	"github.com/ogauthier/obsched/core/model"
	"github.com/ogauthier/obsched/core/timegrid"
)

// Key identifies one (request, resource) pair.
type Key struct {
	RequestID  string
	ResourceID string
}

// Set lists the legal start slots for a pair. Read-only after evaluation.
type Set struct {
	Key        Key
	StartSlots []int
}

// Empty reports whether the pair admits no placement.
func (s *Set) Empty() bool { return len(s.StartSlots) == 0 }

// Report is the merged evaluation result for all pairs.
type Report struct {
	Sets map[Key]*Set
	// DurationSlots caches each request's duration in whole slots.
	DurationSlots map[string]int
	// Infeasible lists request IDs with an empty set on every resource,
	// sorted for stable output.
	Infeasible []string
}

// FeasibleStartCount returns how many start variables request id would
// contribute across all resources.
func (r *Report) FeasibleStartCount(id string) int {
	n := 0
	for k, s := range r.Sets {
		if k.RequestID == id {
			n += len(s.StartSlots)
		}
	}
	return n
}

// Evaluate computes visibility sets for the cartesian product of requests
// and resources. The per-pair work is independent and fans out over
// `workers` goroutines; results merge keyed by pair with no locking beyond
// the collection loop. workers < 1 falls back to 1.
func Evaluate(grid *timegrid.Grid, requests []model.Request, resources []model.Resource, pred Predicate, workers int) (*Report, error) {
	if pred == nil {
		pred = AltitudePredicate{}
	}
	durations := make(map[string]int, len(requests))
	for _, req := range requests {
		n, err := grid.DurationSlots(req.Duration)
		if err != nil {
			return nil, err
		}
		durations[req.ID] = n
	}

	type job struct {
		req model.Request
		res model.Resource
	}
	jobs := make(chan job)
	results := make(chan *Set)

	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- evaluatePair(grid, j.req, j.res, durations[j.req.ID], pred)
			}
		}()
	}
	go func() {
		for _, req := range requests {
			for _, res := range resources {
				jobs <- job{req: req, res: res}
			}
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	report := &Report{Sets: make(map[Key]*Set, len(requests)*len(resources)), DurationSlots: durations}
	for s := range results {
		report.Sets[s.Key] = s
	}

	for _, req := range requests {
		if report.FeasibleStartCount(req.ID) == 0 {
			report.Infeasible = append(report.Infeasible, req.ID)
		}
	}
	sort.Strings(report.Infeasible)
	return report, nil
}

// evaluatePair walks every candidate start slot and keeps those whose
// whole occupied span is available, inside the request window and
// accepted by the physical predicate.
func evaluatePair(grid *timegrid.Grid, req model.Request, res model.Resource, dur int, pred Predicate) *Set {
	set := &Set{Key: Key{RequestID: req.ID, ResourceID: res.ID}}
	for s := 0; s+dur <= grid.Slots(); s++ {
		if !spanLegal(grid, req, res, s, dur, pred) {
			continue
		}
		set.StartSlots = append(set.StartSlots, s)
	}
	return set
}

func spanLegal(grid *timegrid.Grid, req model.Request, res model.Resource, start, dur int, pred Predicate) bool {
	if !req.Earliest.IsZero() && grid.SlotStart(start).Before(req.Earliest) {
		return false
	}
	if !req.Latest.IsZero() && grid.SlotEnd(start+dur-1).After(req.Latest) {
		return false
	}
	for s := start; s < start+dur; s++ {
		if !res.AvailableAt(s) {
			return false
		}
		if !pred.Visible(req, res, grid.SlotStart(s)) {
			return false
		}
	}
	return true
}

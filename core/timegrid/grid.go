// Package timegrid discretizes a continuous planning horizon into
// fixed-width slots shared by every resource.
package timegrid

import (
	"time"

	"github.com/ogauthier/obsched/core/model"
)

// Grid maps between slot indices and concrete times over the horizon
// [Start, End). Slots are contiguous and all Width long.
type Grid struct {
	Start time.Time
	End   time.Time
	Width time.Duration
	slots int
}

// New validates the horizon and slot width and builds the grid. The slot
// width must be positive and divide the horizon evenly.
func New(start, end time.Time, width time.Duration) (*Grid, error) {
	if width <= 0 {
		return nil, model.NewConfigurationError("slot_width", "must be positive, got %v", width)
	}
	if !end.After(start) {
		return nil, model.NewConfigurationError("horizon", "end %v not after start %v", end, start)
	}
	span := end.Sub(start)
	if span%width != 0 {
		return nil, model.NewConfigurationError("slot_width", "%v does not evenly divide horizon %v", width, span)
	}
	return &Grid{Start: start, End: end, Width: width, slots: int(span / width)}, nil
}

// Slots returns the number of slots covering the horizon.
func (g *Grid) Slots() int { return g.slots }

// SlotStart returns the start time of slot i.
func (g *Grid) SlotStart(i int) time.Time {
	return g.Start.Add(time.Duration(i) * g.Width)
}

// SlotEnd returns the exclusive end time of slot i.
func (g *Grid) SlotEnd(i int) time.Time {
	return g.SlotStart(i + 1)
}

// SlotAt returns the slot index containing t, or -1 when t lies outside
// the horizon. On a slot boundary it returns the slot starting at t.
func (g *Grid) SlotAt(t time.Time) int {
	if t.Before(g.Start) || !t.Before(g.End) {
		return -1
	}
	return int(t.Sub(g.Start) / g.Width)
}

// DurationSlots converts a request duration to a whole number of slots.
// Durations that do not align with the slot width are a configuration
// error: rounding silently would either waste capacity or overrun.
func (g *Grid) DurationSlots(d time.Duration) (int, error) {
	if d <= 0 {
		return 0, model.NewConfigurationError("duration", "must be positive, got %v", d)
	}
	if d%g.Width != 0 {
		return 0, model.NewConfigurationError("duration", "%v is not a whole number of %v slots", d, g.Width)
	}
	return int(d / g.Width), nil
}

// Contains reports whether the span [s, s+n) lies inside the horizon.
func (g *Grid) Contains(s, n int) bool {
	return s >= 0 && n > 0 && s+n <= g.slots
}

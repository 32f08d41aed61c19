package config

import (
	"time"

	"github.com/ogauthier/obsched/core/model"
	"github.com/ogauthier/obsched/core/planner"
)

// PlannerConfig is the file-level form of the planning parameters.
// Timestamps are RFC3339, durations are seconds.
type PlannerConfig struct {
	HorizonStart      string  `json:"horizon_start"`
	HorizonEnd        string  `json:"horizon_end"`
	SlotWidthSeconds  int     `json:"slot_width_seconds"`
	TimeBudgetSeconds float64 `json:"time_budget_seconds"`
	GapTarget         float64 `json:"gap_target"`
	Workers           int     `json:"workers"`
}

// SetDefaults fills in slot width and solver budget.
func (c *PlannerConfig) SetDefaults() {
	if c.SlotWidthSeconds == 0 {
		c.SlotWidthSeconds = 300
	}
	if c.TimeBudgetSeconds == 0 {
		c.TimeBudgetSeconds = 30
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
}

// Validate checks the horizon bounds parse and are ordered.
func (c PlannerConfig) Validate() error {
	start, err := time.Parse(time.RFC3339, c.HorizonStart)
	if err != nil {
		return model.NewConfigurationError("planner.horizon_start", "not RFC3339: %v", err)
	}
	end, err := time.Parse(time.RFC3339, c.HorizonEnd)
	if err != nil {
		return model.NewConfigurationError("planner.horizon_end", "not RFC3339: %v", err)
	}
	if !end.After(start) {
		return model.NewConfigurationError("planner.horizon_end", "must be after horizon_start")
	}
	if c.SlotWidthSeconds <= 0 {
		return model.NewConfigurationError("planner.slot_width_seconds", "must be positive")
	}
	if c.TimeBudgetSeconds <= 0 {
		return model.NewConfigurationError("planner.time_budget_seconds", "must be positive")
	}
	if c.GapTarget < 0 {
		return model.NewConfigurationError("planner.gap_target", "must be nonnegative")
	}
	return nil
}

// ToPlanner converts the file form into the runtime configuration.
// Validate must have passed first.
func (c PlannerConfig) ToPlanner() planner.Config {
	start, _ := time.Parse(time.RFC3339, c.HorizonStart)
	end, _ := time.Parse(time.RFC3339, c.HorizonEnd)
	return planner.Config{
		HorizonStart: start,
		HorizonEnd:   end,
		SlotWidth:    time.Duration(c.SlotWidthSeconds) * time.Second,
		TimeBudget:   time.Duration(c.TimeBudgetSeconds * float64(time.Second)),
		GapTarget:    c.GapTarget,
		Workers:      c.Workers,
	}
}

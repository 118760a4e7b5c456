package config

import (
	"fmt"

	"github.com/planwerk/planwerk/core/model"
)

// PlanningConfig optionally overrides the stored planning settings at
// startup. Absent sections leave the store untouched.
type PlanningConfig struct {
	Global   *model.GlobalSettings   `json:"global"`
	AutoPlan *model.AutoPlanSettings `json:"autoplan"`
}

// Validate checks the overrides when present.
func (c PlanningConfig) Validate() error {
	if c.Global != nil {
		if c.Global.DayMinutes <= 0 {
			return fmt.Errorf("planning.global.dayMinutes must be positive")
		}
		if c.Global.MinCapPerDay < 0 {
			return fmt.Errorf("planning.global.minCapPerDay must not be negative")
		}
	}
	if c.AutoPlan != nil {
		if c.AutoPlan.MontageSlipBackDays < 0 || c.AutoPlan.MontageSlipFwdDays < 0 ||
			c.AutoPlan.ProductionLookaheadDays < 0 {
			return fmt.Errorf("planning.autoplan slip and lookahead days must not be negative")
		}
	}
	return nil
}

package model

// GlobalSettings are workshop-wide planning parameters.
type GlobalSettings struct {
	DayMinutes      int     `json:"dayMinutes"`
	MinCapPerDay    int     `json:"minCapPerDay"`
	TravelKmh       float64 `json:"travelKmh"`
	TravelRoundTrip bool    `json:"travelRoundTrip"`
}

// DefaultGlobalSettings returns the seed values used until the settings
// API overrides them.
func DefaultGlobalSettings() GlobalSettings {
	return GlobalSettings{
		DayMinutes:      480,
		MinCapPerDay:    60,
		TravelKmh:       60,
		TravelRoundTrip: true,
	}
}

// AutoPlanSettings tune the AutoPlan engine. SoftConflictLimitMin and
// RespectOvernightBarriers are carried for the settings UI but not
// consumed by the scheduling path.
type AutoPlanSettings struct {
	TolPerDayMin             int  `json:"tolPerDayMin"`
	MaxEmployeesPerOrder     int  `json:"maxEmployeesPerOrder"`
	SoftConflictLimitMin     int  `json:"softConflictLimitMin"`
	MontageSlipBackDays      int  `json:"autoPlanMontageSlipBackDays"`
	MontageSlipFwdDays       int  `json:"autoPlanMontageSlipFwdDays"`
	ProductionLookaheadDays  int  `json:"autoPlanProductionLookaheadDays"`
	RespectOvernightBarriers bool `json:"respectOvernightBarriers"`
}

// DefaultAutoPlanSettings returns the seed values for a fresh store.
func DefaultAutoPlanSettings() AutoPlanSettings {
	return AutoPlanSettings{
		TolPerDayMin:            30,
		MaxEmployeesPerOrder:    2,
		SoftConflictLimitMin:    120,
		MontageSlipBackDays:     3,
		MontageSlipFwdDays:      3,
		ProductionLookaheadDays: 7,
	}
}

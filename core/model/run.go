package model

import "time"

// IssueType classifies a planning issue raised during an AutoPlan run.
type IssueType string

const (
	// IssueNoEmployees is fatal: the run stops with zero created events.
	IssueNoEmployees IssueType = "no_employees"
	// IssueInsufficientCapacity is soft: the event is created anyway and
	// the shortfall is recorded as DeficitMin.
	IssueInsufficientCapacity IssueType = "insufficient_capacity"
	// IssuePlanningError is soft: the affected order is skipped and the
	// run continues.
	IssuePlanningError IssueType = "planning_error"
)

// PlanIssue is one recorded planning concern. Issues are append-only per
// run and never mutated afterwards.
type PlanIssue struct {
	ID          string    `json:"id"`
	RunID       string    `json:"run_id"`
	Type        IssueType `json:"type"`
	OrderID     string    `json:"order_id,omitempty"`
	Date        Date      `json:"date_iso,omitempty"`
	DeficitMin  int       `json:"deficit_min,omitempty"`
	DetailsJSON string    `json:"details_json,omitempty"`
}

// PlanRun is the immutable record of one AutoPlan invocation. ParamsJSON
// echoes the request, SummaryJSON holds the counters.
type PlanRun struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	ParamsJSON  string    `json:"params_json"`
	SummaryJSON string    `json:"summary_json"`
}

// RunSummary is the payload serialized into PlanRun.SummaryJSON.
type RunSummary struct {
	CreatedEvents int `json:"createdEvents"`
	SkippedOrders int `json:"skippedOrders"`
	IssueCount    int `json:"issueCount"`
}

package autoplan

import "github.com/planwerk/planwerk/core/model"

// Event is the union of progress notifications published on the planner's
// event bus.
type Event any

// RunStarted is published once per run before any order is processed.
type RunStarted struct {
	RunID  string
	Params Params
}

// EventPlanned is published after a plan event has been committed.
type EventPlanned struct {
	RunID         string
	Kind          model.Kind
	OrderID       string
	Date          model.Date
	TotalMinutes  int
	TravelMinutes int
}

// IssueRaised is published for every recorded planning issue.
type IssueRaised struct {
	Issue model.PlanIssue
}

// RunCompleted is published once per run with the final counters.
type RunCompleted struct {
	RunID         string
	CreatedEvents int
	SkippedOrders int
	IssueCount    int
}

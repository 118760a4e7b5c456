package metrics

import (
	"time"

	"github.com/planwerk/planwerk/core/model"
)

// RunRecord summarizes one completed AutoPlan run for observability sinks.
type RunRecord struct {
	RunID         string
	Start         time.Time
	Duration      time.Duration
	CreatedEvents int
	SkippedOrders int
	IssuesByType  map[model.IssueType]int
}

// EventRecord describes one plan event committed by the engine.
type EventRecord struct {
	RunID         string
	Kind          model.Kind
	OrderID       string
	Date          model.Date
	TotalMinutes  int
	TravelMinutes int
}

// Sink records planning activity. Implementations must be safe for
// concurrent use.
type Sink interface {
	RecordRun(rec RunRecord) error
	RecordEvent(rec EventRecord) error
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) RecordRun(RunRecord) error     { return nil }
func (NopSink) RecordEvent(EventRecord) error { return nil }
